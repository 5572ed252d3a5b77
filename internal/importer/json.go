package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// jsonFile is the exam-sitting wrapper. Year, season and category act as
// defaults for records that leave them empty.
type jsonFile struct {
	Year      int      `json:"year"`
	Season    string   `json:"season"`
	Category  string   `json:"category"`
	Questions []Record `json:"questions"`
}

// ReadJSON decodes either a wrapped exam sitting or a flat record array.
func (l *Loader) ReadJSON(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	first, err := firstNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}

	dec := json.NewDecoder(br)

	if first == '[' {
		var records []Record
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return records, nil
	}

	var file jsonFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	for i := range file.Questions {
		q := &file.Questions[i]
		if q.Year == 0 {
			q.Year = file.Year
		}
		if q.Season == "" {
			q.Season = file.Season
		}
		if q.Category == "" {
			q.Category = file.Category
		}
	}

	return file.Questions, nil
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
