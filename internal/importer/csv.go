package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var requiredColumns = []string{"year", "category", "text", "correct_answer"}

// choiceColumns lists the accepted header names of each choice, in order.
var choiceColumns = [][]string{
	{"choice1", "choice_a"},
	{"choice2", "choice_b"},
	{"choice3", "choice_c"},
	{"choice4", "choice_d"},
}

// ReadCSV decodes a CSV file with a header row. Column order is free.
func (l *Loader) ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		cols[h] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("read csv header: missing column %q", name)
		}
	}

	choices := make([]int, len(choiceColumns))
	for i, names := range choiceColumns {
		idx, ok := lookup(cols, names)
		if !ok {
			return nil, fmt.Errorf("read csv header: missing column %q", strings.Join(names, `" or "`))
		}
		choices[i] = idx
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		rec, err := parseRow(cols, choices, row)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(cols map[string]int, choices []int, row []string) (Record, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	atoi := func(name string) (int, error) {
		v := get(name)
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", name, err)
		}
		return n, nil
	}

	var (
		rec Record
		err error
	)
	if rec.Year, err = atoi("year"); err != nil {
		return Record{}, err
	}
	if rec.QuestionNumber, err = atoi("question_number"); err != nil {
		return Record{}, err
	}
	if rec.CorrectAnswer, err = atoi("correct_answer"); err != nil {
		return Record{}, err
	}
	if rec.Difficulty, err = atoi("difficulty"); err != nil {
		return Record{}, err
	}

	rec.Season = get("season")
	rec.Category = get("category")
	rec.Text = get("text")
	rec.Explanation = get("explanation")
	rec.Choices = make([]string, 0, len(choices))
	for _, i := range choices {
		text := ""
		if i < len(row) {
			text = strings.TrimSpace(row[i])
		}
		rec.Choices = append(rec.Choices, text)
	}

	return rec, nil
}

// lookup returns the index of the first of names present in the header.
func lookup(cols map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if i, ok := cols[name]; ok {
			return i, true
		}
	}
	return 0, false
}
