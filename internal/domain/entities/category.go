// Package entities contains domain entities used across the application.
package entities

import (
	"strconv"
	"time"
)

// Category is an exam field such as "Strategy", "Management" or "Technology".
// Categories are created on first reference during import and never deleted.
type Category struct {
	ID          int64
	Name        string // unique
	Description string
	CreatedAt   time.Time
}

// Year is one exam sitting identified by the (Year, Season) pair.
type Year struct {
	ID        int64
	Year      int    // 2023, 2024, ...
	Season    string // "Spring", "Autumn", may be empty
	CreatedAt time.Time
}

// Label returns a human-readable name of the exam sitting.
func (y *Year) Label() string {
	if y.Season == "" {
		return strconv.Itoa(y.Year)
	}
	return strconv.Itoa(y.Year) + " " + y.Season
}
