package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StudyDayLayout is the date format of learning trend buckets.
const StudyDayLayout = "2006-01-02"

// zoneAliases maps abbreviations people type in config files to IANA names.
var zoneAliases = map[string]string{
	"JST": "Asia/Tokyo",
	"KST": "Asia/Seoul",
	"GMT": "UTC",
	"Z":   "UTC",
}

// ParseTimezoneLocation resolves the time zone that decides where a study day starts.
//
// Accepted forms: an IANA name ("Asia/Tokyo"), an alias from zoneAliases ("JST"),
// or a fixed offset ("UTC+9", "+09:00", "-3:30"). Empty input means UTC.
func ParseTimezoneLocation(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return time.UTC, nil
	}
	if name, ok := zoneAliases[strings.ToUpper(tz)]; ok {
		tz = name
	}
	if strings.EqualFold(tz, "UTC") {
		return time.UTC, nil
	}

	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}

	offset, err := parseOffset(tz)
	if err != nil {
		return nil, fmt.Errorf("unsupported timezone %q: %w", tz, err)
	}
	return time.FixedZone(offsetName(offset), offset), nil
}

// StudyDay returns the calendar day t falls on in loc.
func StudyDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(StudyDayLayout)
}

// StartOfStudyDay returns midnight of the day t falls on in loc.
func StartOfStudyDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func parseOffset(s string) (int, error) {
	if len(s) >= 3 && strings.EqualFold(s[:3], "UTC") {
		s = strings.TrimSpace(s[3:])
	}
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("offset must start with a sign")
	}

	sign := 1
	if s[0] == '-' {
		sign = -1
	}

	hours, minutes, found := strings.Cut(s[1:], ":")
	if !found {
		minutes = "0"
	}

	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, fmt.Errorf("parse hours: %w", err)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, fmt.Errorf("parse minutes: %w", err)
	}
	if h > 14 || m < 0 || m >= 60 || h < 0 {
		return 0, fmt.Errorf("offset out of range")
	}

	return sign * (h*3600 + m*60), nil
}

func offsetName(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, offset/3600, offset%3600/60)
}
