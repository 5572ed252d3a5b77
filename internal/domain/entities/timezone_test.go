package entities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
)

func TestParseTimezoneLocation(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in     string
		offset int
	}{
		{"", 0},
		{"UTC", 0},
		{"gmt", 0},
		{"Asia/Tokyo", 9 * 3600},
		{"JST", 9 * 3600},
		{"UTC+3", 3 * 3600},
		{"+05:30", 5*3600 + 30*60},
		{"UTC-7", -7 * 3600},
		{"-03:30", -(3*3600 + 30*60)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			loc, err := entities.ParseTimezoneLocation(tt.in)
			require.NoError(t, err)

			_, offset := ref.In(loc).Zone()
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestParseTimezoneLocation_Invalid(t *testing.T) {
	for _, in := range []string{"Mars/Olympus", "UTC+15", "+3:75", "3", "UTC+x"} {
		_, err := entities.ParseTimezoneLocation(in)
		assert.Error(t, err, in)
	}
}

func TestStudyDay_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("UTC+09:00", 9*3600)
	late := time.Date(2024, 4, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-04-01", entities.StudyDay(late, nil))
	assert.Equal(t, "2024-04-02", entities.StudyDay(late, tokyo))

	start := entities.StartOfStudyDay(late, tokyo)
	assert.Equal(t, time.Date(2024, 4, 2, 0, 0, 0, 0, tokyo), start)
}
