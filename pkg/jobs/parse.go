package jobs

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	time.DateOnly,
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"02-Jan-2006",
	"2-Jan-06",
	time.DateTime,
	time.RFC3339,
}

var clockLayouts = []string{
	"15:04",
	time.TimeOnly,
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"3:04:05PM",
	"1504",
	time.DateTime,
	time.RFC3339,
}

var (
	errBadDate  = errors.New("unrecognised date")
	errBadClock = errors.New("unrecognised time")
)

// ParseDate reads a calendar day from a cell. Spreadsheet serial numbers are
// accepted. The result is midnight of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 {
			return time.Time{}, errBadDate
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, errBadDate
		}
		return midnight(t, loc), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return midnight(t, loc), nil
		}
	}
	return time.Time{}, errBadDate
}

// ParseClock reads a time of day from a cell. Spreadsheet day fractions are
// accepted, as are full date-times whose date part is dropped. The result
// carries the clock on January 1st of year 0.
func ParseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if isHHMM(s) {
		s = strings.Repeat("0", 4-len(s)) + s
	} else if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 0 {
			return time.Time{}, errBadClock
		}
		_, frac := math.Modf(serial)
		seconds := int64(math.Round(frac * 24 * 60 * 60))
		return Clock(time.Duration(seconds) * time.Second), nil
	}

	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			h, m, sec := t.Clock()
			return Clock(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second), nil
		}
	}
	return time.Time{}, errBadClock
}

// Clock returns the pickup time value for an offset from midnight.
// Offsets of a day or more wrap around.
func Clock(sinceMidnight time.Duration) time.Time {
	sinceMidnight %= 24 * time.Hour
	return time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC).Add(sinceMidnight)
}

// isHHMM reports whether s is a bare 24h clock such as "830" or "1745"
func isHHMM(s string) bool {
	if len(s) != 3 && len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
