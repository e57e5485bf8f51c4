package importer

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// Spreadsheet serial dates count days from 1899-12-30; the fractional part
// is the time of day. A value in (0, 1) is a bare time with no date.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var timeOnlyPattern = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// dateTimeLayouts are tried in order for free-text cells.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

func fromSerial(v float64) time.Time {
	return serialEpoch.Add(time.Duration(v * float64(24*time.Hour))).Round(time.Second)
}

// isTimeOnly reports whether the cell holds a time of day without a date:
// a serial fraction in (0,1), a native time anchored at a zero epoch, or a
// bare "HH:MM[:SS]" string.
func isTimeOnly(c Cell) bool {
	switch c.Kind {
	case CellNumber:
		return c.Number > 0 && c.Number < 1
	case CellTime:
		y, m, d := c.Time.UTC().Date()
		return (y == 1899 && m == time.December && d == 30) ||
			(y == 1970 && m == time.January && d == 1)
	case CellText:
		return timeOnlyPattern.MatchString(strings.TrimSpace(c.Text))
	default:
		return false
	}
}

// parseDateTime resolves a cell carrying a full date (optionally with a
// time). Time-only cells fail here; they need a separate date part.
func parseDateTime(c Cell) (time.Time, bool) {
	switch c.Kind {
	case CellTime:
		return c.Time.UTC(), true
	case CellNumber:
		if c.Number > 0 && c.Number < 1 {
			return time.Time{}, false
		}
		if c.Number <= 0 {
			return time.Time{}, false
		}
		return fromSerial(c.Number), true
	case CellText:
		trimmed := strings.TrimSpace(c.Text)
		if trimmed == "" || timeOnlyPattern.MatchString(trimmed) {
			return time.Time{}, false
		}
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t.UTC(), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// parseDatePart resolves the calendar-date component of a cell, rejecting
// time-only values.
func parseDatePart(c Cell) (time.Time, bool) {
	if c.IsEmpty() || isTimeOnly(c) {
		return time.Time{}, false
	}
	t, ok := parseDateTime(c)
	if !ok {
		return time.Time{}, false
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
}

// parseTimePart resolves the time-of-day component of a cell.
func parseTimePart(c Cell) (time.Duration, bool) {
	switch c.Kind {
	case CellTime:
		t := c.Time.UTC()
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second, true
	case CellNumber:
		frac := c.Number - math.Floor(c.Number)
		if c.Number <= 0 {
			return 0, false
		}
		return time.Duration(frac * float64(24*time.Hour)).Round(time.Second), true
	case CellText:
		trimmed := strings.TrimSpace(c.Text)
		if trimmed == "" {
			return 0, false
		}
		if timeOnlyPattern.MatchString(trimmed) {
			layout := "15:04"
			if strings.Count(trimmed, ":") == 2 {
				layout = "15:04:05"
			}
			t, err := time.Parse(layout, trimmed)
			if err != nil {
				return 0, false
			}
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
		if t, ok := parseDateTime(c); ok {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// ResolveDateTime normalizes a timestamp cell. A cell that already carries
// a full date wins outright; a time-only cell is combined with the
// separately resolved date part, and fails when no date is resolvable.
func ResolveDateTime(dateCell, timeCell Cell) (time.Time, bool) {
	if timeCell.IsEmpty() {
		return time.Time{}, false
	}

	if !isTimeOnly(timeCell) {
		if t, ok := parseDateTime(timeCell); ok {
			return t, true
		}
	}

	datePart, dateOK := parseDatePart(dateCell)
	timePart, timeOK := parseTimePart(timeCell)
	if dateOK && timeOK {
		return datePart.Add(timePart), true
	}

	return parseDateTime(timeCell)
}

// ResolveDate normalizes the calendar date, falling back from the date
// column to the check-in cell.
func ResolveDate(dateCell, checkInCell Cell) (time.Time, bool) {
	if t, ok := parseDatePart(dateCell); ok {
		return t, true
	}
	return parseDatePart(checkInCell)
}
