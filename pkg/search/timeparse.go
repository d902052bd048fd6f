package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TimeFormat is the millisecond timestamp format of start and end values.
const TimeFormat = "2006-01-02 15:04:05.000"

var relativePattern = regexp.MustCompile(`^(\d+)\s*([a-z]+)(?:\s+ago)?$`)

// TimeParser reads start and end values. Besides TimeFormat it accepts "now",
// relative amounts such as "3 days" or "2h" meaning that long ago, and any
// absolute format dateparse recognizes.
type TimeParser struct {
	Location *time.Location
	Now      func() time.Time
}

func (p TimeParser) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

func (p TimeParser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p TimeParser) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	loc := p.location()

	if t, err := time.ParseInLocation(TimeFormat, value, loc); err == nil {
		return t, nil
	}

	lower := strings.ToLower(value)
	if lower == "now" {
		return p.now().In(loc), nil
	}
	if m := relativePattern.FindStringSubmatch(lower); m != nil {
		amount, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, err
		}
		return subtract(p.now().In(loc), amount, m[2])
	}

	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %q, a relative amount or a date: %w", TimeFormat, err)
	}
	return t, nil
}

func subtract(now time.Time, amount int, unit string) (time.Time, error) {
	n := time.Duration(amount)
	switch unit {
	case "ms", "milli", "millis", "millisecond", "milliseconds":
		return now.Add(-n * time.Millisecond), nil
	case "s", "sec", "secs", "second", "seconds":
		return now.Add(-n * time.Second), nil
	case "m", "min", "mins", "minute", "minutes":
		return now.Add(-n * time.Minute), nil
	case "h", "hour", "hours":
		return now.Add(-n * time.Hour), nil
	case "d", "day", "days":
		return now.AddDate(0, 0, -amount), nil
	case "w", "week", "weeks":
		return now.AddDate(0, 0, -7*amount), nil
	case "mo", "month", "months":
		return now.AddDate(0, -amount, 0), nil
	case "y", "year", "years":
		return now.AddDate(-amount, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown time unit %q", unit)
}

// FormatTime renders t in TimeFormat within the parser's location.
func (p TimeParser) FormatTime(t time.Time) string {
	return t.In(p.location()).Format(TimeFormat)
}
