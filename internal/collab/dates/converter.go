// Package dates converts relative scheduling phrases into absolute calendar
// dates for appointment confirmation.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Converter turns a relative phrase like "next Monday at 10am" into an
// absolute date string. It is total: unrecognized phrases come back
// unchanged, never an error.
type Converter interface {
	ToAbsolute(phrase string) string
}

var clockPattern = regexp.MustCompile(`(\d{1,2})\s*(am|pm)`)

const dateLayout = "January 02, 2006"

// RelativeConverter resolves phrases against an injectable clock so the
// "next occurrence" rules stay deterministic under test.
type RelativeConverter struct {
	now func() time.Time
}

func NewRelativeConverter() *RelativeConverter {
	return &RelativeConverter{now: time.Now}
}

// NewRelativeConverterAt pins the converter's notion of "today".
func NewRelativeConverterAt(now func() time.Time) *RelativeConverter {
	return &RelativeConverter{now: now}
}

// ToAbsolute converts the phrase to "Month DD, YYYY", keeping an explicit
// clock time as an " at H:00 AM" suffix. Recognized forms: "tomorrow",
// weekday names Monday through Friday with an optional "next" prefix,
// "next week", and "two weeks"/"2 weeks". Anything else is returned
// unchanged so callers can fall back to the caller's own words.
func (c *RelativeConverter) ToAbsolute(phrase string) string {
	p := strings.ToLower(strings.TrimSpace(phrase))

	suffix := ""
	if m := clockPattern.FindStringSubmatch(p); m != nil {
		hour, _ := strconv.Atoi(m[1])
		suffix = fmt.Sprintf(" at %d:00 %s", hour, strings.ToUpper(m[2]))
	}

	today := c.now()
	var target time.Time
	switch {
	case strings.Contains(p, "tomorrow"):
		target = today.AddDate(0, 0, 1)
	case strings.Contains(p, "monday"):
		target = c.nextWeekday(time.Monday)
	case strings.Contains(p, "tuesday"):
		target = c.nextWeekday(time.Tuesday)
	case strings.Contains(p, "wednesday"):
		target = c.nextWeekday(time.Wednesday)
	case strings.Contains(p, "thursday"):
		target = c.nextWeekday(time.Thursday)
	case strings.Contains(p, "friday"):
		target = c.nextWeekday(time.Friday)
	case strings.Contains(p, "next week"):
		target = today.AddDate(0, 0, 7)
	case strings.Contains(p, "two weeks"), strings.Contains(p, "2 weeks"):
		target = today.AddDate(0, 0, 14)
	default:
		return phrase
	}

	return target.Format(dateLayout) + suffix
}

// nextWeekday returns the next future occurrence of w. When today already is
// that weekday it rolls a full week forward, never same-day.
func (c *RelativeConverter) nextWeekday(w time.Weekday) time.Time {
	today := c.now()
	ahead := int(w) - int(today.Weekday())
	if ahead <= 0 {
		ahead += 7
	}
	return today.AddDate(0, 0, ahead)
}

var _ Converter = (*RelativeConverter)(nil)
