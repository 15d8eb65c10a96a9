package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const dateLayout = "2006-01-02"

// ErrUnrecognizedDate is returned when a date string matches neither the ISO
// nor the day-first dotted form, or names an impossible calendar date.
var ErrUnrecognizedDate = errors.New("unrecognized date format")

// Date policy errors. Each carries a distinct reason so callers can tell the
// user exactly why a day has no availability, without touching the store.
var (
	ErrPastDate      = errors.New("date is in the past")
	ErrClosedDay     = errors.New("closed on this weekday")
	ErrBeyondHorizon = errors.New("date is beyond the booking horizon")
)

var (
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dottedDateRe = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
)

// NormalizeDateStr canonicalizes a user-supplied date to "YYYY-MM-DD".
// Accepted inputs are the ISO form itself and the day-first dotted form
// "DD.MM.YYYY". Anything else is rejected rather than passed through.
func NormalizeDateStr(s string) (string, error) {
	var iso string
	switch {
	case isoDateRe.MatchString(s):
		iso = s
	case dottedDateRe.MatchString(s):
		m := dottedDateRe.FindStringSubmatch(s)
		iso = fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
	default:
		return "", ErrUnrecognizedDate
	}
	if _, err := time.Parse(dateLayout, iso); err != nil {
		return "", ErrUnrecognizedDate
	}
	return iso, nil
}

// DateOf formats a moment as its calendar date.
func DateOf(t time.Time) string {
	return t.Format(dateLayout)
}

// CheckDate applies the pre-store date policy to a normalized date: past dates,
// configured closed weekdays and dates beyond the horizon are rejected with
// their respective reasons.
func (c Config) CheckDate(date string, now time.Time) error {
	d, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return ErrUnrecognizedDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return ErrPastDate
	}
	for _, wd := range c.ClosedWeekdays {
		if d.Weekday() == wd {
			return ErrClosedDay
		}
	}
	if c.MaxDaysAhead > 0 && d.After(today.AddDate(0, 0, c.MaxDaysAhead)) {
		return ErrBeyondHorizon
	}
	return nil
}
