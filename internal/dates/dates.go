// Package dates parses and validates event dates for the sales funnel.
//
// Accepted inputs are strict numeric "DD/MM/YYYY" or a constrained
// Spanish phrase like "20 de mayo 2025". Validation predicates are
// checked in a fixed order: format, past date, then the two-year
// booking window, so the funnel can reply with a distinct error per
// failed check.
package dates

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/festibooth/boothbot/internal/textnorm"
)

// Validation errors, one per predicate.
var (
	ErrBadFormat = errors.New("unrecognized date format")
	ErrPastDate  = errors.New("date is in the past")
	ErrTooFarOut = errors.New("date exceeds the two-year booking window")
)

// BookingWindowYears is how far ahead an event can be booked.
const BookingWindowYears = 2

var (
	numericRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	phraseRe  = regexp.MustCompile(`^(\d{1,2}) de ([a-z]+)(?: de| del)? (\d{4})$`)
)

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// Parse normalizes free text and parses it into a calendar date. It
// returns ErrBadFormat for unrecognized shapes and for impossible
// calendar dates such as 31/02/2025.
func Parse(text string) (time.Time, error) {
	n := textnorm.Normalize(text)

	var day, year int
	var month time.Month

	if m := numericRe.FindStringSubmatch(n); m != nil {
		day, _ = strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
		if mo < 1 || mo > 12 {
			return time.Time{}, ErrBadFormat
		}
		month = time.Month(mo)
	} else if m := phraseRe.FindStringSubmatch(n); m != nil {
		day, _ = strconv.Atoi(m[1])
		mo, ok := spanishMonths[m[2]]
		if !ok {
			return time.Time{}, ErrBadFormat
		}
		month = mo
		year, _ = strconv.Atoi(m[3])
	} else {
		return time.Time{}, ErrBadFormat
	}

	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 31 -> Mar 3); reject any
	// input that does not round-trip.
	if d.Day() != day || d.Month() != month || d.Year() != year {
		return time.Time{}, ErrBadFormat
	}
	return d, nil
}

// IsTodayOrLater reports whether d is today or in the future relative
// to now.
func IsTodayOrLater(d, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(today)
}

// IsWithinWindow reports whether d falls inside the booking window.
func IsWithinWindow(d, now time.Time) bool {
	limit := time.Date(now.Year()+BookingWindowYears, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !d.After(limit)
}

// Validate runs the predicates in their fixed order and returns the
// first failing one's error.
func Validate(d, now time.Time) error {
	if !IsTodayOrLater(d, now) {
		return ErrPastDate
	}
	if !IsWithinWindow(d, now) {
		return ErrTooFarOut
	}
	return nil
}

// ToISO renders a date in the ISO form the availability check expects.
func ToISO(d time.Time) string {
	return d.Format("2006-01-02")
}

// ToDisplay renders a date in the DD/MM/YYYY form shown to customers.
func ToDisplay(d time.Time) string {
	return d.Format("02/01/2006")
}
