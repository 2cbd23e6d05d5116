package booking

import (
	"strings"
	"time"

	"backend-campbook/internal/shared/apperr"
)

const (
	MinLeadDays = 3
	MaxNights   = 3

	dateLayout = "2006-01-02"
	day        = 24 * time.Hour
)

var (
	ErrInvalidRange = apperr.Validation("invalid_range", "Invalid date range provided")
	ErrTooSoon      = apperr.Validation("too_soon", "Bookings must be made at least 3 days in advance")
	ErrTooLong      = apperr.Validation("too_long", "Bookings can only be up to 3 nights")
	ErrConflict     = apperr.Validation("conflict", "You already have a booking within this date range")

	// ErrUpdateTooSoon shares ErrTooSoon's code, so errors.Is matches either.
	ErrUpdateTooSoon = apperr.Validation("too_soon", "Updates to bookings must be made at least 3 days in advance")
)

// Stay is a calendar date range. Start and End are midnight UTC.
type Stay struct {
	Start time.Time
	End   time.Time
}

func (s Stay) Nights() int {
	return int(s.End.Sub(s.Start) / day)
}

// occupied returns the half-open night interval [from, to) the stay holds.
// A stay that starts and ends on the same date still holds that one night.
func (s Stay) occupied() (time.Time, time.Time) {
	if !s.End.After(s.Start) {
		return s.Start, s.Start.Add(day)
	}
	return s.Start, s.End
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and truncates to the date.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// DateOf drops the clock part of t, keeping the calendar date of t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseStay(start, end string) (Stay, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Stay{}, ErrInvalidRange.Wrap(err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return Stay{}, ErrInvalidRange.Wrap(err)
	}
	stay := Stay{Start: s, End: e}
	if err := checkRange(stay); err != nil {
		return Stay{}, err
	}
	return stay, nil
}

func checkRange(stay Stay) error {
	if stay.Start.IsZero() || stay.End.IsZero() || stay.End.Before(stay.Start) {
		return ErrInvalidRange
	}
	return nil
}

// ValidateStay runs the pure checks in order: range, lead time, duration.
func ValidateStay(stay Stay, today time.Time) error {
	if err := checkRange(stay); err != nil {
		return err
	}
	if stay.Start.Sub(DateOf(today)) < MinLeadDays*day {
		return ErrTooSoon
	}
	if stay.Nights() > MaxNights {
		return ErrTooLong
	}
	return nil
}

// Overlaps reports whether two stays share a night. Stays that only touch,
// one ending on the date the other starts, do not overlap.
func Overlaps(a, b Stay) bool {
	aFrom, aTo := a.occupied()
	bFrom, bTo := b.occupied()
	return aFrom.Before(bTo) && bFrom.Before(aTo)
}

func CheckConflicts(stay Stay, existing []Stay) error {
	for _, other := range existing {
		if Overlaps(stay, other) {
			return ErrConflict
		}
	}
	return nil
}
