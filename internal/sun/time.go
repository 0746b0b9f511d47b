package sun

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Time errors.
var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidOffset    = errors.New("invalid timezone offset suffix")
)

const msPerMinute = 60 * 1000

// Layouts accepted by ParseTimestamp, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// Instant is milliseconds since the Unix epoch. After Normalize it is an
// "as-if-local" instant: reading it with UTC accessors yields the wall clock
// of the location the offset belongs to.
type Instant int64

// Time returns the instant as a UTC time.Time.
func (i Instant) Time() time.Time {
	return time.UnixMilli(int64(i)).UTC()
}

// Hour returns the UTC clock hour.
func (i Instant) Hour() int {
	return i.Time().Hour()
}

// Minute returns the UTC clock minute.
func (i Instant) Minute() int {
	return i.Time().Minute()
}

// MinuteOfDay returns hours*60 + minutes. Seconds are discarded, so two
// instants in the same minute are indistinguishable.
func (i Instant) MinuteOfDay() int {
	t := i.Time()
	return t.Hour()*60 + t.Minute()
}

// ParseTimestamp parses an ISO-8601 timestamp with an explicit offset suffix
// into epoch milliseconds.
func ParseTimestamp(iso string) (Instant, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return Instant(t.UnixMilli()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, iso)
}

// Normalize parses iso and shifts it by offsetMinutes.
func Normalize(iso string, offsetMinutes int) (Instant, error) {
	ts, err := ParseTimestamp(iso)
	if err != nil {
		return 0, err
	}
	return Shift(ts, offsetMinutes), nil
}

// NormalizeTime shifts t by offsetMinutes.
func NormalizeTime(t time.Time, offsetMinutes int) Instant {
	return Shift(Instant(t.UnixMilli()), offsetMinutes)
}

// Shift adds offsetMinutes to an instant. Callers apply it exactly once per
// quantity.
func Shift(i Instant, offsetMinutes int) Instant {
	return i + Instant(offsetMinutes)*msPerMinute
}

// ExtractTimezoneOffset reads the trailing "±HH:MM" of an ISO timestamp and
// returns it in minutes. The suffix is sliced by fixed width from the end of
// the string: any sign character other than '+' counts as negative.
func ExtractTimezoneOffset(iso string) (int, error) {
	n := len(iso)
	if n < 6 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOffset, iso)
	}

	sign := iso[n-6]
	hours, err := strconv.Atoi(iso[n-5 : n-3])
	if err != nil {
		return 0, fmt.Errorf("%w: hours in %q", ErrInvalidOffset, iso)
	}
	minutes, err := strconv.Atoi(iso[n-2:])
	if err != nil {
		return 0, fmt.Errorf("%w: minutes in %q", ErrInvalidOffset, iso)
	}

	total := hours*60 + minutes
	if sign != '+' {
		total = -total
	}
	return total, nil
}

// FormatClock renders the instant's UTC wall clock as zero-padded HH:MM.
func FormatClock(i Instant) string {
	t := i.Time()
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
