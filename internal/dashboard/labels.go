package dashboard

import (
	"fmt"
	"time"

	"github.com/skydial/skydial/internal/sun"
)

// HourLabel renders a forecast hour as "3pm" in the timestamp's own offset.
// The first hour of a strip is labelled "Now".
func HourLabel(iso string, index int) (string, error) {
	if index == 0 {
		return "Now", nil
	}

	offset, err := sun.ExtractTimezoneOffset(iso)
	if err != nil {
		return "", err
	}
	local, err := sun.Normalize(iso, offset)
	if err != nil {
		return "", err
	}

	h := local.Hour()
	suffix := "am"
	if h >= 12 {
		suffix = "pm"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d%s", h, suffix), nil
}

// DayLabel renders "Today" for index 0 and otherwise "Monday, Jun 3" for
// the day index days after now, in the offset carried by iso. An
// unreadable offset counts as UTC.
func DayLabel(iso string, index int, now time.Time) string {
	if index == 0 {
		return "Today"
	}
	offset, err := sun.ExtractTimezoneOffset(iso)
	if err != nil {
		offset = 0
	}
	target := sun.NormalizeTime(now, offset).Time().AddDate(0, 0, index)
	return target.Format("Monday, Jan 2")
}
