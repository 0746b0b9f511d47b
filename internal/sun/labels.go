package sun

import "fmt"

// SunTimesLabel renders "HH:MM HH:MM" for normalized sunrise and sunset.
func SunTimesLabel(sunrise, sunset Instant) string {
	return FormatClock(sunrise) + " " + FormatClock(sunset)
}

// DurationLabel renders "<N>h daylight / <M>h night".
func DurationLabel(d Durations) string {
	return fmt.Sprintf("%dh daylight / %dh night", d.DaylightHours, d.NightHours)
}
