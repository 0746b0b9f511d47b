package sun

import "time"

// IsNight reports whether it is currently night at a location whose
// wall clock is offsetMinutes ahead of UTC.
func IsNight(offsetMinutes int, sunriseISO, sunsetISO string) bool {
	return IsNightAt(time.Now(), offsetMinutes, sunriseISO, sunsetISO)
}

// IsNightAt is IsNight evaluated at now.
//
// A zero offset or an empty sunrise/sunset means the data has not arrived
// yet and the answer is day. Unparsable timestamps are treated the same way.
func IsNightAt(now time.Time, offsetMinutes int, sunriseISO, sunsetISO string) bool {
	if offsetMinutes == 0 || sunriseISO == "" || sunsetISO == "" {
		return false
	}

	sunrise, err := Normalize(sunriseISO, offsetMinutes)
	if err != nil {
		return false
	}
	sunset, err := Normalize(sunsetISO, offsetMinutes)
	if err != nil {
		return false
	}

	current := NormalizeTime(now, offsetMinutes)
	return classify(current.MinuteOfDay(), sunrise.MinuteOfDay(), sunset.MinuteOfDay())
}

// IsNightForTimestamp classifies an arbitrary forecast hour. The reference
// timestamp supplies both the moment and the offset (from its own suffix).
func IsNightForTimestamp(refISO, sunriseISO, sunsetISO string) bool {
	if refISO == "" || sunriseISO == "" || sunsetISO == "" {
		return false
	}

	offset, err := ExtractTimezoneOffset(refISO)
	if err != nil {
		return false
	}

	current, err := Normalize(refISO, offset)
	if err != nil {
		return false
	}
	sunrise, err := Normalize(sunriseISO, offset)
	if err != nil {
		return false
	}
	sunset, err := Normalize(sunsetISO, offset)
	if err != nil {
		return false
	}

	return classify(current.MinuteOfDay(), sunrise.MinuteOfDay(), sunset.MinuteOfDay())
}

// classify compares minutes-of-day only, never calendar dates.
//
// When sunset's minute value is not after sunrise's, the pair straddles
// midnight in the shifted frame and the comparison flips: the window from
// sunrise through midnight to sunset is night.
func classify(current, sunrise, sunset int) bool {
	if sunset > sunrise {
		return current < sunrise || current >= sunset
	}
	return current >= sunrise || current < sunset
}
