package sun

import "time"

// HourProgress locates "now" inside the active day or night period.
type HourProgress struct {
	// Hour is the number of whole hours since the period started.
	Hour int `json:"hour"`

	// Progress is the fraction of the current hour elapsed, in [0, 1).
	Progress float64 `json:"progress"`

	// TotalHours is the length of the active period.
	TotalHours int `json:"totalHours"`
}

// Ratio returns (Hour+Progress)/TotalHours, or 0 when the period is empty.
func (p HourProgress) Ratio() float64 {
	if p.TotalHours <= 0 {
		return 0
	}
	return (float64(p.Hour) + p.Progress) / float64(p.TotalHours)
}

// CalculateHourProgress computes the progress through the current period.
//
// The night branch wraps across midnight. The day branch subtracts
// sunrise's hour directly and can go negative if sunrise's hour is
// numerically after the current one; PathGeometry implementations clamp
// that case.
func CalculateHourProgress(now time.Time, sunrise, sunset Instant, isNight bool, d Durations, offsetMinutes int) HourProgress {
	current := NormalizeTime(now, offsetMinutes)

	// A zero Instant means the time was never set. Normalize cannot yield
	// the epoch itself for a real provider timestamp.
	sunriseHour := 0
	if sunrise != 0 {
		sunriseHour = sunrise.Hour()
	}
	sunsetHour := 0
	if sunset != 0 {
		sunsetHour = sunset.Hour()
	}

	currentHour := current.Hour()
	progress := float64(current.Minute()) / 60

	if isNight {
		hour := 24 - sunsetHour + currentHour
		if currentHour >= sunsetHour {
			hour = currentHour - sunsetHour
		}
		return HourProgress{Hour: hour, Progress: progress, TotalHours: d.NightHours}
	}

	return HourProgress{
		Hour:       currentHour - sunriseHour,
		Progress:   progress,
		TotalHours: d.DaylightHours,
	}
}
