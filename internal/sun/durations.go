package sun

import "math"

const msPerHour = 60 * msPerMinute

// Durations holds whole-hour daylight and night lengths. The two are
// rounded independently and are not forced to sum to 24.
type Durations struct {
	DaylightHours int `json:"daylightHours"`
	NightHours    int `json:"nightHours"`
}

// CalculateDurations derives durations from normalized sunrise and sunset.
// Out-of-range results (sunset before sunrise) are returned unclamped.
func CalculateDurations(sunrise, sunset Instant) Durations {
	daylight := math.Round(float64(sunset-sunrise) / msPerHour)
	night := math.Round(24 - daylight)
	return Durations{
		DaylightHours: int(daylight),
		NightHours:    int(night),
	}
}
