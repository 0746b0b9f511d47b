package sun

import "strconv"

// DashGap is the gap between hourly tick segments.
const DashGap = 4

// CalculateDashArray returns a stroke-dasharray of "<dash-4> 4" splitting the
// day arc or night line into one segment per hour. Dash lengths below the
// gap come out negative and are left for the renderer to handle.
func CalculateDashArray(isDay bool, d Durations, path PathGeometry) string {
	hours := d.NightHours
	length := float64(NightLineWidth)
	if isDay {
		hours = d.DaylightHours
		length = 0
		if path != nil {
			length = path.TotalLength()
		}
	}

	dash := 0.0
	if hours > 0 {
		dash = length / float64(hours)
	}
	return formatNumber(dash-DashGap) + " " + formatNumber(DashGap)
}

// formatNumber prints the shortest decimal that round-trips.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
