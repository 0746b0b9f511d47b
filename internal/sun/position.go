package sun

// Position is the indicator's top-left corner; the icon is 20x20 so the
// sampled point is shifted by -10 on each axis.
type Position = Point

const (
	iconHalf   = 10
	nightRight = 220
	nightLeft  = 20
	nightY     = 140
)

// CalculatePosition maps hour progress to an indicator position.
//
// Night moves linearly from x=220 to x=20 at a fixed height. Day samples
// path, and falls back to the origin when no path is available.
func CalculatePosition(isNight bool, hp HourProgress, path PathGeometry) Position {
	if isNight {
		x := nightRight - hp.Ratio()*NightLineWidth
		return Position{X: clamp(x, nightLeft, nightRight) - iconHalf, Y: nightY}
	}

	if path == nil {
		return Position{}
	}

	segment := 0.0
	if hp.TotalHours > 0 {
		segment = path.TotalLength() / float64(hp.TotalHours)
	}
	p := path.PointAtLength(float64(hp.Hour)*segment + hp.Progress*segment)
	return Position{X: p.X - iconHalf, Y: p.Y - iconHalf}
}
