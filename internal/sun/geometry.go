package sun

import (
	"fmt"
	"math"
)

// Point is a coordinate in the dial's SVG viewport (viewBox 0 30 240 180).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathGeometry is the read-only path capability the position and dash
// calculators sample. It mirrors SVGPathElement's getTotalLength and
// getPointAtLength.
type PathGeometry interface {
	TotalLength() float64
	PointAtLength(l float64) Point
}

// NightLineWidth is the fixed width of the night line. Night positions and
// night dash arrays always use it, never a path measurement.
const NightLineWidth = 200

// Arc is the upper half of a circle traversed clockwise on screen from its
// leftmost point to its rightmost point.
type Arc struct {
	Center Point
	Radius float64
}

// DayArc is the geometry of "M20 150 A90 90 0 0 1 220 150". The endpoints
// are 200 apart, so the 90 radius is scaled up to 100.
var DayArc = Arc{Center: Point{X: 120, Y: 150}, Radius: 100}

// TotalLength returns the half circumference.
func (a Arc) TotalLength() float64 {
	return math.Pi * a.Radius
}

// PointAtLength returns the point l units along the arc. l is clamped to
// the path like getPointAtLength does.
func (a Arc) PointAtLength(l float64) Point {
	if a.Radius <= 0 {
		return a.Center
	}
	l = clamp(l, 0, a.TotalLength())
	theta := l / a.Radius
	return Point{
		X: a.Center.X - a.Radius*math.Cos(theta),
		Y: a.Center.Y - a.Radius*math.Sin(theta),
	}
}

// SVGPath renders the arc as an SVG path string.
func (a Arc) SVGPath() string {
	return fmt.Sprintf("M%s %s A%s %s 0 0 1 %s %s",
		formatNumber(a.Center.X-a.Radius), formatNumber(a.Center.Y),
		formatNumber(a.Radius), formatNumber(a.Radius),
		formatNumber(a.Center.X+a.Radius), formatNumber(a.Center.Y))
}

// Line is a straight segment.
type Line struct {
	From Point
	To   Point
}

// NightLine is the geometry of "M 220 150 L 20 150".
var NightLine = Line{From: Point{X: 220, Y: 150}, To: Point{X: 20, Y: 150}}

// TotalLength returns the segment length.
func (l Line) TotalLength() float64 {
	return math.Hypot(l.To.X-l.From.X, l.To.Y-l.From.Y)
}

// PointAtLength returns the point at distance d from From, clamped.
func (l Line) PointAtLength(d float64) Point {
	total := l.TotalLength()
	if total == 0 {
		return l.From
	}
	t := clamp(d, 0, total) / total
	return Point{
		X: l.From.X + (l.To.X-l.From.X)*t,
		Y: l.From.Y + (l.To.Y-l.From.Y)*t,
	}
}

// SVGPath renders the line as an SVG path string.
func (l Line) SVGPath() string {
	return fmt.Sprintf("M %s %s L %s %s",
		formatNumber(l.From.X), formatNumber(l.From.Y),
		formatNumber(l.To.X), formatNumber(l.To.Y))
}

var (
	_ PathGeometry = Arc{}
	_ PathGeometry = Line{}
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
