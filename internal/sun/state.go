package sun

import "time"

// Input is everything the pipeline needs besides the clock.
type Input struct {
	SunriseISO    string `json:"sunrise"`
	SunsetISO     string `json:"sunset"`
	OffsetMinutes int    `json:"offsetMinutes"`
}

// DashArrays holds the stroke patterns for both paths.
type DashArrays struct {
	Day   string `json:"day"`
	Night string `json:"night"`
}

// State is one evaluation of the pipeline. It is never mutated after
// Compute returns.
type State struct {
	// Valid is false when sunrise or sunset was missing or malformed. The
	// remaining fields then hold the day fallback.
	Valid bool `json:"valid"`

	IsNight      bool         `json:"isNight"`
	Sunrise      string       `json:"sunrise,omitempty"`
	Sunset       string       `json:"sunset,omitempty"`
	Durations    Durations    `json:"durations"`
	HourProgress HourProgress `json:"hourProgress"`
	Position     Position     `json:"position"`
	DashArray    DashArrays   `json:"dashArray"`
	TimesLabel   string       `json:"timesLabel,omitempty"`
	DurationText string       `json:"durationLabel,omitempty"`
	ComputedAt   time.Time    `json:"computedAt"`
}

// Compute runs normalize, classify, durations, progress, position, dash
// arrays and labels for now.
func Compute(now time.Time, in Input, path PathGeometry) State {
	state := State{ComputedAt: now.UTC()}

	sunrise, errRise := Normalize(in.SunriseISO, in.OffsetMinutes)
	sunset, errSet := Normalize(in.SunsetISO, in.OffsetMinutes)
	if errRise != nil || errSet != nil {
		state.DashArray = DashArrays{
			Day:   CalculateDashArray(true, Durations{}, path),
			Night: CalculateDashArray(false, Durations{}, path),
		}
		return state
	}

	state.Valid = true
	state.IsNight = IsNightAt(now, in.OffsetMinutes, in.SunriseISO, in.SunsetISO)
	state.Sunrise = FormatClock(sunrise)
	state.Sunset = FormatClock(sunset)
	state.Durations = CalculateDurations(sunrise, sunset)
	state.HourProgress = CalculateHourProgress(now, sunrise, sunset, state.IsNight, state.Durations, in.OffsetMinutes)
	state.Position = CalculatePosition(state.IsNight, state.HourProgress, path)
	state.DashArray = DashArrays{
		Day:   CalculateDashArray(true, state.Durations, path),
		Night: CalculateDashArray(false, state.Durations, path),
	}
	state.TimesLabel = SunTimesLabel(sunrise, sunset)
	state.DurationText = DurationLabel(state.Durations)
	return state
}

// Calculator binds the pipeline to a clock and a day path.
type Calculator struct {
	clock Clock
	path  PathGeometry
}

// NewCalculator creates a calculator. A nil clock uses the system clock and
// a nil path uses DayArc.
func NewCalculator(clock Clock, path PathGeometry) *Calculator {
	if clock == nil {
		clock = RealClock{}
	}
	if path == nil {
		path = DayArc
	}
	return &Calculator{clock: clock, path: path}
}

// Compute evaluates the pipeline at the calculator's current time.
func (c *Calculator) Compute(in Input) State {
	return Compute(c.clock.Now(), in, c.path)
}

// Path returns the day path used for sampling.
func (c *Calculator) Path() PathGeometry {
	return c.path
}
