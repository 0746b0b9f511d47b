// Package dashboard turns a forecast into the views the weather dashboard
// renders: current conditions, hourly and daily strips, the sun dial and
// the detail cards.
package dashboard

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidUnits is returned for a units value other than metric or imperial.
var ErrInvalidUnits = errors.New("units must be metric or imperial")

// Units is the measurement system used for display.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// ParseUnits validates s. An empty string means Metric.
func ParseUnits(s string) (Units, error) {
	switch Units(s) {
	case "", Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidUnits, s)
	}
}

// Toggle returns the other system.
func (u Units) Toggle() Units {
	if u == Imperial {
		return Metric
	}
	return Imperial
}

// TemperatureUnit returns "°C" or "°F".
func (u Units) TemperatureUnit() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

// SpeedUnit returns "km/h" or "mph".
func (u Units) SpeedUnit() string {
	if u == Imperial {
		return "mph"
	}
	return "km/h"
}

// PressureUnit returns "hPa" or "inHg".
func (u Units) PressureUnit() string {
	if u == Imperial {
		return "inHg"
	}
	return "hPa"
}

// Temperature converts Celsius to the display system, unrounded.
func Temperature(celsius float64, u Units) float64 {
	if u == Imperial {
		return celsius*9/5 + 32
	}
	return celsius
}

// RoundedTemperature is Temperature with halves rounded up (-2.5 becomes -2).
func RoundedTemperature(celsius float64, u Units) int {
	return roundHalfUp(Temperature(celsius, u))
}

// WindSpeed converts m/s to km/h or mph.
func WindSpeed(ms float64, u Units) float64 {
	if u == Imperial {
		return ms * 2.23694
	}
	return ms * 3.6
}

// Pressure converts hPa for display: whole hPa, or inHg to two decimals.
func Pressure(hpa float64, u Units) float64 {
	if u == Imperial {
		return math.Round(hpa*0.02953*100) / 100
	}
	return float64(roundHalfUp(hpa))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// TemperatureDescription describes a display temperature.
func TemperatureDescription(t float64, u Units) string {
	limits := [6]float64{0, 10, 20, 25, 30, 35}
	if u == Imperial {
		limits = [6]float64{32, 50, 68, 77, 86, 95}
	}
	labels := [...]string{"Freezing", "Cold", "Cool", "Mild", "Warm", "Hot"}
	for i, limit := range limits {
		if t <= limit {
			return labels[i]
		}
	}
	return "Very Hot"
}

// PressureStatus describes a display pressure.
func PressureStatus(p float64, u Units) string {
	veryLow, low, normal, high := 980.0, 1000.0, 1020.0, 1040.0
	if u == Imperial {
		veryLow, low, normal, high = 28.94, 29.53, 30.12, 30.71
	}
	switch {
	case p < veryLow:
		return "Very Low"
	case p < low:
		return "Low"
	case p <= normal:
		return "Normal"
	case p <= high:
		return "High"
	default:
		return "Very High"
	}
}

// WindDescription describes a display wind speed.
func WindDescription(speed float64, u Units) string {
	calm, light, moderate, strong := 15.0, 30.0, 50.0, 70.0
	if u == Imperial {
		calm, light, moderate, strong = 10, 20, 30, 45
	}
	switch {
	case speed < calm:
		return "Calm"
	case speed < light:
		return "Light breeze"
	case speed < moderate:
		return "Moderate wind"
	case speed < strong:
		return "Strong wind"
	default:
		return "Very strong wind"
	}
}

var compassPoints = [16]string{
	"North", "North-Northeast", "Northeast", "East-Northeast",
	"East", "East-Southeast", "Southeast", "South-Southeast",
	"South", "South-Southwest", "Southwest", "West-Southwest",
	"West", "West-Northwest", "Northwest", "North-Northwest",
}

// CompassDirection names the 16-point compass sector of a bearing in
// degrees. Bearings from 348.75 up wrap to North.
func CompassDirection(degrees *float64) string {
	if degrees == nil || math.IsNaN(*degrees) {
		return "No specific direction"
	}
	d := math.Mod(math.Mod(*degrees, 360)+360, 360)
	return compassPoints[roundHalfUp(d/22.5)%16]
}

// HumidityStatus describes a relative humidity percentage.
func HumidityStatus(h float64) string {
	switch {
	case h < 30:
		return "Low"
	case h <= 60:
		return "Optimal"
	case h <= 70:
		return "Moderate"
	default:
		return "High"
	}
}
