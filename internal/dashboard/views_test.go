package dashboard_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/sun"
	"github.com/skydial/skydial/internal/weather"
)

// newYorkForecast has sunrise 05:25 and sunset 20:23 local, six days and
// thirty hours starting at 14:00 local on June 3.
func newYorkForecast() *weather.Forecast {
	direction := 225.0
	f := &weather.Forecast{
		Lat:            40.71427,
		Lon:            -74.00597,
		TimezoneOffset: -240,
		Daily: weather.Timeline[weather.DailyValues]{
			Timestep:  "1d",
			StartTime: "2024-06-03T06:00:00-04:00",
		},
		Hourly: weather.Timeline[weather.HourlyValues]{Timestep: "1h"},
	}

	for d := 0; d < 6; d++ {
		day := 3 + d
		f.Daily.Intervals = append(f.Daily.Intervals, weather.Interval[weather.DailyValues]{
			StartTime: fmt.Sprintf("2024-06-%02dT06:00:00-04:00", day),
			Values: weather.DailyValues{
				TemperatureMax:              27.4,
				TemperatureMin:              18.1,
				PrecipitationProbabilityMax: 19.5,
				WeatherCodeDay:              11000,
				SunriseTime:                 fmt.Sprintf("2024-06-%02dT05:25:00-04:00", day),
				SunsetTime:                  fmt.Sprintf("2024-06-%02dT20:23:00-04:00", day),
			},
		})
	}

	start := time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)
	ny := time.FixedZone("", -4*3600)
	for h := 0; h < 30; h++ {
		values := weather.HourlyValues{Temperature: 24.2, WeatherCode: 1000}
		if h == 0 {
			values = weather.HourlyValues{
				Temperature:          24.2,
				TemperatureApparent:  25.6,
				Humidity:             55,
				WindSpeed:            4,
				WindDirection:        &direction,
				PressureSurfaceLevel: 1015.3,
				WeatherCode:          1100,
			}
		}
		f.Hourly.Intervals = append(f.Hourly.Intervals, weather.Interval[weather.HourlyValues]{
			StartTime: start.Add(time.Duration(h) * time.Hour).In(ny).Format(time.RFC3339),
			Values:    values,
		})
	}
	return f
}

func builderAt(t time.Time) *dashboard.Builder {
	return dashboard.NewBuilder(sun.FixedClock(t))
}

var afternoon = time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC) // 14:00 in New York

func TestBuilder_Current(t *testing.T) {
	current, err := builderAt(afternoon).Current(newYorkForecast(), dashboard.Metric)
	require.NoError(t, err)

	assert.Equal(t, 24, current.Temperature)
	assert.Equal(t, 26, current.TemperatureApparent)
	assert.Equal(t, 27, current.High)
	assert.Equal(t, 18, current.Low)
	assert.Equal(t, "°C", current.Unit)
	assert.Equal(t, "Mostly Clear", current.Description)
	assert.False(t, current.IsNight)
	assert.Equal(t, weather.IconBasePath+"11000_mostly_clear_small@2x.png", current.Icon)
}

func TestBuilder_Current_NightImperial(t *testing.T) {
	lateEvening := time.Date(2024, 6, 4, 3, 0, 0, 0, time.UTC) // 23:00 in New York

	current, err := builderAt(lateEvening).Current(newYorkForecast(), dashboard.Imperial)
	require.NoError(t, err)

	assert.True(t, current.IsNight)
	assert.Equal(t, 76, current.Temperature)
	assert.Equal(t, "°F", current.Unit)
	assert.Equal(t, weather.IconBasePath+"11001_mostly_clear_small@2x.png", current.Icon)
}

func TestBuilder_Current_Incomplete(t *testing.T) {
	_, err := builderAt(afternoon).Current(&weather.Forecast{}, dashboard.Metric)
	assert.ErrorIs(t, err, dashboard.ErrIncompleteForecast)
}

func TestBuilder_Hourly(t *testing.T) {
	hours := builderAt(afternoon).Hourly(newYorkForecast(), dashboard.Metric)
	require.Len(t, hours, dashboard.HourlyItems)

	assert.Equal(t, "Now", hours[0].Label)
	assert.Equal(t, "3pm", hours[1].Label)
	assert.Equal(t, "12am", hours[10].Label)

	// 20:00 is before the 20:23 sunset; 21:00 is after it.
	assert.Equal(t, "8pm", hours[6].Label)
	assert.False(t, hours[6].IsNight)
	assert.Equal(t, weather.IconBasePath+"10000_clear_small.png", hours[6].Icon)

	assert.Equal(t, "9pm", hours[7].Label)
	assert.True(t, hours[7].IsNight)
	assert.Equal(t, weather.IconBasePath+"10001_clear_small.png", hours[7].Icon)

	// 06:00 next morning is after sunrise again.
	assert.Equal(t, "6am", hours[16].Label)
	assert.False(t, hours[16].IsNight)
}

func TestBuilder_Daily(t *testing.T) {
	days := builderAt(afternoon).Daily(newYorkForecast(), dashboard.Imperial)
	require.Len(t, days, dashboard.DailyItems)

	assert.Equal(t, "Today", days[0].Label)
	assert.Equal(t, "Tuesday, Jun 4", days[1].Label)
	assert.Equal(t, "Friday, Jun 7", days[4].Label)

	assert.Equal(t, 81, days[0].High)
	assert.Equal(t, 65, days[0].Low)
	assert.Equal(t, 20, days[0].PrecipitationProbability)
	assert.Equal(t, "Mostly Clear", days[0].Description)
	assert.Equal(t, weather.IconBasePath+"11000_mostly_clear_small.png", days[0].Icon)
}

func TestBuilder_Sun(t *testing.T) {
	dial := builderAt(afternoon).Sun(newYorkForecast())

	require.True(t, dial.Valid)
	assert.False(t, dial.IsNight)
	assert.False(t, dial.DarkMode)
	assert.Equal(t, dashboard.DaySunIcon, dial.Icon)
	assert.Equal(t, "05:25", dial.Sunrise)
	assert.Equal(t, "20:23", dial.Sunset)
	assert.Equal(t, 15, dial.Durations.DaylightHours)
	assert.Equal(t, 9, dial.Durations.NightHours)
	assert.Contains(t, dial.SunriseIcon, "sunrise-light@2x.png")
	assert.Equal(t, "M 220 150 L 20 150", dial.NightPath)
	assert.NotEmpty(t, dial.DayPath)

	night := builderAt(time.Date(2024, 6, 4, 3, 0, 0, 0, time.UTC)).Sun(newYorkForecast())
	assert.True(t, night.IsNight)
	assert.True(t, night.DarkMode)
	assert.Equal(t, dashboard.NightSunIcon, night.Icon)
	assert.Contains(t, night.SunsetIcon, "sunset-dark@2x.png")
}

func TestBuilder_Sun_MissingDaily(t *testing.T) {
	dial := builderAt(afternoon).Sun(&weather.Forecast{})

	assert.False(t, dial.Valid)
	assert.False(t, dial.DarkMode)
	assert.Equal(t, "-4 4", dial.DashArray.Day)
}

func TestBuilder_Details(t *testing.T) {
	metric, err := builderAt(afternoon).Details(newYorkForecast(), dashboard.Metric)
	require.NoError(t, err)

	assert.Equal(t, "24", metric.Temperature.Display)
	assert.Equal(t, "Mild", metric.Temperature.Info)
	assert.Equal(t, "Optimal humidity levels", metric.Humidity.Info)
	assert.Equal(t, "14.4", metric.Wind.Display)
	assert.Equal(t, "km/h", metric.Wind.Unit)
	assert.Equal(t, "Calm | from Southwest", metric.Wind.Info)
	require.NotNil(t, metric.Wind.Bearing)
	assert.Equal(t, 225.0, *metric.Wind.Bearing)
	assert.Equal(t, "1015", metric.Pressure.Display)
	assert.Equal(t, "Normal pressure system", metric.Pressure.Info)

	imperial, err := builderAt(afternoon).Details(newYorkForecast(), dashboard.Imperial)
	require.NoError(t, err)

	assert.Equal(t, "76", imperial.Temperature.Display)
	assert.Equal(t, "8.9", imperial.Wind.Display)
	assert.Equal(t, "29.98", imperial.Pressure.Display)
	assert.Equal(t, "inHg", imperial.Pressure.Unit)
}

func TestBuilder_Build(t *testing.T) {
	d, err := builderAt(afternoon).Build(newYorkForecast(), dashboard.Metric, false)
	require.NoError(t, err)
	assert.Nil(t, d.Raw)

	b, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "metric", decoded["units"])
	assert.NotContains(t, decoded, "forecast")

	sunView, ok := decoded["sun"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, sunView["valid"])
	assert.Equal(t, "15h daylight / 9h night", sunView["durationLabel"])

	withRaw, err := builderAt(afternoon).Build(newYorkForecast(), dashboard.Metric, true)
	require.NoError(t, err)
	assert.NotNil(t, withRaw.Raw)
}
