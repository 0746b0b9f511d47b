package dashboard

import (
	"errors"
	"math"
	"strconv"

	"github.com/skydial/skydial/internal/sun"
	"github.com/skydial/skydial/internal/weather"
)

// Strip lengths shown by the dashboard.
const (
	HourlyItems = 25
	DailyItems  = 5
)

// Sun dial decoration.
const (
	SunriseIconBase = "/weather-conditions-icons/sunset-sunrise/png/"
	NightSunIcon    = weather.IconBasePath + weather.DefaultNightIcon
	DaySunIcon      = weather.IconBasePath + weather.DefaultDayIcon
)

// ErrIncompleteForecast is returned when a view needs a timeline that the
// forecast does not carry.
var ErrIncompleteForecast = errors.New("forecast is missing daily or hourly data")

// Current is the headline card.
type Current struct {
	Temperature         int    `json:"temperature"`
	TemperatureApparent int    `json:"temperatureApparent"`
	High                int    `json:"high"`
	Low                 int    `json:"low"`
	Unit                string `json:"unit"`
	WeatherCode         int    `json:"weatherCode"`
	Description         string `json:"description"`
	Icon                string `json:"icon"`
	IsNight             bool   `json:"isNight"`
}

// Hour is one cell of the hourly strip.
type Hour struct {
	StartTime   string `json:"startTime"`
	Label       string `json:"label"`
	Temperature int    `json:"temperature"`
	WeatherCode int    `json:"weatherCode"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	IsNight     bool   `json:"isNight"`
}

// Day is one cell of the daily strip.
type Day struct {
	StartTime                string `json:"startTime"`
	Label                    string `json:"label"`
	High                     int    `json:"high"`
	Low                      int    `json:"low"`
	PrecipitationProbability int    `json:"precipitationProbability"`
	WeatherCode              int    `json:"weatherCode"`
	Description              string `json:"description"`
	Icon                     string `json:"icon"`
}

// SunDial is the sunrise/sunset visual: engine output plus the assets the
// client needs to draw it.
type SunDial struct {
	sun.State

	Icon        string `json:"icon"`
	DarkMode    bool   `json:"darkMode"`
	SunriseIcon string `json:"sunriseIcon"`
	SunsetIcon  string `json:"sunsetIcon"`
	DayPath     string `json:"dayPath,omitempty"`
	NightPath   string `json:"nightPath"`
}

// Card is one detail tile.
type Card struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`

	// Display is Value formatted the way the tile prints it.
	Display string   `json:"display"`
	Unit    string   `json:"unit"`
	Info    string   `json:"info"`
	Bearing *float64 `json:"bearing,omitempty"`
}

// Details are the four detail tiles for the current hour.
type Details struct {
	Temperature Card `json:"temperature"`
	Humidity    Card `json:"humidity"`
	Wind        Card `json:"wind"`
	Pressure    Card `json:"pressure"`
}

// Dashboard bundles every view for one forecast.
type Dashboard struct {
	Units   Units             `json:"units"`
	Current Current           `json:"current"`
	Hourly  []Hour            `json:"hourly"`
	Daily   []Day             `json:"daily"`
	Sun     SunDial           `json:"sun"`
	Details Details           `json:"details"`
	Raw     *weather.Forecast `json:"forecast,omitempty"`
}

// Builder composes views against a clock.
type Builder struct {
	clock sun.Clock
	calc  *sun.Calculator
}

// NewBuilder creates a builder. A nil clock uses the system clock.
func NewBuilder(clock sun.Clock) *Builder {
	if clock == nil {
		clock = sun.RealClock{}
	}
	return &Builder{clock: clock, calc: sun.NewCalculator(clock, sun.DayArc)}
}

// Build renders every view. includeRaw attaches the forecast itself.
func (b *Builder) Build(f *weather.Forecast, u Units, includeRaw bool) (*Dashboard, error) {
	current, err := b.Current(f, u)
	if err != nil {
		return nil, err
	}
	details, err := b.Details(f, u)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Units:   u,
		Current: current,
		Hourly:  b.Hourly(f, u),
		Daily:   b.Daily(f, u),
		Sun:     b.Sun(f),
		Details: details,
	}
	if includeRaw {
		d.Raw = f
	}
	return d, nil
}

// Current renders the headline card from the first hour and first day.
func (b *Builder) Current(f *weather.Forecast, u Units) (Current, error) {
	today, okDay := f.Today()
	hour, okHour := f.CurrentHour()
	if !okDay || !okHour {
		return Current{}, ErrIncompleteForecast
	}

	night := sun.IsNightAt(b.clock.Now(), f.TimezoneOffset, today.SunriseTime, today.SunsetTime)
	code := hour.Values.WeatherCode

	return Current{
		Temperature:         RoundedTemperature(hour.Values.Temperature, u),
		TemperatureApparent: RoundedTemperature(hour.Values.TemperatureApparent, u),
		High:                RoundedTemperature(today.TemperatureMax, u),
		Low:                 RoundedTemperature(today.TemperatureMin, u),
		Unit:                u.TemperatureUnit(),
		WeatherCode:         code,
		Description:         weather.HourlyDescription(code),
		Icon:                weather.HourlyIcon(code, night, weather.IconBig),
		IsNight:             night,
	}, nil
}

// Hourly renders up to HourlyItems hours. Each hour is classified against
// today's sunrise and sunset using its own offset.
func (b *Builder) Hourly(f *weather.Forecast, u Units) []Hour {
	today, _ := f.Today()

	intervals := f.Hourly.Intervals
	if len(intervals) > HourlyItems {
		intervals = intervals[:HourlyItems]
	}

	hours := make([]Hour, 0, len(intervals))
	for i, iv := range intervals {
		label, err := HourLabel(iv.StartTime, i)
		if err != nil {
			label = ""
		}
		night := sun.IsNightForTimestamp(iv.StartTime, today.SunriseTime, today.SunsetTime)
		code := iv.Values.WeatherCode

		hours = append(hours, Hour{
			StartTime:   iv.StartTime,
			Label:       label,
			Temperature: RoundedTemperature(iv.Values.Temperature, u),
			WeatherCode: code,
			Description: weather.HourlyDescription(code),
			Icon:        weather.HourlyIcon(code, night, weather.IconSmall),
			IsNight:     night,
		})
	}
	return hours
}

// Daily renders up to DailyItems days.
func (b *Builder) Daily(f *weather.Forecast, u Units) []Day {
	now := b.clock.Now()

	intervals := f.Daily.Intervals
	if len(intervals) > DailyItems {
		intervals = intervals[:DailyItems]
	}

	days := make([]Day, 0, len(intervals))
	for i, iv := range intervals {
		v := iv.Values
		days = append(days, Day{
			StartTime:                iv.StartTime,
			Label:                    DayLabel(iv.StartTime, i, now),
			High:                     RoundedTemperature(v.TemperatureMax, u),
			Low:                      RoundedTemperature(v.TemperatureMin, u),
			PrecipitationProbability: roundHalfUp(v.PrecipitationProbabilityMax),
			WeatherCode:              v.WeatherCodeDay,
			Description:              weather.DailyDescription(v.WeatherCodeDay),
			Icon:                     weather.DailyIcon(v.WeatherCodeDay),
		})
	}
	return days
}

// Sun renders the dial for today. A forecast without a daily timeline gives
// an invalid state with the day fallback.
func (b *Builder) Sun(f *weather.Forecast) SunDial {
	today, _ := f.Today()
	state := b.calc.Compute(sun.Input{
		SunriseISO:    today.SunriseTime,
		SunsetISO:     today.SunsetTime,
		OffsetMinutes: f.TimezoneOffset,
	})
	return NewSunDial(state, b.calc.Path())
}

// NewSunDial decorates an engine state with icons and path strings.
func NewSunDial(state sun.State, path sun.PathGeometry) SunDial {
	theme := "light"
	icon := DaySunIcon
	if state.IsNight {
		theme = "dark"
		icon = NightSunIcon
	}

	dial := SunDial{
		State:       state,
		Icon:        icon,
		DarkMode:    state.IsNight,
		SunriseIcon: SunriseIconBase + "sunrise-" + theme + "@2x.png",
		SunsetIcon:  SunriseIconBase + "sunset-" + theme + "@2x.png",
		NightPath:   sun.NightLine.SVGPath(),
	}
	if p, ok := path.(interface{ SVGPath() string }); ok {
		dial.DayPath = p.SVGPath()
	}
	return dial
}

// Details renders the detail tiles from the current hour.
func (b *Builder) Details(f *weather.Forecast, u Units) (Details, error) {
	hour, ok := f.CurrentHour()
	if !ok {
		return Details{}, ErrIncompleteForecast
	}
	v := hour.Values

	temp := float64(RoundedTemperature(v.Temperature, u))
	wind := WindSpeed(v.WindSpeed, u)
	pressureHPa := v.PressureSurfaceLevel
	if pressureHPa == 0 {
		pressureHPa = 1013
	}
	pressure := Pressure(pressureHPa, u)
	humidity := math.Round(v.Humidity)

	return Details{
		Temperature: Card{
			Label:   "Temperature",
			Value:   temp,
			Display: strconv.Itoa(int(temp)),
			Unit:    u.TemperatureUnit(),
			Info:    TemperatureDescription(temp, u),
		},
		Humidity: Card{
			Label:   "Humidity",
			Value:   humidity,
			Display: strconv.Itoa(int(humidity)),
			Unit:    "%",
			Info:    HumidityStatus(v.Humidity) + " humidity levels",
		},
		Wind: Card{
			Label:   "Wind",
			Value:   wind,
			Display: strconv.FormatFloat(wind, 'f', 1, 64),
			Unit:    u.SpeedUnit(),
			Info:    WindDescription(wind, u) + " | from " + CompassDirection(v.WindDirection),
			Bearing: v.WindDirection,
		},
		Pressure: Card{
			Label:   "Pressure",
			Value:   pressure,
			Display: strconv.FormatFloat(pressure, 'f', -1, 64),
			Unit:    u.PressureUnit(),
			Info:    PressureStatus(pressure, u) + " pressure system",
		},
	}, nil
}
