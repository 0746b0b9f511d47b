package weather

import "fmt"

// IconBasePath is where the dashboard serves condition icons from.
const IconBasePath = "/weather-conditions-icons/png/"

// Default icons used when a code is unknown.
const (
	DefaultDayIcon   = "10000_clear_small.png"
	DefaultNightIcon = "10001_clear_small.png"
)

// UnknownDescription is returned for codes missing from the tables.
const UnknownDescription = "Unknown"

// IconSize selects the small or the @2x rendition.
type IconSize string

const (
	IconSmall IconSize = "small"
	IconBig   IconSize = "big"
)

// condition describes a provider weather code. Icon files are named
// "<code><variant>_<slug>_small.png" where variant 0 is day and 1 is night.
type condition struct {
	description string
	slug        string
	night       bool
}

// hourlyConditions is keyed by the 4-digit hourly weatherCode.
var hourlyConditions = map[int]condition{
	1000: {"Clear", "clear", true},
	1100: {"Mostly Clear", "mostly_clear", true},
	1101: {"Partly Cloudy", "partly_cloudy", true},
	1102: {"Mostly Cloudy", "mostly_cloudy", true},
	1001: {"Cloudy", "cloudy", false},
	2000: {"Fog", "fog", false},
	2100: {"Light Fog", "fog_light", false},
	4000: {"Drizzle", "drizzle", false},
	4001: {"Rain", "rain", false},
	4200: {"Light Rain", "rain_light", false},
	4201: {"Heavy Rain", "rain_heavy", false},
	5000: {"Snow", "snow", false},
	5001: {"Flurries", "flurries", false},
	5100: {"Light Snow", "snow_light", false},
	5101: {"Heavy Snow", "snow_heavy", false},
	6000: {"Freezing Drizzle", "freezing_rain_drizzle", false},
	6001: {"Freezing Rain", "freezing_rain", false},
	6200: {"Light Freezing Rain", "freezing_rain_light", false},
	6201: {"Heavy Freezing Rain", "freezing_rain_heavy", false},
	7000: {"Ice Pellets", "ice_pellets", false},
	7101: {"Heavy Ice Pellets", "ice_pellets_heavy", false},
	7102: {"Light Ice Pellets", "ice_pellets_light", false},
	8000: {"Thunderstorm", "tstorm", false},
}

// dailyConditions is keyed by the first four digits of the 5-digit daily
// weatherCodeDay/weatherCodeNight values. night marks bases that also have
// a variant-1 code.
var dailyConditions = map[int]condition{
	1000: {"Clear", "clear", true},
	1001: {"Cloudy", "cloudy", false},
	1100: {"Mostly Clear", "mostly_clear", true},
	1101: {"Partly Cloudy", "partly_cloudy", true},
	1102: {"Mostly Cloudy", "mostly_cloudy", true},
	1103: {"Mostly Clear", "mostly_clear", true},
	2000: {"Fog", "fog", false},
	2100: {"Light Fog", "fog_light", false},
	2101: {"Light Fog, Mostly Clear", "fog_light_mostly_clear", true},
	2102: {"Light Fog, Partly Cloudy", "fog_light_partly_cloudy", true},
	2103: {"Light Fog, Mostly Cloudy", "fog_light_mostly_cloudy", true},
	2106: {"Fog, Mostly Clear", "fog_mostly_clear", true},
	2107: {"Fog, Partly Cloudy", "fog_partly_cloudy", true},
	2108: {"Fog, Mostly Cloudy", "fog_mostly_cloudy", true},
	4000: {"Drizzle", "drizzle", false},
	4001: {"Rain", "rain", false},
	4200: {"Light Rain", "rain_light", false},
	4201: {"Heavy Rain", "rain_heavy", false},
	4202: {"Heavy Rain, Partly Cloudy", "rain_heavy_partly_cloudy", true},
	4203: {"Drizzle, Mostly Clear", "drizzle_mostly_clear", true},
	4204: {"Drizzle, Partly Cloudy", "drizzle_partly_cloudy", true},
	4205: {"Drizzle, Mostly Cloudy", "drizzle_mostly_cloudy", true},
	4208: {"Rain, Partly Cloudy", "rain_partly_cloudy", true},
	4209: {"Rain, Mostly Clear", "rain_mostly_clear", true},
	4210: {"Rain, Mostly Cloudy", "rain_mostly_cloudy", true},
	4211: {"Heavy Rain, Mostly Clear", "rain_heavy_mostly_clear", true},
	4212: {"Heavy Rain, Mostly Cloudy", "rain_heavy_mostly_cloudy", true},
	4213: {"Light Rain, Mostly Clear", "rain_light_mostly_clear", true},
	4214: {"Light Rain, Partly Cloudy", "rain_light_partly_cloudy", true},
	4215: {"Light Rain, Mostly Cloudy", "rain_light_mostly_cloudy", true},
	5000: {"Snow", "snow", false},
	5001: {"Flurries", "flurries", false},
	5100: {"Light Snow", "snow_light", false},
	5101: {"Heavy Snow", "snow_heavy", false},
	5102: {"Light Snow, Mostly Clear", "snow_light_mostly_clear", true},
	5103: {"Light Snow, Partly Cloudy", "snow_light_partly_cloudy", true},
	5104: {"Light Snow, Mostly Cloudy", "snow_light_mostly_cloudy", true},
	5105: {"Snow, Mostly Clear", "snow_mostly_clear", true},
	5106: {"Snow, Partly Cloudy", "snow_partly_cloudy", true},
	5107: {"Snow, Mostly Cloudy", "snow_mostly_cloudy", true},
	5108: {"Wintry Mix", "wintry_mix", false},
	5110: {"Wintry Mix", "wintry_mix", false},
	5112: {"Wintry Mix", "wintry_mix", false},
	5114: {"Wintry Mix", "wintry_mix", false},
	5115: {"Flurries, Mostly Clear", "flurries_mostly_clear", true},
	5116: {"Flurries, Partly Cloudy", "flurries_partly_cloudy", true},
	5117: {"Flurries, Mostly Cloudy", "flurries_mostly_cloudy", true},
	5119: {"Heavy Snow, Mostly Clear", "snow_heavy_mostly_clear", true},
	5120: {"Heavy Snow, Partly Cloudy", "snow_heavy_partly_cloudy", true},
	5121: {"Heavy Snow, Mostly Cloudy", "snow_heavy_mostly_cloudy", true},
	5122: {"Wintry Mix", "wintry_mix", false},
	6000: {"Freezing Rain and Drizzle", "freezing_rain_drizzle", false},
	6001: {"Freezing Rain", "freezing_rain", false},
	6002: {"Freezing Rain and Drizzle, Partly Cloudy", "freezing_rain_drizzle_partly_cloudy", true},
	6003: {"Freezing Rain and Drizzle, Mostly Clear", "freezing_rain_drizzle_mostly_clear", true},
	6004: {"Freezing Rain and Drizzle, Mostly Cloudy", "freezing_rain_drizzle_mostly_cloudy", true},
	6200: {"Light Freezing Rain", "freezing_rain_light", false},
	6201: {"Heavy Freezing Rain", "freezing_rain_heavy", false},
	6202: {"Heavy Freezing Rain, Partly Cloudy", "freezing_rain_heavy_partly_cloudy", true},
	6203: {"Light Freezing Rain, Partly Cloudy", "freezing_rain_light_partly_cloudy", true},
	6204: {"Wintry Mix", "wintry_mix", false},
	6205: {"Light Freezing Rain, Mostly Clear", "freezing_rain_light_mostly_clear", true},
	6206: {"Wintry Mix", "wintry_mix", false},
	6207: {"Heavy Freezing Rain, Mostly Clear", "freezing_rain_heavy_mostly_clear", true},
	6208: {"Heavy Freezing Rain, Mostly Cloudy", "freezing_rain_heavy_mostly_cloudy", true},
	6209: {"Light Freezing Rain, Mostly Cloudy", "freezing_rain_light_mostly_cloudy", true},
	6212: {"Wintry Mix", "wintry_mix", false},
	6213: {"Freezing Rain, Mostly Clear", "freezing_rain_mostly_clear", true},
	6214: {"Freezing Rain, Partly Cloudy", "freezing_rain_partly_cloudy", true},
	6215: {"Freezing Rain, Mostly Cloudy", "freezing_rain_mostly_cloudy", true},
	6220: {"Wintry Mix", "wintry_mix", false},
	6222: {"Wintry Mix", "wintry_mix", false},
	7000: {"Ice Pellets", "ice_pellets", false},
	7101: {"Heavy Ice Pellets", "ice_pellets_heavy", false},
	7102: {"Light Ice Pellets", "ice_pellets_light", false},
	7103: {"Wintry Mix", "wintry_mix", false},
	7105: {"Wintry Mix", "wintry_mix", false},
	7106: {"Wintry Mix", "wintry_mix", false},
	7107: {"Ice Pellets, Partly Cloudy", "ice_pellets_partly_cloudy", true},
	7108: {"Ice Pellets, Mostly Clear", "ice_pellets_mostly_clear", true},
	7109: {"Ice Pellets, Mostly Cloudy", "ice_pellets_mostly_cloudy", true},
	7110: {"Light Ice Pellets, Mostly Clear", "ice_pellets_light_mostly_clear", true},
	7111: {"Light Ice Pellets, Partly Cloudy", "ice_pellets_light_partly_cloudy", true},
	7112: {"Light Ice Pellets, Mostly Cloudy", "ice_pellets_light_mostly_cloudy", true},
	7113: {"Heavy Ice Pellets, Mostly Clear", "ice_pellets_heavy_mostly_clear", true},
	7114: {"Heavy Ice Pellets, Partly Cloudy", "ice_pellets_heavy_partly_cloudy", true},
	7115: {"Wintry Mix", "wintry_mix", false},
	7116: {"Heavy Ice Pellets, Mostly Cloudy", "ice_pellets_heavy_mostly_cloudy", true},
	7117: {"Wintry Mix", "wintry_mix", false},
	8000: {"Thunderstorm", "tstorm", false},
	8001: {"Thunderstorm, Mostly Clear", "tstorm_mostly_clear", true},
	8002: {"Thunderstorm, Mostly Cloudy", "tstorm_mostly_cloudy", true},
	8003: {"Thunderstorm, Partly Cloudy", "tstorm_partly_cloudy", true},
}

func iconFile(code, variant int, slug string, size IconSize) string {
	suffix := "_small.png"
	if size == IconBig {
		suffix = "_small@2x.png"
	}
	return fmt.Sprintf("%d%d_%s%s", code, variant, slug, suffix)
}

// HourlyIcon returns the icon path for an hourly weather code. Night icons
// are used only for codes that have one.
func HourlyIcon(code int, isNight bool, size IconSize) string {
	c, ok := hourlyConditions[code]
	if !ok {
		return IconBasePath + DefaultDayIcon
	}
	if isNight && c.night {
		return IconBasePath + iconFile(code, 1, c.slug, size)
	}
	return IconBasePath + iconFile(code, 0, c.slug, size)
}

// HourlyDescription returns the text for an hourly weather code.
func HourlyDescription(code int) string {
	if c, ok := hourlyConditions[code]; ok {
		return c.description
	}
	return UnknownDescription
}

func lookupDaily(code int) (condition, bool) {
	base, variant := code/10, code%10
	c, ok := dailyConditions[base]
	if !ok || code < 10000 || code > 99999 {
		return condition{}, false
	}
	if variant == 0 || (variant == 1 && c.night) {
		return c, true
	}
	return condition{}, false
}

// DailyIcon returns the icon path for a 5-digit daily weather code.
func DailyIcon(code int) string {
	c, ok := lookupDaily(code)
	if !ok {
		return IconBasePath + DefaultDayIcon
	}
	return IconBasePath + fmt.Sprintf("%d_%s_small.png", code, c.slug)
}

// DailyDescription returns the text for a 5-digit daily weather code.
func DailyDescription(code int) string {
	if c, ok := lookupDaily(code); ok {
		return c.description
	}
	return UnknownDescription
}
