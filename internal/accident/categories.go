package accident

import "strings"

// Severity is the categorical outcome of an accident.
type Severity string

const (
	SeverityMinor   Severity = "Minor"
	SeverityMajor   Severity = "Major"
	SeverityFatal   Severity = "Fatal"
	SeverityOther   Severity = "Other"   // a label was present but not recognised
	SeverityUnknown Severity = "Unknown" // no label at all
)

// Severities lists every severity bucket in reporting order.
var Severities = []Severity{SeverityMinor, SeverityMajor, SeverityFatal, SeverityOther, SeverityUnknown}

// ParseSeverity maps a raw label onto a Severity. Matching is case-insensitive
// and ignores surrounding whitespace; unrecognised labels become SeverityOther.
func ParseSeverity(raw string) Severity {
	s := strings.TrimSpace(raw)
	if s == "" {
		return SeverityUnknown
	}
	for _, v := range []Severity{SeverityMinor, SeverityMajor, SeverityFatal} {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return SeverityOther
}

// TimeOfDay buckets the time an accident happened.
type TimeOfDay string

const (
	Morning          TimeOfDay = "Morning"
	Afternoon        TimeOfDay = "Afternoon"
	Evening          TimeOfDay = "Evening"
	Night            TimeOfDay = "Night"
	TimeOfDayUnknown TimeOfDay = "Unknown"
)

// TimesOfDay lists every time-of-day bucket in reporting order.
var TimesOfDay = []TimeOfDay{Morning, Afternoon, Evening, Night, TimeOfDayUnknown}

// ParseTimeOfDay maps a raw label onto a TimeOfDay.
func ParseTimeOfDay(raw string) TimeOfDay {
	s := strings.TrimSpace(raw)
	for _, v := range []TimeOfDay{Morning, Afternoon, Evening, Night} {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return TimeOfDayUnknown
}

// Weather is the recorded weather condition.
type Weather string

const (
	Clear          Weather = "Clear"
	Rainy          Weather = "Rainy"
	Foggy          Weather = "Foggy"
	WeatherUnknown Weather = "Unknown"
)

// Weathers lists every weather bucket in reporting order.
var Weathers = []Weather{Clear, Rainy, Foggy, WeatherUnknown}

// ParseWeather maps a raw label onto a Weather.
func ParseWeather(raw string) Weather {
	s := strings.TrimSpace(raw)
	for _, v := range []Weather{Clear, Rainy, Foggy} {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return WeatherUnknown
}
