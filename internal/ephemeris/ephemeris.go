// Package ephemeris validates a location, date and timezone and computes the
// complete set of solar and lunar events for that day.
package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
	_ "time/tzdata" // timezone names resolve on hosts without a zoneinfo database

	"github.com/chrissnell/ephemeris/pkg/lunar"
	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/chrissnell/ephemeris/pkg/solar"
)

// Layouts accepted for Observation.Date and Observation.TimeOfDay.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Elevation limits in meters.
const (
	MinElevation = -500.0
	MaxElevation = 9000.0
)

// MaxDepression is the largest accepted dawn/dusk depression, astronomical
// twilight.
const MaxDepression = 18.0

// Location is a named point on the Earth's surface.
type Location struct {
	Name      string
	Region    string
	Latitude  float64 // degrees, -90..90
	Longitude float64 // degrees, -180..180, east positive
	Elevation float64 // meters
}

// Observer returns the location as a sky.Observer.
func (l Location) Observer() sky.Observer {
	return sky.Observer{Latitude: l.Latitude, Longitude: l.Longitude, Elevation: l.Elevation}
}

// Observation selects the civil day and the instant within it.
type Observation struct {
	Date      string // YYYY-MM-DD
	Timezone  string // IANA name, e.g. Europe/Paris
	TimeOfDay string // HH:MM, defaults to 12:00
}

// Settings tunes the computation.
type Settings struct {
	// Depression is the dawn/dusk depression in degrees; zero selects the
	// civil default of 6°.
	Depression float64
}

// Result is everything known about one day at one location.
type Result struct {
	Location Location
	Timezone *time.Location
	Day      time.Time // local midnight
	At       time.Time // observation instant

	Sun     solar.Events
	SunNow  solar.Position
	SkyBand solar.Band

	Moon         lunar.MoonPhase
	MoonEvents   lunar.Events
	Crescent     lunar.CrescentAngle
	NextNewMoon  time.Time
	NextFullMoon time.Time
}

// Compute validates its inputs and returns the solar and lunar events for
// the requested day. Coordinates, elevation and date are checked first and
// fail with *InputError; the timezone and settings are checked next and fail
// with *ConfigurationError. Nothing is computed until all checks pass.
func Compute(loc Location, obs Observation, settings Settings) (*Result, error) {
	if err := ValidateLocation(loc); err != nil {
		return nil, err
	}
	if _, err := time.Parse(DateLayout, obs.Date); err != nil {
		return nil, &InputError{Field: "date", Value: obs.Date, Reason: "expected a calendar date as YYYY-MM-DD"}
	}
	tod, err := parseTimeOfDay(obs.TimeOfDay)
	if err != nil {
		return nil, err
	}
	tz, err := ResolveTimezone(obs.Timezone)
	if err != nil {
		return nil, err
	}
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation(DateLayout, obs.Date, tz)
	if err != nil {
		return nil, &InputError{Field: "date", Value: obs.Date, Reason: err.Error()}
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), tod.hour, tod.minute, 0, 0, tz)

	o := loc.Observer()
	r := &Result{
		Location: loc,
		Timezone: tz,
		Day:      day,
		At:       at,
		Sun:      solar.Calculate(o, day, solar.Options{Depression: settings.Depression}),
		SunNow:   solar.PositionAt(o, at),
	}
	r.SkyBand = solar.SkyBand(r.SunNow.Elevation)

	r.Moon = lunar.Calculate(at)
	r.MoonEvents = lunar.RiseSet(o, day)
	r.Crescent = lunar.CalculateCrescentAngle(at, loc.Latitude, loc.Longitude)
	r.NextNewMoon = lunar.NextNewMoon(at).In(tz)
	r.NextFullMoon = lunar.NextFullMoon(at).In(tz)

	return r, nil
}

// ValidateLocation checks that the coordinates and elevation are in range.
func ValidateLocation(loc Location) error {
	switch {
	case math.IsNaN(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90:
		return &InputError{Field: "latitude", Value: formatFloat(loc.Latitude), Reason: "must be between -90 and 90 degrees"}
	case math.IsNaN(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180:
		return &InputError{Field: "longitude", Value: formatFloat(loc.Longitude), Reason: "must be between -180 and 180 degrees"}
	case math.IsNaN(loc.Elevation) || loc.Elevation < MinElevation || loc.Elevation > MaxElevation:
		return &InputError{Field: "elevation", Value: formatFloat(loc.Elevation),
			Reason: fmt.Sprintf("must be between %.0f and %.0f meters", MinElevation, MaxElevation)}
	}
	return nil
}

// ResolveTimezone loads an IANA timezone. An empty or unknown name is a
// *ConfigurationError.
func ResolveTimezone(name string) (*time.Location, error) {
	if name == "" {
		return nil, &ConfigurationError{Setting: "timezone", Value: name, Err: errors.New("no timezone given")}
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return nil, &ConfigurationError{Setting: "timezone", Value: name, Err: err}
	}
	return tz, nil
}

func validateSettings(s Settings) error {
	if math.IsNaN(s.Depression) || s.Depression < 0 || s.Depression > MaxDepression {
		return &ConfigurationError{
			Setting: "depression",
			Value:   formatFloat(s.Depression),
			Err:     fmt.Errorf("must be between 0 and %.0f degrees", MaxDepression),
		}
	}
	return nil
}

type timeOfDay struct {
	hour, minute int
}

func parseTimeOfDay(s string) (timeOfDay, error) {
	if s == "" {
		return timeOfDay{hour: 12}, nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return timeOfDay{}, &InputError{Field: "time", Value: s, Reason: "expected HH:MM"}
	}
	return timeOfDay{hour: t.Hour(), minute: t.Minute()}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
