package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chrissnell/ephemeris/internal/ephemeris"
	"github.com/chrissnell/ephemeris/internal/log"
	"github.com/chrissnell/ephemeris/pkg/config"
)

// Overrides carries command-line values. Nil fields were not given and
// leave the configured value alone.
type Overrides struct {
	Observer    string
	Latitude    *float64
	Longitude   *float64
	Elevation   *float64
	Timezone    *string
	Date        string
	Days        int
	Time        string
	Interval    *string
	Output      *string
	Format      *string
	Depression  *float64
	OpenBrowser *bool
	NoHTML      bool
}

// LoadConfig reads the configuration from cfgFile using the named backend.
// A missing YAML file yields the defaults.
func LoadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider
	switch cfgBackend {
	case "yaml":
		if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
			log.Debugf("no configuration at %s, using defaults", filename)
			return config.DefaultConfig(), nil
		}
		provider = config.NewYAMLProvider(filename)
	case "sqlite":
		p, err := config.NewSQLiteProvider(filename)
		if err != nil {
			return nil, &ephemeris.ConfigurationError{Setting: "config", Value: cfgFile, Err: err}
		}
		provider = p
	default:
		return nil, &ephemeris.ConfigurationError{
			Setting: "config-backend",
			Value:   cfgBackend,
			Err:     fmt.Errorf("unsupported configuration backend, use 'yaml' or 'sqlite'"),
		}
	}
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, &ephemeris.ConfigurationError{Setting: "config", Value: cfgFile, Err: err}
	}
	return cfgData, nil
}

// Resolve merges the configuration, the environment and the command-line
// overrides into the options for one run. now supplies the default date.
func Resolve(cfg *config.ConfigData, ov Overrides, now time.Time) (Options, error) {
	if err := config.ApplyEnv(cfg); err != nil {
		return Options{}, &ephemeris.ConfigurationError{Setting: "environment", Err: err}
	}

	observer, err := cfg.Observer(ov.Observer)
	if err != nil {
		return Options{}, &ephemeris.ConfigurationError{Setting: "observer", Value: ov.Observer, Err: err}
	}

	setFloat(&observer.Latitude, ov.Latitude)
	setFloat(&observer.Longitude, ov.Longitude)
	setFloat(&observer.Elevation, ov.Elevation)
	setString(&observer.Timezone, ov.Timezone)

	report := cfg.Report
	setString(&report.Interval, ov.Interval)
	setString(&report.Output, ov.Output)
	setString(&report.Format, ov.Format)
	setFloat(&report.Depression, ov.Depression)
	if ov.OpenBrowser != nil {
		report.OpenBrowser = *ov.OpenBrowser
	}

	// Coordinates are validated by the engine so that they surface as input
	// errors; everything else is configuration.
	checked := config.ConfigData{
		Observers: []config.ObserverData{{Name: "resolved", Timezone: observer.Timezone}},
		Report:    report,
	}
	if err := checked.Validate(); err != nil {
		return Options{}, &ephemeris.ConfigurationError{Setting: "config", Err: err}
	}
	interval, err := report.IntervalDuration()
	if err != nil {
		return Options{}, &ephemeris.ConfigurationError{Setting: "interval", Value: report.Interval, Err: err}
	}

	date, err := resolveDate(ov.Date, ov.Days, observer.Timezone, now)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Location: ephemeris.Location{
			Name:      observer.Name,
			Region:    observer.Region,
			Latitude:  observer.Latitude,
			Longitude: observer.Longitude,
			Elevation: observer.Elevation,
		},
		Observation: ephemeris.Observation{
			Date:      date,
			Timezone:  observer.Timezone,
			TimeOfDay: ov.Time,
		},
		Settings:    ephemeris.Settings{Depression: report.Depression},
		Interval:    interval,
		Output:      report.Output,
		Format:      report.Format,
		NoHTML:      ov.NoHTML,
		OpenBrowser: report.OpenBrowser,
	}, nil
}

// resolveDate picks the civil date: the given one or today in tz, shifted
// by days. An unparseable date is passed through for the engine to reject.
func resolveDate(date string, days int, tz string, now time.Time) (string, error) {
	if date == "" {
		loc, err := ephemeris.ResolveTimezone(tz)
		if err != nil {
			return "", err
		}
		date = now.In(loc).Format(ephemeris.DateLayout)
	}
	if days == 0 {
		return date, nil
	}
	d, err := time.Parse(ephemeris.DateLayout, date)
	if err != nil {
		return date, nil
	}
	return d.AddDate(0, 0, days).Format(ephemeris.DateLayout), nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
