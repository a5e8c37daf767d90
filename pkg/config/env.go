package config

import (
	"io/fs"
	"os"
	"strconv"

	"cloudeng.io/errors"
	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvLatitude  = "EPHEMERIS_LATITUDE"
	EnvLongitude = "EPHEMERIS_LONGITUDE"
	EnvElevation = "EPHEMERIS_ELEVATION"
	EnvTimezone  = "EPHEMERIS_TIMEZONE"
	EnvOutput    = "EPHEMERIS_OUTPUT"
	EnvInterval  = "EPHEMERIS_INTERVAL"
)

// ApplyEnv loads envFiles (".env" when none are given) into the process
// environment, ignoring missing files, and then overrides the first observer
// and the report settings from the EPHEMERIS_* variables. Variables already
// set in the environment win over the files.
func ApplyEnv(c *ConfigData, envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if len(c.Observers) == 0 {
		c.Observers = []ObserverData{DefaultObserver}
	}
	o := &c.Observers[0]

	errs := &errors.M{}
	errs.Append(
		envFloat(EnvLatitude, &o.Latitude),
		envFloat(EnvLongitude, &o.Longitude),
		envFloat(EnvElevation, &o.Elevation),
	)
	if v, ok := os.LookupEnv(EnvTimezone); ok {
		o.Timezone = v
	}
	if v, ok := os.LookupEnv(EnvOutput); ok {
		c.Report.Output = v
	}
	if v, ok := os.LookupEnv(EnvInterval); ok {
		c.Report.Interval = v
	}
	return errs.Err()
}

func envFloat(name string, dst *float64) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return &FieldError{Field: name, Value: v, Reason: "not a number"}
	}
	*dst = f
	return nil
}
