package config

import (
	"fmt"
	"math"
	"strconv"
	"time"
	_ "time/tzdata" // timezone names validate on hosts without a zoneinfo database

	"cloudeng.io/errors"
)

// Limits enforced by Validate.
const (
	MinElevation  = -500.0
	MaxElevation  = 9000.0
	MaxDepression = 18.0
)

// FieldError describes one invalid configuration value.
type FieldError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every observer and the report settings and returns all
// problems found, not just the first.
func (c *ConfigData) Validate() error {
	errs := &errors.M{}

	seen := make(map[string]bool, len(c.Observers))
	for i, o := range c.Observers {
		prefix := fmt.Sprintf("observers[%d]", i)
		if o.Name == "" {
			errs.Append(&FieldError{Field: prefix + ".name", Reason: "must not be empty"})
		} else if seen[o.Name] {
			errs.Append(&FieldError{Field: prefix + ".name", Value: o.Name, Reason: "duplicate observer name"})
		}
		seen[o.Name] = true

		if math.IsNaN(o.Latitude) || o.Latitude < -90 || o.Latitude > 90 {
			errs.Append(&FieldError{Field: prefix + ".latitude", Value: ftoa(o.Latitude), Reason: "must be between -90 and 90"})
		}
		if math.IsNaN(o.Longitude) || o.Longitude < -180 || o.Longitude > 180 {
			errs.Append(&FieldError{Field: prefix + ".longitude", Value: ftoa(o.Longitude), Reason: "must be between -180 and 180"})
		}
		if math.IsNaN(o.Elevation) || o.Elevation < MinElevation || o.Elevation > MaxElevation {
			errs.Append(&FieldError{Field: prefix + ".elevation", Value: ftoa(o.Elevation),
				Reason: fmt.Sprintf("must be between %.0f and %.0f meters", MinElevation, MaxElevation)})
		}
		if o.Timezone == "" {
			errs.Append(&FieldError{Field: prefix + ".timezone", Reason: "must not be empty"})
		} else if _, err := time.LoadLocation(o.Timezone); err != nil {
			errs.Append(&FieldError{Field: prefix + ".timezone", Value: o.Timezone, Reason: "unknown timezone"})
		}
	}

	r := c.Report
	if d, err := time.ParseDuration(r.Interval); err != nil {
		errs.Append(&FieldError{Field: "report.interval", Value: r.Interval, Reason: "not a duration"})
	} else if d <= 0 || d > 24*time.Hour {
		errs.Append(&FieldError{Field: "report.interval", Value: r.Interval, Reason: "must be greater than 0 and at most 24h"})
	}
	if r.Format != "svg" && r.Format != "png" {
		errs.Append(&FieldError{Field: "report.format", Value: r.Format, Reason: "must be svg or png"})
	}
	if math.IsNaN(r.Depression) || r.Depression < 0 || r.Depression > MaxDepression {
		errs.Append(&FieldError{Field: "report.depression", Value: ftoa(r.Depression),
			Reason: fmt.Sprintf("must be between 0 and %.0f degrees", MaxDepression)})
	}
	if r.Output == "" {
		errs.Append(&FieldError{Field: "report.output", Reason: "must not be empty"})
	}

	return errs.Err()
}

// IntervalDuration returns the parsed sampling interval.
func (r ReportData) IntervalDuration() (time.Duration, error) {
	return time.ParseDuration(r.Interval)
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
