// Package config loads observer locations and report settings from a YAML
// file or a SQLite database, applies environment overrides and validates the
// result.
package config

import "fmt"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetObservers() ([]ObserverData, error)
	GetReportSettings() (*ReportData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Observers []ObserverData `json:"observers"`
	Report    ReportData     `json:"report,omitempty"`
}

// ObserverData is a named place on Earth and the timezone its civil day is
// reckoned in.
type ObserverData struct {
	Name      string  `json:"name"`
	Region    string  `json:"region,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"`
	Timezone  string  `json:"timezone"`
}

// ReportData holds the settings for report generation
type ReportData struct {
	Output      string  `json:"output,omitempty"`
	Interval    string  `json:"interval,omitempty"` // Go duration, e.g. 5m
	Format      string  `json:"format,omitempty"`   // svg or png
	Depression  float64 `json:"depression,omitempty"`
	OpenBrowser bool    `json:"open_browser,omitempty"`
}

// Defaults
const (
	DefaultOutput     = "html/ephemeris.html"
	DefaultInterval   = "5m"
	DefaultFormat     = "svg"
	DefaultDepression = 6.0
)

// DefaultObserver is used when the configuration names no observers.
var DefaultObserver = ObserverData{
	Name:      "Paris",
	Region:    "France",
	Latitude:  48.859,
	Longitude: 2.347,
	Elevation: 10,
	Timezone:  "Europe/Paris",
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *ConfigData {
	c := &ConfigData{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills in every unset field.
func (c *ConfigData) ApplyDefaults() {
	if len(c.Observers) == 0 {
		c.Observers = []ObserverData{DefaultObserver}
	}
	if c.Report.Output == "" {
		c.Report.Output = DefaultOutput
	}
	if c.Report.Interval == "" {
		c.Report.Interval = DefaultInterval
	}
	if c.Report.Format == "" {
		c.Report.Format = DefaultFormat
	}
	if c.Report.Depression == 0 {
		c.Report.Depression = DefaultDepression
	}
}

// Observer returns the observer called name, or the first one when name is
// empty.
func (c *ConfigData) Observer(name string) (ObserverData, error) {
	if len(c.Observers) == 0 {
		return ObserverData{}, fmt.Errorf("no observers configured")
	}
	if name == "" {
		return c.Observers[0], nil
	}
	for _, o := range c.Observers {
		if o.Name == name {
			return o, nil
		}
	}
	return ObserverData{}, fmt.Errorf("observer %q not found in configuration", name)
}
