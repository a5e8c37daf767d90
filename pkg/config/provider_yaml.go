package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// ObserverYAML is the on-disk form of an observer
type ObserverYAML struct {
	Name      string  `yaml:"name"`
	Region    string  `yaml:"region,omitempty"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Elevation float64 `yaml:"elevation,omitempty"`
	Timezone  string  `yaml:"timezone"`
}

// ReportYAML is the on-disk form of the report settings
type ReportYAML struct {
	Output      string  `yaml:"output,omitempty"`
	Interval    string  `yaml:"interval,omitempty"`
	Format      string  `yaml:"format,omitempty"`
	Depression  float64 `yaml:"depression,omitempty"`
	OpenBrowser bool    `yaml:"open_browser,omitempty"`
}

type configYAML struct {
	Observers []ObserverYAML `yaml:"observers"`
	Report    ReportYAML     `yaml:"report,omitempty"`
}

// LoadConfig loads the complete configuration from YAML file. Unset fields
// take their defaults.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig configYAML
	if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", y.filename, err)
	}

	config := &ConfigData{
		Observers: make([]ObserverData, len(yamlConfig.Observers)),
		Report: ReportData{
			Output:      yamlConfig.Report.Output,
			Interval:    yamlConfig.Report.Interval,
			Format:      yamlConfig.Report.Format,
			Depression:  yamlConfig.Report.Depression,
			OpenBrowser: yamlConfig.Report.OpenBrowser,
		},
	}
	for i, o := range yamlConfig.Observers {
		config.Observers[i] = ObserverData{
			Name:      o.Name,
			Region:    o.Region,
			Latitude:  o.Latitude,
			Longitude: o.Longitude,
			Elevation: o.Elevation,
			Timezone:  o.Timezone,
		}
	}
	config.ApplyDefaults()

	y.config = config
	return config, nil
}

// GetObservers returns observer configurations
func (y *YAMLProvider) GetObservers() ([]ObserverData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Observers, nil
}

// GetReportSettings returns the report settings
func (y *YAMLProvider) GetReportSettings() (*ReportData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Report, nil
}

// IsReadOnly returns true since YAML files are read-only in this implementation
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// WriteYAML writes c to filename in the format LoadConfig reads.
func WriteYAML(filename string, c *ConfigData) error {
	out := configYAML{
		Report: ReportYAML{
			Output:      c.Report.Output,
			Interval:    c.Report.Interval,
			Format:      c.Report.Format,
			Depression:  c.Report.Depression,
			OpenBrowser: c.Report.OpenBrowser,
		},
	}
	for _, o := range c.Observers {
		out.Observers = append(out.Observers, ObserverYAML(o))
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return os.WriteFile(filename, data, 0644)
}
