package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
observers:
  - name: Paris
    region: France
    latitude: 48.859
    longitude: 2.347
    elevation: 35
    timezone: Europe/Paris
  - name: Longyearbyen
    region: Svalbard
    latitude: 78.22
    longitude: 15.65
    timezone: Arctic/Longyearbyen
report:
  output: out/report.html
  interval: 10m
  format: png
  depression: 12
  open_browser: true
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestYAMLProvider(t *testing.T) {
	p := NewYAMLProvider(writeFile(t, "ephemeris.yaml", sampleYAML))
	defer p.Close()

	if !p.IsReadOnly() {
		t.Error("YAML provider should be read-only")
	}

	observers, err := p.GetObservers()
	if err != nil {
		t.Fatalf("GetObservers: %v", err)
	}
	if len(observers) != 2 {
		t.Fatalf("got %d observers, expected 2", len(observers))
	}
	if observers[1].Name != "Longyearbyen" || observers[1].Latitude != 78.22 || observers[1].Elevation != 0 {
		t.Errorf("unexpected second observer: %+v", observers[1])
	}

	report, err := p.GetReportSettings()
	if err != nil {
		t.Fatalf("GetReportSettings: %v", err)
	}
	expected := ReportData{Output: "out/report.html", Interval: "10m", Format: "png", Depression: 12, OpenBrowser: true}
	if *report != expected {
		t.Errorf("report = %+v, expected %+v", *report, expected)
	}
}

func TestYAMLProviderDefaults(t *testing.T) {
	p := NewYAMLProvider(writeFile(t, "empty.yaml", "observers: []\n"))
	c, err := p.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(c.Observers) != 1 || c.Observers[0] != DefaultObserver {
		t.Errorf("observers = %+v, expected the default observer", c.Observers)
	}
	if c.Report.Output != DefaultOutput || c.Report.Interval != DefaultInterval ||
		c.Report.Format != DefaultFormat || c.Report.Depression != DefaultDepression || c.Report.OpenBrowser {
		t.Errorf("report = %+v, expected defaults", c.Report)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default configuration does not validate: %v", err)
	}
}

func TestYAMLProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "observers: []\nstations: []\n"},
		{"wrong type", "observers:\n  - name: x\n    latitude: north\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewYAMLProvider(writeFile(t, "bad.yaml", tt.content))
			if _, err := p.LoadConfig(); err == nil {
				t.Error("LoadConfig succeeded, expected an error")
			}
		})
	}

	if _, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).LoadConfig(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, expected os.ErrNotExist", err)
	}
}

func TestYAMLToSQLiteRoundTrip(t *testing.T) {
	yamlConfig, err := NewYAMLProvider(writeFile(t, "ephemeris.yaml", sampleYAML)).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	dbPath := filepath.Join(t.TempDir(), "config.db")
	db, err := NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	if db.IsReadOnly() {
		t.Error("SQLite provider should be writable")
	}
	if err := db.SaveConfig(yamlConfig); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	db.Close()

	// Reopen to make sure the data was persisted and migrations are idempotent.
	db, err = NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	loaded, err := db.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig from SQLite: %v", err)
	}
	if len(loaded.Observers) != len(yamlConfig.Observers) {
		t.Fatalf("got %d observers, expected %d", len(loaded.Observers), len(yamlConfig.Observers))
	}
	for i := range loaded.Observers {
		if loaded.Observers[i] != yamlConfig.Observers[i] {
			t.Errorf("observer %d = %+v, expected %+v", i, loaded.Observers[i], yamlConfig.Observers[i])
		}
	}
	if loaded.Report != yamlConfig.Report {
		t.Errorf("report = %+v, expected %+v", loaded.Report, yamlConfig.Report)
	}
}

func TestSQLiteObserverManagement(t *testing.T) {
	db, err := NewSQLiteProvider(filepath.Join(t.TempDir(), "config.db"))
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	defer db.Close()

	// An empty database still yields a usable configuration.
	c, err := db.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Observers[0] != DefaultObserver || c.Report.Interval != DefaultInterval {
		t.Errorf("empty database config = %+v, expected defaults", c)
	}

	nairobi := ObserverData{Name: "Nairobi", Region: "Kenya", Latitude: -1.286, Longitude: 36.817, Elevation: 1795, Timezone: "Africa/Nairobi"}
	madrid := ObserverData{Name: "Madrid", Latitude: 40.4168, Longitude: -3.7038, Elevation: 667, Timezone: "Europe/Madrid"}
	for _, o := range []ObserverData{nairobi, madrid} {
		o := o
		if err := db.AddObserver(&o); err != nil {
			t.Fatalf("AddObserver(%s): %v", o.Name, err)
		}
	}
	if err := db.AddObserver(&madrid); err == nil {
		t.Error("adding a duplicate observer succeeded, expected an error")
	}

	got, err := db.GetObserver("Nairobi")
	if err != nil {
		t.Fatalf("GetObserver: %v", err)
	}
	if *got != nairobi {
		t.Errorf("GetObserver = %+v, expected %+v", *got, nairobi)
	}

	observers, _ := db.GetObservers()
	if len(observers) != 2 || observers[0].Name != "Nairobi" || observers[1].Name != "Madrid" {
		t.Errorf("observers out of order: %+v", observers)
	}

	if err := db.DeleteObserver("Nairobi"); err != nil {
		t.Fatalf("DeleteObserver: %v", err)
	}
	if err := db.DeleteObserver("Nairobi"); err == nil {
		t.Error("deleting a missing observer succeeded, expected an error")
	}
	if _, err := db.GetObserver("Nairobi"); err == nil {
		t.Error("GetObserver found a deleted observer")
	}
}

func TestObserverLookup(t *testing.T) {
	c := &ConfigData{Observers: []ObserverData{{Name: "A"}, {Name: "B"}}}

	if o, err := c.Observer(""); err != nil || o.Name != "A" {
		t.Errorf(`Observer("") = %v, %v; expected A`, o.Name, err)
	}
	if o, err := c.Observer("B"); err != nil || o.Name != "B" {
		t.Errorf(`Observer("B") = %v, %v; expected B`, o.Name, err)
	}
	if _, err := c.Observer("C"); err == nil {
		t.Error(`Observer("C") succeeded, expected an error`)
	}
	if _, err := (&ConfigData{}).Observer(""); err == nil {
		t.Error("Observer on an empty configuration succeeded, expected an error")
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	c := &ConfigData{
		Observers: []ObserverData{
			{Name: "bad", Latitude: 91, Longitude: -181, Elevation: 10000, Timezone: "Mars/Olympus"},
			{Name: "bad", Latitude: 0, Longitude: 0, Timezone: ""},
		},
		Report: ReportData{Output: "", Interval: "25h", Format: "gif", Depression: 19},
	}

	err := c.Validate()
	if err == nil {
		t.Fatal("Validate succeeded, expected errors")
	}

	fields := []string{
		"observers[0].latitude",
		"observers[0].longitude",
		"observers[0].elevation",
		"observers[0].timezone",
		"observers[1].name",
		"observers[1].timezone",
		"report.interval",
		"report.format",
		"report.depression",
		"report.output",
	}
	for _, f := range fields {
		if !strings.Contains(err.Error(), "invalid "+f+" ") {
			t.Errorf("error does not mention %s:\n%v", f, err)
		}
	}

	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Errorf("errors.As did not find a *FieldError in %T", err)
	}
}

func TestValidateInterval(t *testing.T) {
	tests := []struct {
		interval string
		valid    bool
	}{
		{"5m", true},
		{"24h", true},
		{"1s", true},
		{"0s", false},
		{"-5m", false},
		{"24h1s", false},
		{"five minutes", false},
	}
	for _, tt := range tests {
		t.Run(tt.interval, func(t *testing.T) {
			c := DefaultConfig()
			c.Report.Interval = tt.interval
			err := c.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() error = %v, expected valid=%v", err, tt.valid)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "EPHEMERIS_LATITUDE=-33.92\nEPHEMERIS_TIMEZONE=Africa/Johannesburg\nEPHEMERIS_OUTPUT=from-file.html\n")

	t.Setenv(EnvLongitude, "18.42")
	t.Setenv(EnvOutput, "from-env.html")
	t.Setenv(EnvInterval, "15m")
	// godotenv.Load sets variables that t.Setenv does not track; restore them.
	for _, name := range []string{EnvLatitude, EnvTimezone} {
		name := name
		if old, ok := os.LookupEnv(name); ok {
			t.Cleanup(func() { os.Setenv(name, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(name) })
		}
	}

	c := DefaultConfig()
	if err := ApplyEnv(c, envFile, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	o := c.Observers[0]
	if o.Latitude != -33.92 || o.Longitude != 18.42 || o.Timezone != "Africa/Johannesburg" {
		t.Errorf("observer = %+v, expected Cape Town overrides", o)
	}
	if o.Elevation != DefaultObserver.Elevation {
		t.Errorf("elevation = %v, expected the default to survive", o.Elevation)
	}
	if c.Report.Output != "from-env.html" {
		t.Errorf("output = %q, expected the process environment to win over the file", c.Report.Output)
	}
	if c.Report.Interval != "15m" {
		t.Errorf("interval = %q, expected 15m", c.Report.Interval)
	}
}

func TestApplyEnvInvalidNumbers(t *testing.T) {
	t.Setenv(EnvLatitude, "north")
	t.Setenv(EnvElevation, "high")

	c := DefaultConfig()
	err := ApplyEnv(c, filepath.Join(t.TempDir(), "none.env"))
	if err == nil {
		t.Fatal("ApplyEnv succeeded, expected an error")
	}
	for _, name := range []string{EnvLatitude, EnvElevation} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error does not mention %s: %v", name, err)
		}
	}
}

func TestWriteYAML(t *testing.T) {
	c := DefaultConfig()
	c.Observers = append(c.Observers, ObserverData{Name: "Cape Town", Latitude: -33.92, Longitude: 18.42, Timezone: "Africa/Johannesburg"})

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := WriteYAML(path, c); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := NewYAMLProvider(path).LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(loaded.Observers) != 2 || loaded.Observers[1] != c.Observers[1] || loaded.Report != c.Report {
		t.Errorf("loaded = %+v, expected %+v", loaded, c)
	}
}
