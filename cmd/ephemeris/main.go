package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/chrissnell/ephemeris/internal/app"
	"github.com/chrissnell/ephemeris/internal/ephemeris"
	"github.com/chrissnell/ephemeris/internal/log"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// Exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitInput       = 2
	exitConfigError = 3
)

func main() {
	os.Exit(run())
}

// options holds the parsed command line.
type options struct {
	cfgFile     string
	cfgBackend  string
	debug       bool
	showVersion bool
	overrides   app.Overrides
}

// parseArgs parses args into options. Only flags given on the command line
// become overrides; the rest fall through to the configuration.
func parseArgs(args []string) (options, error) {
	fs := flag.NewFlagSet("ephemeris", flag.ContinueOnError)

	var o options
	fs.StringVar(&o.cfgFile, "config", "ephemeris.yaml", "Path to configuration source:\n\t\t\t  YAML: ephemeris.yaml (optional, defaults apply when missing)\n\t\t\t  SQLite: ephemeris.db\n\t\t\t  Use 'config-convert' tool to convert YAML→SQLite")
	fs.StringVar(&o.cfgBackend, "config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	observer := fs.String("observer", "", "Named observer from the configuration (default: the first one)")
	lat := fs.Float64("lat", 0, "Latitude in degrees, north positive")
	lon := fs.Float64("lon", 0, "Longitude in degrees, east positive")
	elevation := fs.Float64("elevation", 0, "Elevation above sea level in meters")
	tz := fs.String("tz", "", "IANA timezone, e.g. Europe/Paris")
	date := fs.String("date", "", "Date as YYYY-MM-DD (default: today in the observer's timezone)")
	days := fs.Int("days", 0, "Shift the date by this many days")
	timeOfDay := fs.String("time", "", "Local time of day as HH:MM for the current Sun position (default: 12:00)")
	interval := fs.String("interval", "", "Solar path sampling interval, e.g. 5m")
	depression := fs.Float64("depression", 0, "Sun depression below the horizon for dawn and dusk, in degrees (default 6)")
	out := fs.String("out", "", "Path of the HTML report")
	format := fs.String("format", "", "Diagram format: 'svg' or 'png'")
	open := fs.Bool("open", false, "Open the HTML report in the default browser")
	noHTML := fs.Bool("no-html", false, "Print the text report only")
	fs.BoolVar(&o.debug, "debug", false, "Turn on debugging output")
	fs.BoolVar(&o.showVersion, "version", false, "Show version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	ov := app.Overrides{
		Observer: *observer,
		Date:     *date,
		Days:     *days,
		Time:     *timeOfDay,
		NoHTML:   *noHTML,
	}
	if set["lat"] {
		ov.Latitude = lat
	}
	if set["lon"] {
		ov.Longitude = lon
	}
	if set["elevation"] {
		ov.Elevation = elevation
	}
	if set["tz"] {
		ov.Timezone = tz
	}
	if set["interval"] {
		ov.Interval = interval
	}
	if set["depression"] {
		ov.Depression = depression
	}
	if set["out"] {
		ov.Output = out
	}
	if set["format"] {
		ov.Format = format
	}
	if set["open"] {
		ov.OpenBrowser = open
	}
	o.overrides = ov
	return o, nil
}

func run() int {
	o, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitInput
	}

	if o.showVersion {
		fmt.Printf("ephemeris %s\n", version)
		return exitOK
	}

	if err := log.Init(o.debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return exitFailure
	}
	defer log.Sync()

	cfgData, err := app.LoadConfig(o.cfgFile, o.cfgBackend)
	if err != nil {
		return fail("Failed to load configuration", err)
	}

	opts, err := app.Resolve(cfgData, o.overrides, time.Now())
	if err != nil {
		return fail("Invalid configuration", err)
	}

	application, err := app.New(opts, os.Stdout)
	if err != nil {
		return fail("Invalid configuration", err)
	}
	if _, err := application.Run(context.Background()); err != nil {
		return fail("Failed to compute ephemeris", err)
	}
	return exitOK
}

// fail logs err and maps it to an exit code.
func fail(msg string, err error) int {
	var inputErr *ephemeris.InputError
	var cfgErr *ephemeris.ConfigurationError
	switch {
	case errors.As(err, &inputErr):
		log.Errorf("Invalid input: %v", err)
		return exitInput
	case errors.As(err, &cfgErr):
		log.Errorf("%s: %v", msg, err)
		return exitConfigError
	default:
		log.Errorf("%s: %v", msg, err)
		return exitFailure
	}
}
