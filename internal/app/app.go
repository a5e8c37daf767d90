package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chrissnell/ephemeris/internal/diagram"
	"github.com/chrissnell/ephemeris/internal/ephemeris"
	"github.com/chrissnell/ephemeris/internal/log"
	"github.com/chrissnell/ephemeris/internal/report"
	"github.com/chrissnell/ephemeris/pkg/solar"
)

// Options are the fully resolved settings for one run.
type Options struct {
	Location    ephemeris.Location
	Observation ephemeris.Observation
	Settings    ephemeris.Settings

	Interval    time.Duration
	Output      string // HTML path
	Format      string // diagram format, svg or png
	NoHTML      bool
	OpenBrowser bool
}

// App represents the main application
type App struct {
	opts     Options
	out      io.Writer
	renderer *report.Renderer

	// WriteFile and Open are the side effects of a run.
	WriteFile func(path string, data []byte) error
	Open      report.Opener
}

// New creates a new application instance printing the text report to out.
func New(opts Options, out io.Writer) (*App, error) {
	rn := &report.Renderer{NoHTML: opts.NoHTML}
	if !opts.NoHTML {
		d, err := diagram.New(opts.Format)
		if err != nil {
			return nil, &ephemeris.ConfigurationError{Setting: "format", Value: opts.Format, Err: err}
		}
		rn.Diagrams = d
	}

	return &App{
		opts:      opts,
		out:       out,
		renderer:  rn,
		WriteFile: report.WriteFile,
		Open:      report.Open,
	}, nil
}

// Run computes the ephemeris, prints it and, unless HTML is disabled, writes
// the HTML report and optionally opens it. The context is checked between
// stages.
func (a *App) Run(ctx context.Context) (*report.Report, error) {
	o := a.opts

	var result *ephemeris.Result
	err := a.stage(ctx, "compute", func() (err error) {
		result, err = ephemeris.Compute(o.Location, o.Observation, o.Settings)
		return err
	})
	if err != nil {
		return nil, err
	}

	var today solar.Path
	err = a.stage(ctx, "sample", func() (err error) {
		today, err = solar.SamplePath(o.Location.Observer(), result.Day, o.Interval)
		return err
	})
	if errors.Is(err, solar.ErrInvalidInterval) {
		return nil, &ephemeris.ConfigurationError{Setting: "interval", Value: o.Interval.String(), Err: err}
	}
	if err != nil {
		return nil, err
	}

	var refs []solar.Reference
	if !o.NoHTML {
		err = a.stage(ctx, "references", func() (err error) {
			refs, err = solar.ReferencePaths(o.Location.Observer(), result.Day, o.Interval)
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	var rep *report.Report
	err = a.stage(ctx, "render", func() (err error) {
		rep, err = a.renderer.Render(result, today, refs)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Infow("report rendered", "report_id", rep.ID, "location", o.Location.Name, "date", o.Observation.Date)

	err = a.stage(ctx, "print", func() error {
		_, err := io.WriteString(a.out, rep.Text)
		return err
	})
	if err != nil {
		return nil, err
	}

	if o.NoHTML {
		return rep, nil
	}

	err = a.stage(ctx, "write", func() error {
		return a.WriteFile(o.Output, rep.HTML)
	})
	if err != nil {
		return nil, err
	}
	log.Infow("report written", "path", o.Output, "bytes", len(rep.HTML))

	if o.OpenBrowser {
		if err := a.stage(ctx, "open", func() error { return a.Open(o.Output) }); err != nil {
			// The report exists; failing to show it is not fatal.
			log.Warnf("%v", err)
		}
	}

	return rep, nil
}

func (a *App) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer log.Timed(name)()
	return fn()
}
