package solar

import (
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solstice"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidInterval is returned by SamplePath for an interval outside (0, 24h].
var ErrInvalidInterval = errors.New("sampling interval must be greater than zero and at most 24h")

// Sample is the Sun's position at one instant of a sampled day.
type Sample struct {
	Time       time.Time
	Azimuth    float64 // degrees, [0, 360)
	Elevation  float64 // degrees, [-90, 90]
	Irradiance float64 // clear-sky GHI, W/m²
}

// Path is the Sun's course over one day, sampled at a fixed cadence.
type Path struct {
	Label    string
	Day      time.Time // local midnight of the first sample
	Interval time.Duration
	Samples  []Sample
}

// SamplePath samples the Sun's position for o every interval from local
// midnight of day through the following 24 hours inclusive, returning
// floor(24h/interval)+1 samples. The span is always 24 hours, also on DST
// transition days. Samples below the horizon are kept.
func SamplePath(o sky.Observer, day time.Time, interval time.Duration) (Path, error) {
	if interval <= 0 || interval > 24*time.Hour {
		return Path{}, fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}

	start, _ := sky.DayBounds(day)
	n := int(24*time.Hour/interval) + 1

	p := Path{
		Label:    start.Format("2006-01-02"),
		Day:      start,
		Interval: interval,
		Samples:  make([]Sample, 0, n),
	}
	for i := 0; i < n; i++ {
		t := start.Add(time.Duration(i) * interval)
		pos := PositionAt(o, t)
		p.Samples = append(p.Samples, Sample{
			Time:       t,
			Azimuth:    pos.Azimuth,
			Elevation:  pos.Elevation,
			Irradiance: clearSky(pos.Elevation, sky.JD(t), o.Elevation, t.YearDay()),
		})
	}
	return p, nil
}

// Summary describes the extremes of a sampled path.
type Summary struct {
	Culmination    Sample // highest sample
	Lowest         Sample
	PeakIrradiance float64
	SunlitSamples  int // samples with the Sun above the horizon
}

// Summary returns the extremes of p. It is the zero Summary for an empty path.
func (p Path) Summary() Summary {
	if len(p.Samples) == 0 {
		return Summary{}
	}

	elevations := make([]float64, len(p.Samples))
	irradiance := make([]float64, len(p.Samples))
	var sunlit int
	for i, s := range p.Samples {
		elevations[i] = s.Elevation
		irradiance[i] = s.Irradiance
		if s.Elevation > 0 {
			sunlit++
		}
	}

	return Summary{
		Culmination:    p.Samples[floats.MaxIdx(elevations)],
		Lowest:         p.Samples[floats.MinIdx(elevations)],
		PeakIrradiance: floats.Max(irradiance),
		SunlitSamples:  sunlit,
	}
}

// Reference is a labelled path drawn for comparison with the requested day.
type Reference struct {
	Label string
	Path  Path
}

// ReferencePaths samples the Sun's course on the December solstice, the March
// equinox and the June solstice of day's year, in day's location.
func ReferencePaths(o sky.Observer, day time.Time, interval time.Duration) ([]Reference, error) {
	year := day.Year()
	dates := []struct {
		label string
		jde   float64
	}{
		{"Winter solstice", solstice.December(year)},
		{"Equinox", solstice.March(year)},
		{"Summer solstice", solstice.June(year)},
	}
	if o.Latitude < 0 {
		dates[0].label, dates[2].label = "Summer solstice", "Winter solstice"
	}

	refs := make([]Reference, 0, len(dates))
	for _, d := range dates {
		at := julian.JDToTime(d.jde).In(day.Location())
		p, err := SamplePath(o, at, interval)
		if err != nil {
			return nil, err
		}
		p.Label = d.label
		refs = append(refs, Reference{Label: d.label, Path: p})
	}
	return refs, nil
}
