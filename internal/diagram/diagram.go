// Package diagram draws the solar path chart with gonum/plot.
package diagram

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/chrissnell/ephemeris/internal/report"
	"github.com/chrissnell/ephemeris/pkg/solar"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

var (
	colorWinter  = color.RGBA{R: 0xCD, G: 0x5C, B: 0x5C, A: 0xFF} // IndianRed
	colorEquinox = color.RGBA{R: 0x8A, G: 0x2B, B: 0xE2, A: 0xFF} // BlueViolet
	colorSummer  = color.RGBA{R: 0x00, G: 0x80, B: 0x80, A: 0xFF} // Teal
	colorToday   = color.RGBA{R: 0xFF, G: 0x45, B: 0x00, A: 0xFF} // OrangeRed
	colorSun     = color.RGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF} // Gold
	colorHorizon = color.RGBA{R: 0x57, G: 0x60, B: 0x6F, A: 0xFF}

	bandNight      = color.RGBA{R: 0x64, G: 0x95, B: 0xED, A: 0x40}
	bandBlueHour   = color.RGBA{R: 0x46, G: 0x82, B: 0xB4, A: 0x40}
	bandGoldenHour = color.RGBA{R: 0xFF, G: 0xA5, B: 0x00, A: 0x40}
)

// PlotRenderer implements report.DiagramRenderer.
type PlotRenderer struct {
	Format        string // svg or png
	Width, Height vg.Length
}

// New returns a renderer for format, which must be svg or png.
func New(format string) (*PlotRenderer, error) {
	switch format {
	case FormatSVG, FormatPNG:
	default:
		return nil, fmt.Errorf("unsupported diagram format %q", format)
	}
	return &PlotRenderer{Format: format, Width: 8 * vg.Inch, Height: 4.5 * vg.Inch}, nil
}

// ContentType returns the MIME type of the rendered image.
func (r *PlotRenderer) ContentType() string {
	if r.Format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// RenderDiagram plots elevation against local time of day for today's path
// and the reference paths, over the twilight bands, with a marker for the
// current Sun position. Today's samples are coloured by azimuth.
func (r *PlotRenderer) RenderDiagram(d report.Diagram) ([]byte, error) {
	p := plot.New()
	p.Title.Text = d.Title
	p.X.Label.Text = "Local time"
	p.Y.Label.Text = "Elevation (°)"
	p.X.Min, p.X.Max = 0, 24
	p.X.Tick.Marker = hourTicks{}
	p.Legend.Top = true
	p.Legend.Left = true

	ymin, ymax := elevationRange(d)
	p.Y.Min, p.Y.Max = ymin, ymax

	bands, err := twilightBands(ymin)
	if err != nil {
		return nil, err
	}
	p.Add(bands...)

	grid := plotter.NewGrid()
	grid.Vertical.Color = color.Gray{Y: 0xDD}
	grid.Horizontal.Color = color.Gray{Y: 0xDD}
	p.Add(grid)

	horizon, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 24, Y: 0}})
	if err != nil {
		return nil, err
	}
	horizon.Color = colorHorizon
	horizon.Width = vg.Points(1)
	p.Add(horizon)

	for _, ref := range d.References {
		line, err := plotter.NewLine(pathXYs(ref.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to plot %s: %w", ref.Label, err)
		}
		line.Color = referenceColor(ref.Label)
		line.Width = vg.Points(1.2)
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(ref.Label, line)
	}

	if len(d.Today.Samples) > 0 {
		today, err := plotter.NewLine(pathXYs(d.Today))
		if err != nil {
			return nil, fmt.Errorf("failed to plot today's path: %w", err)
		}
		today.Color = colorToday
		today.Width = vg.Points(2)
		p.Add(today)
		p.Legend.Add("Today", today)

		points, err := plotter.NewScatter(pathXYs(d.Today))
		if err != nil {
			return nil, err
		}
		samples := d.Today.Samples
		points.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: azimuthColor(samples[i].Azimuth), Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
		}
		p.Add(points)
	}

	if !d.Marker.Time.IsZero() {
		x := hoursSinceMidnight(d.Marker.Time, d.Location)
		outer, err := plotter.NewScatter(plotter.XYs{{X: x, Y: d.Marker.Elevation}})
		if err != nil {
			return nil, err
		}
		outer.GlyphStyle = draw.GlyphStyle{Color: colorSun, Radius: vg.Points(7), Shape: draw.CircleGlyph{}}
		inner, err := plotter.NewScatter(plotter.XYs{{X: x, Y: d.Marker.Elevation}})
		if err != nil {
			return nil, err
		}
		inner.GlyphStyle = draw.GlyphStyle{Color: colorToday, Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
		p.Add(outer, inner)
		p.Legend.Add("Sun now", outer)
	}

	w, err := p.WriterTo(r.Width, r.Height, r.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s canvas: %w", r.Format, err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode diagram: %w", err)
	}
	return buf.Bytes(), nil
}

// pathXYs maps samples to (hours since the path's midnight, elevation).
func pathXYs(p solar.Path) plotter.XYs {
	xys := make(plotter.XYs, len(p.Samples))
	for i, s := range p.Samples {
		xys[i].X = s.Time.Sub(p.Day).Hours()
		xys[i].Y = s.Elevation
	}
	return xys
}

func hoursSinceMidnight(t time.Time, loc *time.Location) float64 {
	if loc != nil {
		t = t.In(loc)
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return t.Sub(midnight).Hours()
}

// elevationRange covers every plotted path with some headroom, rounded out
// to multiples of 10°.
func elevationRange(d report.Diagram) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	observe := func(p solar.Path) {
		for _, s := range p.Samples {
			lo = math.Min(lo, s.Elevation)
			hi = math.Max(hi, s.Elevation)
		}
	}
	observe(d.Today)
	for _, ref := range d.References {
		observe(ref.Path)
	}
	if math.IsInf(lo, 1) {
		return -90, 90
	}
	lo = math.Max(-90, math.Floor((lo-5)/10)*10)
	hi = math.Min(90, math.Ceil((hi+5)/10)*10)
	if hi < solar.GoldenHourHigh {
		hi = 10
	}
	if lo > solar.CivilAltitude {
		lo = -10
	}
	return lo, hi
}

// twilightBands shades night, blue hour and golden hour behind the curves.
func twilightBands(ymin float64) ([]plot.Plotter, error) {
	bands := []struct {
		lo, hi float64
		c      color.Color
	}{
		{ymin, solar.CivilAltitude, bandNight},
		{solar.CivilAltitude, solar.GoldenHourLow, bandBlueHour},
		{solar.GoldenHourLow, solar.GoldenHourHigh, bandGoldenHour},
	}

	var out []plot.Plotter
	for _, b := range bands {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: 0, Y: b.lo}, {X: 24, Y: b.lo}, {X: 24, Y: b.hi}, {X: 0, Y: b.hi},
		})
		if err != nil {
			return nil, err
		}
		poly.Color = b.c
		poly.LineStyle.Width = 0
		out = append(out, poly)
	}
	return out, nil
}

func referenceColor(label string) color.Color {
	switch label {
	case "Winter solstice":
		return colorWinter
	case "Summer solstice":
		return colorSummer
	}
	return colorEquinox
}

// azimuthColor maps an azimuth onto a hue wheel: north red, east yellow-green,
// south cyan-blue, west purple.
func azimuthColor(az float64) color.Color {
	h := math.Mod(az, 360)
	if h < 0 {
		h += 360
	}
	return palette.HSVA{H: h / 360, S: 0.85, V: 0.9, A: 1}
}

// hourTicks labels every third hour and marks the rest.
type hourTicks struct{}

func (hourTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for h := math.Ceil(min); h <= max; h++ {
		t := plot.Tick{Value: h}
		if int(h)%3 == 0 {
			t.Label = fmt.Sprintf("%02d:00", int(h)%24)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

var _ report.DiagramRenderer = (*PlotRenderer)(nil)
