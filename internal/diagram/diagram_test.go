package diagram

import (
	"bytes"
	"testing"
	"time"

	"github.com/chrissnell/ephemeris/internal/report"
	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/chrissnell/ephemeris/pkg/solar"
)

func testDiagram(t *testing.T) report.Diagram {
	t.Helper()
	tz, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	o := sky.Observer{Latitude: 48.859, Longitude: 2.347}
	day := time.Date(2024, 6, 21, 0, 0, 0, 0, tz)

	today, err := solar.SamplePath(o, day, 15*time.Minute)
	if err != nil {
		t.Fatalf("SamplePath: %v", err)
	}
	refs, err := solar.ReferencePaths(o, day, 15*time.Minute)
	if err != nil {
		t.Fatalf("ReferencePaths: %v", err)
	}
	return report.Diagram{
		Title:      "Paris",
		Today:      today,
		References: refs,
		Marker:     solar.PositionAt(o, day.Add(15*time.Hour)),
		Location:   tz,
	}
}

func TestRenderDiagram(t *testing.T) {
	d := testDiagram(t)

	tests := []struct {
		format      string
		contentType string
		magic       []byte
	}{
		{FormatSVG, "image/svg+xml", []byte("<svg")},
		{FormatPNG, "image/png", []byte("\x89PNG\r\n\x1a\n")},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			r, err := New(tt.format)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if r.ContentType() != tt.contentType {
				t.Errorf("ContentType() = %q, expected %q", r.ContentType(), tt.contentType)
			}
			img, err := r.RenderDiagram(d)
			if err != nil {
				t.Fatalf("RenderDiagram: %v", err)
			}
			if !bytes.Contains(img[:min(len(img), 256)], tt.magic) {
				t.Errorf("output does not start like a %s image", tt.format)
			}
		})
	}
}

func TestRenderEmptyDiagram(t *testing.T) {
	r, _ := New(FormatSVG)
	img, err := r.RenderDiagram(report.Diagram{Title: "empty"})
	if err != nil {
		t.Fatalf("RenderDiagram: %v", err)
	}
	if len(img) == 0 {
		t.Error("empty diagram produced no output")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	for _, format := range []string{"", "gif", "SVG"} {
		if _, err := New(format); err == nil {
			t.Errorf("New(%q) succeeded, expected an error", format)
		}
	}
}

func TestElevationRange(t *testing.T) {
	d := testDiagram(t)
	lo, hi := elevationRange(d)
	// Paris: summer culmination about 64.6°, winter lowest about -64.6°.
	if lo != -70 || hi != 70 {
		t.Errorf("elevationRange = [%v, %v], expected [-70, 70]", lo, hi)
	}

	lo, hi = elevationRange(report.Diagram{})
	if lo != -90 || hi != 90 {
		t.Errorf("empty elevationRange = [%v, %v], expected [-90, 90]", lo, hi)
	}
}

func TestAzimuthColor(t *testing.T) {
	const (
		bright = 58981 // 0.9 of full scale
		dim    = 8847  // (0.9 - 0.9*0.85) of full scale
	)
	tests := []struct {
		az      float64
		r, g, b uint32
	}{
		{0, bright, dim, dim},
		{360, bright, dim, dim},
		{120, dim, bright, dim},
		{240, dim, dim, bright},
		{-120, dim, dim, bright},
	}
	near := func(got, want uint32) bool {
		d := int64(got) - int64(want)
		return d >= -2 && d <= 2
	}
	for _, tt := range tests {
		r, g, b, a := azimuthColor(tt.az).RGBA()
		if !near(r, tt.r) || !near(g, tt.g) || !near(b, tt.b) || a != 0xffff {
			t.Errorf("azimuthColor(%v) = (%d, %d, %d, %d), expected (%d, %d, %d, 65535)", tt.az, r, g, b, a, tt.r, tt.g, tt.b)
		}
	}

	if azimuthColor(90) == azimuthColor(270) {
		t.Error("east and west share a colour")
	}
}

func TestHourTicks(t *testing.T) {
	ticks := hourTicks{}.Ticks(0, 24)
	if len(ticks) != 25 {
		t.Fatalf("got %d ticks, expected 25", len(ticks))
	}
	labelled := 0
	for _, tick := range ticks {
		if tick.Label != "" {
			labelled++
		}
	}
	if labelled != 9 {
		t.Errorf("got %d labelled ticks, expected 9", labelled)
	}
	if ticks[24].Label != "00:00" || ticks[6].Label != "06:00" {
		t.Errorf("unexpected labels %q and %q", ticks[24].Label, ticks[6].Label)
	}
}

func TestReferenceColor(t *testing.T) {
	if referenceColor("Winter solstice") != colorWinter ||
		referenceColor("Summer solstice") != colorSummer ||
		referenceColor("Equinox") != colorEquinox {
		t.Error("reference paths are not drawn in their assigned colours")
	}
}
