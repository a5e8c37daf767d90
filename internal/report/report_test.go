package report

import (
	"encoding/base64"
	"errors"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/chrissnell/ephemeris/internal/ephemeris"
	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/chrissnell/ephemeris/pkg/solar"
)

type fakeDiagrams struct {
	img         []byte
	err         error
	contentType string
	last        Diagram
}

func (f *fakeDiagrams) RenderDiagram(d Diagram) ([]byte, error) {
	f.last = d
	return f.img, f.err
}

func (f *fakeDiagrams) ContentType() string {
	if f.contentType == "" {
		return "image/svg+xml"
	}
	return f.contentType
}

func compute(t *testing.T, loc ephemeris.Location, date, tz string) (*ephemeris.Result, solar.Path, []solar.Reference) {
	t.Helper()
	r, err := ephemeris.Compute(loc, ephemeris.Observation{Date: date, Timezone: tz, TimeOfDay: "12:00"}, ephemeris.Settings{})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	path, err := solar.SamplePath(loc.Observer(), r.Day, time.Hour)
	if err != nil {
		t.Fatalf("SamplePath: %v", err)
	}
	refs, err := solar.ReferencePaths(loc.Observer(), r.Day, time.Hour)
	if err != nil {
		t.Fatalf("ReferencePaths: %v", err)
	}
	return r, path, refs
}

var paris = ephemeris.Location{Name: "Paris", Region: "France", Latitude: 48.859, Longitude: 2.347}

func TestRenderText(t *testing.T) {
	r, path, refs := compute(t, paris, "2024-06-21", "Europe/Paris")

	rn := &Renderer{NoHTML: true, NewID: func() string { return "fixed-id" }}
	rep, err := rn.Render(r, path, refs)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if rep.HTML != nil {
		t.Error("HTML rendered with NoHTML set")
	}
	if rep.ID != "fixed-id" {
		t.Errorf("ID = %q, expected fixed-id", rep.ID)
	}

	order := []string{
		"Location", "Date", "Sun now", "Dawn", "Sunrise", "Solar noon", "Sunset", "Dusk",
		"Nautical dawn", "Nautical dusk", "Solar midnight",
		"Golden hour (morning)", "Golden hour (evening)", "Blue hour (morning)", "Blue hour (evening)",
		"Day length", "Night length", "Moon phase", "Moonrise", "Moonset", "Next new moon", "Next full moon",
	}
	lines := strings.Split(strings.TrimRight(rep.Text, "\n"), "\n")
	if len(lines) != len(order) {
		t.Fatalf("got %d lines, expected %d:\n%s", len(lines), len(order), rep.Text)
	}
	for i, label := range order {
		if !strings.HasPrefix(lines[i], label+" ") {
			t.Errorf("line %d = %q, expected it to start with %q", i, lines[i], label)
		}
	}

	for _, want := range []string{"Paris, France", "Europe/Paris", "05:4", "21:5", "/28"} {
		if !strings.Contains(rep.Text, want) {
			t.Errorf("text does not contain %q:\n%s", want, rep.Text)
		}
	}
	t.Logf("\n%s", rep.Text)
}

func TestRenderPolarDay(t *testing.T) {
	svalbard := ephemeris.Location{Name: "Longyearbyen", Latitude: 78.22, Longitude: 15.65}
	r, path, refs := compute(t, svalbard, "2024-06-21", "Arctic/Longyearbyen")

	rep, err := (&Renderer{NoHTML: true}).Render(r, path, refs)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	var sunrise, sunset string
	for _, row := range Rows(r) {
		switch row.Label {
		case "Sunrise":
			sunrise = row.Value
		case "Sunset":
			sunset = row.Value
		}
	}
	want := "does not occur (sun always above the horizon)"
	if sunrise != want || sunset != want {
		t.Errorf("sunrise = %q, sunset = %q; expected %q", sunrise, sunset, want)
	}
	if !strings.Contains(rep.Text, "Day length") || !strings.Contains(rep.Text, "24h 00m") {
		t.Errorf("expected a 24h day length:\n%s", rep.Text)
	}
}

func TestRenderSpillOver(t *testing.T) {
	helsinki := ephemeris.Location{Name: "Helsinki", Latitude: 60.1699, Longitude: 24.9384}
	r, _, _ := compute(t, helsinki, "2024-06-21", "Europe/Helsinki")

	var dusk string
	for _, row := range Rows(r) {
		if row.Label == "Dusk" {
			dusk = row.Value
		}
	}
	if !strings.HasPrefix(dusk, "does not occur (not on this day, 00:") || !strings.HasSuffix(dusk, " +1 day)") {
		t.Errorf("dusk = %q, expected the crossing after midnight to be shown", dusk)
	}
}

func TestOccurrenceOnNeighbouringDay(t *testing.T) {
	tz := time.FixedZone("EEST", 3*3600)
	day := time.Date(2024, 6, 21, 0, 0, 0, 0, tz)

	tests := []struct {
		o        sky.Occurrence
		expected string
	}{
		{sky.Occurred(day.Add(5 * time.Hour)), "05:00"},
		{sky.Outside(day.Add(24*time.Hour + 43*time.Minute)), "does not occur (not on this day, 00:43 +1 day)"},
		{sky.Outside(day.Add(-20 * time.Minute)), "does not occur (not on this day, 23:40 -1 day)"},
		{sky.DidNotOccur(sky.NotThisDay), "does not occur (not on this day)"},
		{sky.DidNotOccur(sky.AlwaysAbove), "does not occur (sun always above -6°)"},
	}
	for _, tt := range tests {
		if got := occurrence(tt.o, day, "sun", "-6°"); got != tt.expected {
			t.Errorf("occurrence(%v) = %q, expected %q", tt.o, got, tt.expected)
		}
	}
}

func TestRenderHTML(t *testing.T) {
	r, path, refs := compute(t, paris, "2024-06-21", "Europe/Paris")

	img := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	diagrams := &fakeDiagrams{img: img}
	rn := NewRenderer(diagrams)
	rn.NewID = func() string { return "0b8d6c1e-report" }

	rep, err := rn.Render(r, path, refs)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	page := html.UnescapeString(string(rep.HTML))

	if src, want := imgSrc(t, rep.HTML), "data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString(img); src != want {
		t.Errorf("img src = %q, expected %q", src, want)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<meta name="report-id" content="0b8d6c1e-report">`,
		`<svg class="moon"`,
		"rotate(",
		r.SkyBand.Hex,
		"report 0b8d6c1e-report",
		"Solar noon",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML does not contain %q", want)
		}
	}

	if diagrams.last.Marker != r.SunNow {
		t.Error("diagram marker is not the current Sun position")
	}
	if len(diagrams.last.References) != 3 || len(diagrams.last.Today.Samples) != 25 {
		t.Errorf("diagram got %d references and %d samples", len(diagrams.last.References), len(diagrams.last.Today.Samples))
	}
	if diagrams.last.Location != r.Timezone {
		t.Error("diagram location does not match the result timezone")
	}
}

var imgSrcPattern = regexp.MustCompile(`<img src="([^"]*)"`)

// imgSrc returns the decoded src attribute of the first img element.
func imgSrc(t *testing.T, page []byte) string {
	t.Helper()
	m := imgSrcPattern.FindSubmatch(page)
	if m == nil {
		t.Fatal("HTML has no img element")
	}
	return html.UnescapeString(string(m[1]))
}

func TestDataURIInAttribute(t *testing.T) {
	r, path, refs := compute(t, paris, "2024-06-21", "Europe/Paris")

	// base64 of "<svg/>" contains '+', which the template escapes inside attributes
	img := []byte("<svg/>")
	for _, tt := range []struct {
		format string
		prefix string
	}{
		{"image/svg+xml", "data:image/svg+xml;base64,"},
		{"image/png", "data:image/png;base64,"},
	} {
		rn := NewRenderer(&fakeDiagrams{img: img, contentType: tt.format})
		rep, err := rn.Render(r, path, refs)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		want := tt.prefix + "PHN2Zy8+"
		if src := imgSrc(t, rep.HTML); src != want {
			t.Errorf("%s: img src = %q, expected %q", tt.format, src, want)
		}
	}
}

func TestRenderWithoutDiagram(t *testing.T) {
	r, path, refs := compute(t, paris, "2024-03-20", "Europe/Paris")

	rep, err := (&Renderer{}).Render(r, path, refs)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(string(rep.HTML), "<figure>") {
		t.Error("HTML contains a figure without a diagram renderer")
	}
	if rep.ID == "" {
		t.Error("report id is empty")
	}
}

func TestRenderDiagramError(t *testing.T) {
	r, path, refs := compute(t, paris, "2024-03-20", "Europe/Paris")

	boom := errors.New("boom")
	_, err := NewRenderer(&fakeDiagrams{err: boom}).Render(r, path, refs)
	if !errors.Is(err, boom) {
		t.Errorf("Render error = %v, expected it to wrap %v", err, boom)
	}

	if _, err := NewRenderer(nil).Render(nil, path, refs); err == nil {
		t.Error("rendering a nil result succeeded, expected an error")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "0h 00m"},
		{16*time.Hour + 11*time.Minute + 20*time.Second, "16h 11m"},
		{23*time.Hour + 59*time.Minute + 40*time.Second, "24h 00m"},
		{24 * time.Hour, "24h 00m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.expected {
			t.Errorf("FormatDuration(%v) = %q, expected %q", tt.d, got, tt.expected)
		}
	}
}

func TestFormatChange(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "+0m 00s"},
		{2*time.Minute + 13*time.Second, "+2m 13s"},
		{-5 * time.Second, "-0m 05s"},
		{-(3*time.Minute + 59*time.Second + 600*time.Millisecond), "-4m 00s"},
	}
	for _, tt := range tests {
		if got := FormatChange(tt.d); got != tt.expected {
			t.Errorf("FormatChange(%v) = %q, expected %q", tt.d, got, tt.expected)
		}
	}
}

func TestMoonIcon(t *testing.T) {
	tests := []struct {
		name   string
		k      float64
		waxing bool
		want   string
	}{
		{"waxing crescent", 0.25, true, "0 0 1 32.00 60.00 A 14.00 28.00 0 0 0 32.00 4.00"},
		{"waxing gibbous", 0.75, true, "0 0 1 32.00 60.00 A 14.00 28.00 0 0 1 32.00 4.00"},
		{"waning crescent", 0.25, false, "0 0 0 32.00 60.00 A 14.00 28.00 0 0 1 32.00 4.00"},
		{"full", 1, false, "A 28.00 28.00 0 0 0 32.00 4.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := string(moonIcon(tt.k, tt.waxing, 30))
			if !strings.Contains(svg, tt.want) {
				t.Errorf("icon path does not contain %q:\n%s", tt.want, svg)
			}
			if !strings.Contains(svg, "rotate(30.00 32.00 32.00)") {
				t.Errorf("icon is not rotated:\n%s", svg)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "html", "ephemeris.html")

	for _, content := range []string{"first", "second"} {
		if err := WriteFile(path, []byte(content)); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(got) != content {
			t.Errorf("file contains %q, expected %q", got, content)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contains %v, expected only ephemeris.html", names)
	}
}

func TestWriteFileError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(filepath.Join(blocker, "report.html"), []byte("x")); err == nil {
		t.Error("writing below a regular file succeeded, expected an error")
	}
}
