// Package report turns an ephemeris result into a plain-text table and a
// self-contained HTML document with an embedded solar path diagram.
package report

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/ephemeris/internal/ephemeris"
	"github.com/chrissnell/ephemeris/pkg/solar"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Diagram is everything a DiagramRenderer needs to draw the solar path chart.
type Diagram struct {
	Title      string
	Today      solar.Path
	References []solar.Reference
	Marker     solar.Position // Sun at the observation instant
	Location   *time.Location
}

// DiagramRenderer draws a Diagram into an encoded image.
type DiagramRenderer interface {
	RenderDiagram(d Diagram) ([]byte, error)
	// ContentType is the MIME type of the bytes RenderDiagram returns.
	ContentType() string
}

// Report is a rendered result.
type Report struct {
	ID   string
	Text string
	HTML []byte // nil when the renderer has HTML disabled
}

// Renderer builds reports. A nil Diagrams renderer omits the diagram from
// the HTML output.
type Renderer struct {
	Diagrams DiagramRenderer
	NoHTML   bool

	// NewID generates the report id; defaults to a random UUID.
	NewID func() string

	view *htmltemplate.Template
}

// NewRenderer returns a Renderer drawing diagrams with d.
func NewRenderer(d DiagramRenderer) *Renderer {
	return &Renderer{Diagrams: d}
}

// Render produces the text and HTML forms of r. today is the sampled path
// for r's day; refs are the solstice and equinox paths drawn for context.
func (rn *Renderer) Render(r *ephemeris.Result, today solar.Path, refs []solar.Reference) (*Report, error) {
	if r == nil {
		return nil, fmt.Errorf("nothing to render")
	}

	id := uuid.NewString()
	if rn.NewID != nil {
		id = rn.NewID()
	}

	rows := Rows(r)
	rep := &Report{
		ID:   id,
		Text: FormatText(rows),
	}
	if rn.NoHTML {
		return rep, nil
	}

	page := htmlPage{
		ID:        id,
		Title:     title(r),
		Rows:      rows,
		Band:      r.SkyBand,
		MoonIcon:  moonIcon(r.Moon.Illumination, r.Moon.IsWaxing, r.Crescent.Rotation),
		Generated: r.At.Format(time.RFC1123),
	}

	if rn.Diagrams != nil {
		img, err := rn.Diagrams.RenderDiagram(Diagram{
			Title:      title(r),
			Today:      today,
			References: refs,
			Marker:     r.SunNow,
			Location:   r.Timezone,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render diagram: %w", err)
		}
		page.Diagram = dataURI(rn.Diagrams.ContentType(), img)
	}

	html, err := rn.executeHTML(page)
	if err != nil {
		return nil, err
	}
	rep.HTML = html
	return rep, nil
}

type htmlPage struct {
	ID        string
	Title     string
	Rows      []Row
	Band      solar.Band
	MoonIcon  htmltemplate.HTML
	Diagram   htmltemplate.URL
	Generated string
}

func (rn *Renderer) executeHTML(page htmlPage) ([]byte, error) {
	if rn.view == nil {
		view, err := htmltemplate.New("report.html.tmpl").ParseFS(templatesFS, "templates/report.html.tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse report template: %w", err)
		}
		rn.view = view
	}

	var buf bytes.Buffer
	if err := rn.view.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to execute report template: %w", err)
	}
	return buf.Bytes(), nil
}

// dataURI embeds img as a data: URL. The template would otherwise reject a
// data URL in an src attribute.
func dataURI(contentType string, img []byte) htmltemplate.URL {
	return htmltemplate.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(img))
}

func title(r *ephemeris.Result) string {
	name := r.Location.Name
	if name == "" {
		name = fmt.Sprintf("%.4f, %.4f", r.Location.Latitude, r.Location.Longitude)
	}
	return fmt.Sprintf("Ephemeris for %s, %s", name, r.Day.Format("Monday 2 January 2006"))
}

// FormatText lays rows out as an aligned two-column table.
func FormatText(rows []Row) string {
	width := 0
	for _, row := range rows {
		if len(row.Label) > width {
			width = len(row.Label)
		}
	}

	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%-*s  %s\n", width, row.Label, row.Value)
	}
	return b.String()
}
