package report

import (
	"fmt"
	htmltemplate "html/template"
	"math"
)

const (
	iconSize   = 64
	iconRadius = 28.0
)

// moonIcon draws the Moon's disc with the lit part on the right for a waxing
// moon and on the left for a waning one, then rotates the whole icon by
// rotation degrees clockwise so the terminator matches the sky.
func moonIcon(illumination float64, waxing bool, rotation float64) htmltemplate.HTML {
	k := math.Max(0, math.Min(1, illumination))
	c := iconSize / 2.0
	r := iconRadius

	outer, inner := 0, 1
	if waxing {
		outer, inner = 1, 0
	}
	if k >= 0.5 {
		inner = outer
	}
	rx := math.Abs(1-2*k) * r

	lit := fmt.Sprintf("M %.2f %.2f A %.2f %.2f 0 0 %d %.2f %.2f A %.2f %.2f 0 0 %d %.2f %.2f Z",
		c, c-r, r, r, outer, c, c+r,
		rx, r, inner, c, c-r)

	svg := fmt.Sprintf(`<svg class="moon" xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img" aria-label="Moon, %.0f%% illuminated">`+
		`<g transform="rotate(%.2f %.2f %.2f)">`+
		`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="#2f3542"/>`+
		`<path d="%s" fill="#f1f2f6"/>`+
		`</g></svg>`,
		iconSize, iconSize, iconSize, iconSize, k*100,
		rotation, c, c,
		c, c, r,
		lit)

	// Every value interpolated above is numeric.
	return htmltemplate.HTML(svg)
}
