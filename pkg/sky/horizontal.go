// Package sky holds the pieces shared by the solar and lunar calculations:
// the observer, the hour-angle / horizontal-coordinate formula, the
// Occurrence type used for events that may not happen on a given day, and a
// generic altitude crossing search.
package sky

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
)

// Observer is a point on the Earth's surface. Longitude is positive east.
type Observer struct {
	Latitude  float64 // degrees
	Longitude float64 // degrees, east positive
	Elevation float64 // meters above sea level
}

// HorizonDip returns how far the apparent horizon sits below the astronomical
// horizon for an observer at o.Elevation, in degrees.
func (o Observer) HorizonDip() float64 {
	if o.Elevation <= 0 {
		return 0
	}
	return 2.076 * math.Sqrt(o.Elevation) / 60.0
}

// DegToRad converts degrees to radians
func DegToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

// RadToDeg converts radians to degrees
func RadToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// NormalizeDegrees wraps an angle to the range [0, 360)
func NormalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	// math.Mod of a tiny negative value can round back up to 360.
	if a >= 360 {
		a = 0
	}
	return a
}

// WrapPi wraps an angle in radians to (-π, π].
func WrapPi(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// JD converts t to a Julian day (UT).
func JD(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// HourAngle returns the local hour angle, in radians wrapped to (-π, π], of a
// body at right ascension ra (radians) for an observer at lonDeg (east
// positive). Negative values are before transit.
func HourAngle(jd, ra, lonDeg float64) float64 {
	lst := sidereal.Apparent(jd).Rad() + DegToRad(lonDeg)
	return WrapPi(lst - ra)
}

// Horizontal converts a declination and hour angle (radians) into elevation
// and azimuth in degrees for an observer at latitude latDeg. Elevation is
// geometric (no refraction); azimuth is measured clockwise from north in
// [0, 360).
func Horizontal(latDeg, dec, ha float64) (elevation, azimuth float64) {
	phi := DegToRad(latDeg)
	sinPhi, cosPhi := math.Sincos(phi)
	sinDec, cosDec := math.Sincos(dec)
	sinH, cosH := math.Sincos(ha)

	sinEl := sinPhi*sinDec + cosPhi*cosDec*cosH
	elevation = RadToDeg(math.Asin(clamp(sinEl, -1, 1)))

	az := math.Atan2(-cosDec*sinH, sinDec*cosPhi-cosDec*sinPhi*cosH)
	azimuth = NormalizeDegrees(RadToDeg(az))
	return elevation, azimuth
}

// CosHourAngle returns cos(H0) for a body at declination dec (radians) to sit
// at altitude h0Deg for an observer at latDeg. Values outside [-1, 1] mean
// the altitude is never crossed. At the poles, where the expression is
// undefined, ±2 is returned according to whether the body stays above or
// below h0Deg.
func CosHourAngle(latDeg, dec, h0Deg float64) float64 {
	phi := DegToRad(latDeg)
	sinH0 := math.Sin(DegToRad(h0Deg))
	den := math.Cos(phi) * math.Cos(dec)
	num := sinH0 - math.Sin(phi)*math.Sin(dec)
	if math.Abs(den) < 1e-12 {
		if num < 0 {
			return -2
		}
		return 2
	}
	return num / den
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DayBounds returns local midnight at the start of day's civil date and the
// following midnight, both in day's location. The span is 23 or 25 hours on
// DST transition days.
func DayBounds(day time.Time) (start, end time.Time) {
	y, m, d := day.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end = time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
	return start, end
}
