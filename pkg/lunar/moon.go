package lunar

import (
	"math"
	"time"

	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	sun "github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// earthRadiusKm is the equatorial radius used for the horizontal parallax.
const earthRadiusKm = 6378.14

// Position is the Moon as seen by an observer at one instant. Coordinates are
// geocentric; the rise/set threshold accounts for parallax.
type Position struct {
	Time        time.Time
	Azimuth     float64 // degrees clockwise from north, [0, 360)
	Elevation   float64 // degrees
	Declination float64 // degrees
	DistanceKm  float64
	Parallax    float64 // horizontal parallax, degrees
}

// PositionAt returns the Moon's position for o at t.
func PositionAt(o sky.Observer, t time.Time) Position {
	jd := sky.JD(t)
	ra, dec, dist := equatorial(jd)
	el, az := sky.Horizontal(o.Latitude, dec, sky.HourAngle(jd, ra, o.Longitude))
	return Position{
		Time:        t,
		Azimuth:     az,
		Elevation:   el,
		Declination: sky.RadToDeg(dec),
		DistanceKm:  dist,
		Parallax:    sky.RadToDeg(parallax(dist)),
	}
}

// apparentEcliptic returns the Moon's apparent ecliptic longitude and latitude
// in radians, corrected for nutation in longitude, and its distance in km.
func apparentEcliptic(jd float64) (λ, β, dist float64) {
	lon, lat, dist := moonposition.Position(jd)
	Δψ, _ := nutation.Nutation(jd)
	return lon.Rad() + Δψ.Rad(), lat.Rad(), dist
}

// equatorial returns the Moon's apparent right ascension and declination in
// radians and its distance in km.
func equatorial(jd float64) (ra, dec, dist float64) {
	λ, β, dist := apparentEcliptic(jd)
	_, Δε := nutation.Nutation(jd)
	ε := nutation.MeanObliquity(jd) + Δε
	sε, cε := math.Sincos(ε.Rad())
	α, δ := coord.EclToEq(unit.Angle(λ), unit.Angle(β), sε, cε)
	return α.Rad(), δ.Rad(), dist
}

func parallax(distKm float64) float64 {
	return math.Asin(earthRadiusKm / distKm)
}

// CrescentAngle contains the full set of computed orientation values
type CrescentAngle struct {
	BrightLimbAngle  float64 // χ: position angle of bright limb (degrees, from celestial N toward E)
	TerminatorAngle  float64 // θ: terminator orientation in celestial coords (degrees)
	ParallacticAngle float64 // q: parallactic angle of the Moon (degrees)
	LocalTerminator  float64 // θ_local: terminator angle relative to observer's local vertical (degrees)
	Rotation         float64 // CSS rotation to apply to the icon (degrees, clockwise positive)
	PhaseAngle       float64 // i: Sun-Moon-Earth angle (degrees)
	Illumination     float64 // k: illuminated fraction [0,1], computed from phase angle
}

// CalculateCrescentAngle computes the full crescent orientation for an observer.
// Returns a CrescentAngle with the rotation angle to apply to a moon phase icon
// so that the terminator matches the real observed orientation in the sky.
//
// latDeg and lonDeg are the observer's geographic latitude and longitude in degrees
// (east positive). If both are zero, the parallactic angle correction is skipped
// and the geocentric terminator angle is returned.
func CalculateCrescentAngle(t time.Time, latDeg, lonDeg float64) CrescentAngle {
	jd := sky.JD(t)

	α, δ := sun.ApparentEquatorial(jd)
	raSun, decSun := α.Rad(), δ.Rad()
	raMoon, decMoon, _ := equatorial(jd)

	// Geocentric elongation via the spherical law of cosines.
	cosE := math.Sin(decMoon)*math.Sin(decSun) +
		math.Cos(decMoon)*math.Cos(decSun)*math.Cos(raMoon-raSun)
	E := math.Acos(math.Max(-1, math.Min(1, cosE)))

	// i ≈ π - E; the Sun's distance is large enough to ignore the correction.
	phaseAngle := math.Pi - E
	k := (1 + math.Cos(phaseAngle)) / 2

	// Position angle of the bright limb χ (Meeus eq. 48.5)
	deltaRA := raSun - raMoon
	chiY := math.Cos(decSun) * math.Sin(deltaRA)
	chiX := math.Sin(decSun)*math.Cos(decMoon) - math.Cos(decSun)*math.Sin(decMoon)*math.Cos(deltaRA)
	chi := normalizeRadians(math.Atan2(chiY, chiX))

	theta := normalizeRadians(chi + math.Pi/2)

	result := CrescentAngle{
		BrightLimbAngle: sky.RadToDeg(chi),
		TerminatorAngle: sky.RadToDeg(theta),
		PhaseAngle:      sky.RadToDeg(phaseAngle),
		Illumination:    k,
	}

	if latDeg == 0 && lonDeg == 0 {
		result.Rotation = sky.RadToDeg(-theta)
		result.LocalTerminator = sky.RadToDeg(theta)
		return result
	}

	// Parallactic angle q (Meeus eq. 14.1)
	phi := sky.DegToRad(latDeg)
	H := sky.HourAngle(jd, raMoon, lonDeg)
	q := math.Atan2(math.Sin(H), math.Tan(phi)*math.Cos(decMoon)-math.Sin(decMoon)*math.Cos(H))

	thetaLocal := normalizeRadians(theta - q)

	result.ParallacticAngle = sky.RadToDeg(q)
	result.LocalTerminator = sky.RadToDeg(thetaLocal)
	// CSS clockwise rotation with 0 pointing up: negate θ_local
	result.Rotation = sky.RadToDeg(-thetaLocal)

	return result
}

// normalizeRadians wraps an angle in radians to the range [0, 2π)
func normalizeRadians(angle float64) float64 {
	twoPi := 2 * math.Pi
	angle = math.Mod(angle, twoPi)
	if angle < 0 {
		angle += twoPi
	}
	return angle
}
