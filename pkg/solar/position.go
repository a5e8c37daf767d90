// Package solar computes the position of the Sun for an observer and the
// daily events derived from it: twilight, sunrise, transit, sunset, golden and
// blue hours, and the sampled path of the Sun across a day.
package solar

import (
	"math"
	"time"

	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/soniakeys/meeus/v3/eqtime"
	sun "github.com/soniakeys/meeus/v3/solar"
)

// Position is the Sun as seen by an observer at one instant.
type Position struct {
	Time        time.Time
	Azimuth     float64 // degrees clockwise from north, [0, 360)
	Elevation   float64 // degrees above the geometric horizon
	Declination float64 // degrees
	HourAngle   float64 // degrees, negative before transit
	EqOfTime    float64 // minutes, apparent minus mean solar time
}

// PositionAt returns the Sun's horizontal and equatorial coordinates for o at t.
func PositionAt(o sky.Observer, t time.Time) Position {
	jd := sky.JD(t)
	ra, dec := equatorial(jd)
	ha := sky.HourAngle(jd, ra, o.Longitude)
	el, az := sky.Horizontal(o.Latitude, dec, ha)

	return Position{
		Time:        t,
		Azimuth:     az,
		Elevation:   el,
		Declination: sky.RadToDeg(dec),
		HourAngle:   sky.RadToDeg(ha),
		EqOfTime:    eqtime.ESmart(jd).Rad() * 720 / math.Pi,
	}
}

// Elevation returns only the Sun's elevation for o at t, in degrees.
func Elevation(o sky.Observer, t time.Time) float64 {
	jd := sky.JD(t)
	ra, dec := equatorial(jd)
	el, _ := sky.Horizontal(o.Latitude, dec, sky.HourAngle(jd, ra, o.Longitude))
	return el
}

// equatorial returns the apparent right ascension and declination of the Sun
// in radians. ΔT is ignored; at the precision of minute-level event times the
// difference between JD and JDE does not matter.
func equatorial(jd float64) (ra, dec float64) {
	α, δ := sun.ApparentEquatorial(jd)
	return α.Rad(), δ.Rad()
}
