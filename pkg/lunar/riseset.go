package lunar

import (
	"time"

	"github.com/chrissnell/ephemeris/pkg/sky"
)

const (
	scanStep      = 10 * time.Minute
	scanTolerance = time.Second
)

// Events holds the Moon's rise and set for one civil day.
type Events struct {
	Moonrise sky.Occurrence
	Moonset  sky.Occurrence
}

// RiseSet finds moonrise and moonset for o during the civil day containing
// day, in day's location. The Moon's upper limb touches the apparent horizon
// at an altitude of 0.7275π - 0.5667° for its centre, π being the horizontal
// parallax; the observer's horizon dip lowers that further.
//
// The lunar day is about 50 minutes longer than the civil day, so it is
// normal for one of the two events to be missing about once a month; that is
// reported as NotThisDay. When neither happens the Moon is circumpolar or
// never rises.
func RiseSet(o sky.Observer, day time.Time) Events {
	start, end := sky.DayBounds(day)
	f := func(t time.Time) float64 {
		return altitudeAboveThreshold(o, t)
	}

	crossings, above := sky.FindCrossings(f, start, end, scanStep, scanTolerance)

	var ev Events
	for _, c := range crossings {
		switch {
		case c.Rising && !ev.Moonrise.Occurred():
			ev.Moonrise = sky.Occurred(c.Time)
		case !c.Rising && !ev.Moonset.Occurred():
			ev.Moonset = sky.Occurred(c.Time)
		}
	}

	if len(crossings) == 0 {
		cond := sky.AlwaysBelow
		if above {
			cond = sky.AlwaysAbove
		}
		return Events{Moonrise: sky.DidNotOccur(cond), Moonset: sky.DidNotOccur(cond)}
	}
	if !ev.Moonrise.Occurred() {
		ev.Moonrise = sky.DidNotOccur(sky.NotThisDay)
	}
	if !ev.Moonset.Occurred() {
		ev.Moonset = sky.DidNotOccur(sky.NotThisDay)
	}
	return ev
}

// RiseSetThreshold returns the altitude of the Moon's centre, in degrees, at
// rise or set for a Moon at distKm, before the horizon dip.
func RiseSetThreshold(distKm float64) float64 {
	return 0.7275*sky.RadToDeg(parallax(distKm)) - 0.5667
}

func altitudeAboveThreshold(o sky.Observer, t time.Time) float64 {
	jd := sky.JD(t)
	ra, dec, dist := equatorial(jd)
	el, _ := sky.Horizontal(o.Latitude, dec, sky.HourAngle(jd, ra, o.Longitude))
	return el - (RiseSetThreshold(dist) - o.HorizonDip())
}
