package solar

import (
	"math"
	"time"

	"github.com/chrissnell/ephemeris/pkg/sky"
)

// Altitudes of the Sun's centre, in degrees, that define the daily events.
// All of them are lowered by the observer's horizon dip.
const (
	// SunriseAltitude accounts for refraction at the horizon and the Sun's
	// semi-diameter.
	SunriseAltitude  = -0.833
	CivilAltitude    = -6.0
	NauticalAltitude = -12.0
	GoldenHourLow    = -4.0
	GoldenHourHigh   = 6.0

	// DefaultDepression is the civil dawn/dusk depression below the horizon.
	DefaultDepression = 6.0
)

const (
	transitIterations  = 8
	crossingIterations = 6
	convergence        = 100 * time.Millisecond
)

// Options tunes the event calculation.
type Options struct {
	// Depression is how far below the horizon, in degrees, the Sun must be
	// for dawn and dusk. Zero or negative selects DefaultDepression.
	Depression float64
}

// Interval is a span of the day bounded by two events.
type Interval struct {
	Start sky.Occurrence
	End   sky.Occurrence
}

// Events is the full set of solar events for one civil day at one observer.
// Instants are expressed in the location of the requested day.
type Events struct {
	Day        time.Time // local midnight at the start of the day
	Depression float64

	Dawn         sky.Occurrence
	NauticalDawn sky.Occurrence
	Sunrise      sky.Occurrence
	Noon         sky.Occurrence
	Sunset       sky.Occurrence
	NauticalDusk sky.Occurrence
	Dusk         sky.Occurrence
	Midnight     sky.Occurrence

	NoonElevation float64

	GoldenHourMorning Interval
	GoldenHourEvening Interval
	BlueHourMorning   Interval
	BlueHourEvening   Interval

	Daylight        Interval
	MorningTwilight Interval
	EveningTwilight Interval
	Night           Interval // dusk to the following day's dawn

	DayLength             time.Duration
	MorningTwilightLength time.Duration
	EveningTwilightLength time.Duration
	NightLength           time.Duration
	// DayLengthChange is DayLength minus the previous day's DayLength.
	DayLengthChange time.Duration
}

// Calculate returns the solar events for the civil day containing day, in
// day's location, at observer o.
func Calculate(o sky.Observer, day time.Time, opts Options) Events {
	depression := opts.Depression
	if depression <= 0 {
		depression = DefaultDepression
	}

	loc := day.Location()
	start, end := sky.DayBounds(day)
	c := newCalculator(o, start, end)

	ev := Events{
		Day:        start,
		Depression: depression,
		Noon:       c.noon(),
		Midnight:   c.midnight(),
	}

	ev.Dawn = c.crossing(-depression, true)
	ev.NauticalDawn = c.crossing(NauticalAltitude, true)
	ev.Sunrise = c.crossing(SunriseAltitude, true)
	ev.Sunset = c.crossing(SunriseAltitude, false)
	ev.NauticalDusk = c.crossing(NauticalAltitude, false)
	ev.Dusk = c.crossing(-depression, false)

	if t, ok := ev.Noon.Time(); ok {
		ev.NoonElevation = Elevation(o, t)
	}

	goldenLow := [2]sky.Occurrence{c.crossing(GoldenHourLow, true), c.crossing(GoldenHourLow, false)}
	goldenHigh := [2]sky.Occurrence{c.crossing(GoldenHourHigh, true), c.crossing(GoldenHourHigh, false)}
	blueLow := [2]sky.Occurrence{c.crossing(CivilAltitude, true), c.crossing(CivilAltitude, false)}

	ev.GoldenHourMorning = Interval{Start: goldenLow[0], End: goldenHigh[0]}
	ev.GoldenHourEvening = Interval{Start: goldenHigh[1], End: goldenLow[1]}
	ev.BlueHourMorning = Interval{Start: blueLow[0], End: goldenLow[0]}
	ev.BlueHourEvening = Interval{Start: goldenLow[1], End: blueLow[1]}

	nextStart, nextEnd := sky.DayBounds(end)
	nextDawn := newCalculator(o, nextStart, nextEnd).crossing(-depression, true)

	ev.Daylight = Interval{Start: ev.Sunrise, End: ev.Sunset}
	ev.MorningTwilight = Interval{Start: ev.Dawn, End: ev.Sunrise}
	ev.EveningTwilight = Interval{Start: ev.Sunset, End: ev.Dusk}
	ev.Night = Interval{Start: ev.Dusk, End: nextDawn}

	full := end.Sub(start)
	ev.DayLength = span(ev.Sunrise, ev.Sunset, start, end, full, sky.AlwaysAbove)
	ev.MorningTwilightLength, ev.EveningTwilightLength = twilightLengths(ev, start, end)
	ev.NightLength = span(ev.Dusk, nextDawn, end, nextStart, full, sky.AlwaysBelow)

	prevStart, prevEnd := sky.DayBounds(start.Add(-time.Hour))
	prev := newCalculator(o, prevStart, prevEnd)
	prevLength := span(prev.crossing(SunriseAltitude, true), prev.crossing(SunriseAltitude, false),
		prevStart, prevEnd, prevEnd.Sub(prevStart), sky.AlwaysAbove)
	ev.DayLengthChange = ev.DayLength - prevLength

	ev.inLocation(loc)
	return ev
}

func (ev *Events) inLocation(loc *time.Location) {
	for _, p := range []*sky.Occurrence{
		&ev.Dawn, &ev.NauticalDawn, &ev.Sunrise, &ev.Noon, &ev.Sunset,
		&ev.NauticalDusk, &ev.Dusk, &ev.Midnight,
		&ev.GoldenHourMorning.Start, &ev.GoldenHourMorning.End,
		&ev.GoldenHourEvening.Start, &ev.GoldenHourEvening.End,
		&ev.BlueHourMorning.Start, &ev.BlueHourMorning.End,
		&ev.BlueHourEvening.Start, &ev.BlueHourEvening.End,
		&ev.Daylight.Start, &ev.Daylight.End,
		&ev.MorningTwilight.Start, &ev.MorningTwilight.End,
		&ev.EveningTwilight.Start, &ev.EveningTwilight.End,
		&ev.Night.Start, &ev.Night.End,
	} {
		*p = p.In(loc)
	}
}

// twilightLengths splits civil twilight into its morning and evening parts.
// On a day when the Sun reaches the dawn altitude but never rises, twilight
// runs from dawn to transit and from transit to dusk.
func twilightLengths(ev Events, start, end time.Time) (morning, evening time.Duration) {
	if ev.Sunrise.Condition() == sky.AlwaysBelow && ev.Noon.Occurred() {
		return span(ev.Dawn, ev.Noon, start, end, 0, sky.Unknown),
			span(ev.Noon, ev.Dusk, start, end, 0, sky.Unknown)
	}
	return span(ev.Dawn, ev.Sunrise, start, end, 0, sky.Unknown),
		span(ev.Sunset, ev.Dusk, start, end, 0, sky.Unknown)
}

// span returns the length of the interval [a, b]. A bound that falls on
// another day is replaced by lo or hi respectively. When either bound is polar
// the interval lasts full if the condition equals inside and is empty
// otherwise.
func span(a, b sky.Occurrence, lo, hi time.Time, full time.Duration, inside sky.Condition) time.Duration {
	for _, c := range []sky.Condition{a.Condition(), b.Condition()} {
		if c == sky.AlwaysAbove || c == sky.AlwaysBelow {
			if c == inside {
				return full
			}
			return 0
		}
	}

	s, ok := a.Time()
	if !ok {
		s = lo
	}
	e, ok := b.Time()
	if !ok {
		e = hi
	}
	if e.Before(s) {
		return 0
	}
	return e.Sub(s)
}

type calculator struct {
	o          sky.Observer
	start, end time.Time
	dip        float64
	transit    time.Time
}

func newCalculator(o sky.Observer, start, end time.Time) *calculator {
	c := &calculator{o: o, start: start, end: end, dip: o.HorizonDip()}
	y, m, d := start.Date()
	c.transit = c.solveTransit(time.Date(y, m, d, 12, 0, 0, 0, start.Location()), 0)
	return c
}

func (c *calculator) within(t time.Time) bool {
	return !t.Before(c.start) && t.Before(c.end)
}

func (c *calculator) noon() sky.Occurrence {
	if !c.within(c.transit) {
		return sky.Outside(c.transit)
	}
	return sky.Occurred(c.transit)
}

// midnight returns the lower transit that falls inside the civil day.
func (c *calculator) midnight() sky.Occurrence {
	t := c.solveTransit(c.start, math.Pi)
	if t.Before(c.start) {
		t = c.solveTransit(t.Add(24*time.Hour), math.Pi)
	}
	if !c.within(t) {
		return sky.Outside(t)
	}
	return sky.Occurred(t)
}

// solveTransit walks from guess to the instant the Sun's hour angle equals
// target (0 for the upper transit, π for the lower one).
func (c *calculator) solveTransit(guess time.Time, target float64) time.Time {
	t := guess
	for i := 0; i < transitIterations; i++ {
		jd := sky.JD(t)
		ra, _ := equatorial(jd)
		step := hourAngleToDuration(sky.WrapPi(target - sky.HourAngle(jd, ra, c.o.Longitude)))
		t = t.Add(step)
		if step.Abs() < convergence {
			break
		}
	}
	return t
}

// crossing finds when the Sun's centre passes altitudeDeg (before the dip
// correction) on the rising or setting side of the day's transit.
func (c *calculator) crossing(altitudeDeg float64, rising bool) sky.Occurrence {
	h0 := altitudeDeg - c.dip
	t := c.transit

	for i := 0; i < crossingIterations; i++ {
		jd := sky.JD(t)
		ra, dec := equatorial(jd)

		cosH0 := sky.CosHourAngle(c.o.Latitude, dec, h0)
		switch {
		case cosH0 < -1:
			return sky.DidNotOccur(sky.AlwaysAbove)
		case cosH0 > 1:
			return sky.DidNotOccur(sky.AlwaysBelow)
		}

		target := math.Acos(cosH0)
		if rising {
			target = -target
		}
		step := hourAngleToDuration(sky.WrapPi(target - sky.HourAngle(jd, ra, c.o.Longitude)))
		t = t.Add(step)
		if step.Abs() < convergence {
			break
		}
	}

	if !c.within(t) {
		return sky.Outside(t)
	}
	return sky.Occurred(t)
}

// hourAngleToDuration converts an hour angle difference in radians to the
// clock time the Sun takes to cover it.
func hourAngleToDuration(rad float64) time.Duration {
	return time.Duration(rad / (2 * math.Pi) * float64(24*time.Hour))
}
