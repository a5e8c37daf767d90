package report

import (
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/ephemeris/internal/ephemeris"
	"github.com/chrissnell/ephemeris/pkg/lunar"
	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/chrissnell/ephemeris/pkg/solar"
)

const clockLayout = "15:04"

// Row is one line of the ephemeris table.
type Row struct {
	Label string
	Value string
}

// Rows returns the table for r in display order.
func Rows(r *ephemeris.Result) []Row {
	sun := r.Sun
	tz := r.Timezone
	day := r.Day.In(tz)
	dawnAlt := fmt.Sprintf("%g°", -sun.Depression)

	rows := []Row{
		{"Location", location(r.Location)},
		{"Date", r.Day.Format("Monday 2 January 2006") + " (" + tz.String() + ")"},
		{"Sun now", fmt.Sprintf("%s  elevation %.2f°  azimuth %.2f°  %s",
			r.At.Format(clockLayout), r.SunNow.Elevation, r.SunNow.Azimuth, r.SkyBand.Name)},
		{"Dawn", occurrence(sun.Dawn, day, "sun", dawnAlt)},
		{"Sunrise", occurrence(sun.Sunrise, day, "sun", "the horizon")},
		{"Solar noon", noon(sun, day)},
		{"Sunset", occurrence(sun.Sunset, day, "sun", "the horizon")},
		{"Dusk", occurrence(sun.Dusk, day, "sun", dawnAlt)},
		{"Nautical dawn", occurrence(sun.NauticalDawn, day, "sun", "-12°")},
		{"Nautical dusk", occurrence(sun.NauticalDusk, day, "sun", "-12°")},
		{"Solar midnight", occurrence(sun.Midnight, day, "sun", "")},
		{"Golden hour (morning)", interval(sun.GoldenHourMorning, day, "-4°", "6°")},
		{"Golden hour (evening)", interval(sun.GoldenHourEvening, day, "-4°", "6°")},
		{"Blue hour (morning)", interval(sun.BlueHourMorning, day, "-6°", "-4°")},
		{"Blue hour (evening)", interval(sun.BlueHourEvening, day, "-6°", "-4°")},
		{"Day length", fmt.Sprintf("%s (%s)", FormatDuration(sun.DayLength), FormatChange(sun.DayLengthChange))},
		{"Night length", FormatDuration(sun.NightLength)},
		{"Moon phase", moonPhase(r.Moon)},
		{"Moonrise", occurrence(r.MoonEvents.Moonrise, day, "moon", "the horizon")},
		{"Moonset", occurrence(r.MoonEvents.Moonset, day, "moon", "the horizon")},
		{"Next new moon", r.NextNewMoon.In(tz).Format("Mon 2 Jan 2006 15:04")},
		{"Next full moon", r.NextFullMoon.In(tz).Format("Mon 2 Jan 2006 15:04")},
	}
	return rows
}

func location(l ephemeris.Location) string {
	coords := fmt.Sprintf("%.4f°%s %.4f°%s, %.0f m",
		math.Abs(l.Latitude), hemisphere(l.Latitude, "N", "S"),
		math.Abs(l.Longitude), hemisphere(l.Longitude, "E", "W"),
		l.Elevation)
	switch {
	case l.Name != "" && l.Region != "":
		return l.Name + ", " + l.Region + " (" + coords + ")"
	case l.Name != "":
		return l.Name + " (" + coords + ")"
	}
	return coords
}

func hemisphere(v float64, pos, neg string) string {
	if v < 0 {
		return neg
	}
	return pos
}

// occurrence renders an event time, or why it has none. subject and limit
// describe the body and the altitude that was never crossed. day is local
// midnight of the reported day.
func occurrence(o sky.Occurrence, day time.Time, subject, limit string) string {
	tz := day.Location()
	if t, ok := o.Time(); ok {
		return t.In(tz).Format(clockLayout)
	}
	switch o.Condition() {
	case sky.AlwaysAbove, sky.AlwaysBelow:
		if limit == "" {
			return fmt.Sprintf("does not occur (%s %s)", subject, o.Condition())
		}
		return fmt.Sprintf("does not occur (%s %s %s)", subject, o.Condition(), limit)
	}
	if t, ok := o.Spill(); ok {
		t = t.In(tz)
		return fmt.Sprintf("does not occur (%s, %s %+d day)", o.Condition(), t.Format(clockLayout), dayOffset(day, t))
	}
	return "does not occur (" + o.Condition().String() + ")"
}

// dayOffset returns the number of calendar days from day to t.
func dayOffset(day, t time.Time) int {
	y1, m1, d1 := day.Date()
	y2, m2, d2 := t.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func noon(e solar.Events, day time.Time) string {
	t, ok := e.Noon.Time()
	if !ok {
		return occurrence(e.Noon, day, "sun", "")
	}
	return fmt.Sprintf("%s  elevation %.2f°", t.In(day.Location()).Format(clockLayout), e.NoonElevation)
}

func interval(iv solar.Interval, day time.Time, low, high string) string {
	tz := day.Location()
	start, ok1 := iv.Start.Time()
	end, ok2 := iv.End.Time()
	if ok1 && ok2 {
		return start.In(tz).Format(clockLayout) + " - " + end.In(tz).Format(clockLayout)
	}
	_, spill1 := iv.Start.Spill()
	_, spill2 := iv.End.Spill()
	if !ok1 && !ok2 && !spill1 && !spill2 && iv.Start.Condition() == iv.End.Condition() {
		return occurrence(iv.Start, day, "sun", low)
	}
	return fmt.Sprintf("%s - %s",
		occurrence(iv.Start, day, "sun", low),
		occurrence(iv.End, day, "sun", high))
}

func moonPhase(m lunar.MoonPhase) string {
	direction := "waning"
	if m.IsWaxing {
		direction = "waxing"
	}
	return fmt.Sprintf("%.1f/%d %s, %.0f%% illuminated, %s, %.1f days old",
		m.Index, lunar.PhaseScale, m.PhaseName, m.Illumination*100, direction, m.AgeDays)
}

// FormatDuration renders d as hours and minutes, e.g. "16h 11m".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh %02dm", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// FormatChange renders a day-length change against the previous day, e.g.
// "+2m 13s" or "-0m 05s".
func FormatChange(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%s%dm %02ds", sign, int(d/time.Minute), int(d%time.Minute/time.Second))
}
