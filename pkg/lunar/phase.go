// Package lunar provides moon phase, moonrise/moonset and crescent
// orientation calculations. Positions come from the full Meeus lunar theory
// (chapter 47), so phase boundaries are good to a few minutes and rise and
// set times to about a minute.
package lunar

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonphase"
	sun "github.com/soniakeys/meeus/v3/solar"
)

// SynodicMonth is the average length of the lunar cycle in days
const SynodicMonth = 29.530588853

// PhaseScale is the length of the phase index scale. An index of 0 is new
// moon and 14 is full moon.
const PhaseScale = 28

// lunationYears is one synodic month expressed in years, the step between
// successive moonphase lookups.
const lunationYears = 1 / 12.3685

// ErrPhaseIndex is returned for a phase index outside [0, PhaseScale).
var ErrPhaseIndex = errors.New("phase index out of range")

// Phase is one of the eight named phases of the Moon.
type Phase int

const (
	NewMoon Phase = iota
	WaxingCrescent
	FirstQuarter
	WaxingGibbous
	FullMoon
	WaningGibbous
	LastQuarter
	WaningCrescent
)

var phaseNames = [...]string{
	NewMoon:        "New Moon",
	WaxingCrescent: "Waxing Crescent",
	FirstQuarter:   "First Quarter",
	WaxingGibbous:  "Waxing Gibbous",
	FullMoon:       "Full Moon",
	WaningGibbous:  "Waning Gibbous",
	LastQuarter:    "Last Quarter",
	WaningCrescent: "Waning Crescent",
}

func (p Phase) String() string {
	if p < NewMoon || p > WaningCrescent {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// phaseBounds holds the lower, inclusive, index of each phase.
var phaseBounds = [...]float64{0, 3, 7, 10, 14, 17, 21, 24}

// PhaseFromIndex maps a phase index in [0, 28) to its named phase. Each phase
// covers a half-open range starting at its lower bound.
func PhaseFromIndex(index float64) (Phase, error) {
	if math.IsNaN(index) || index < 0 || index >= PhaseScale {
		return 0, fmt.Errorf("%w: %v", ErrPhaseIndex, index)
	}
	p := NewMoon
	for i, lower := range phaseBounds {
		if index >= lower {
			p = Phase(i)
		}
	}
	return p, nil
}

// MoonPhase contains calculated moon phase information
type MoonPhase struct {
	Time         time.Time
	Index        float64 // [0, 28): 0 = new, 14 = full
	Fraction     float64 // [0, 1): Index / 28
	Phase        Phase
	PhaseName    string
	Elongation   float64 // Sun→Moon ecliptic longitude difference in degrees [0, 360)
	Illumination float64 // Illuminated fraction [0, 1]
	AgeDays      float64 // Days since the previous new moon
	IsWaxing     bool
}

// Calculate computes the moon phase at t.
func Calculate(t time.Time) MoonPhase {
	jd := sky.JD(t)
	elongation := Elongation(jd)

	index := elongation / 360 * PhaseScale
	if index >= PhaseScale {
		index = 0
	}
	// index is in range by construction
	phase, _ := PhaseFromIndex(index)

	age := t.Sub(PreviousNewMoon(t)).Hours() / 24

	return MoonPhase{
		Time:         t,
		Index:        index,
		Fraction:     index / PhaseScale,
		Phase:        phase,
		PhaseName:    phase.String(),
		Elongation:   elongation,
		Illumination: (1 - math.Cos(sky.DegToRad(elongation))) / 2,
		AgeDays:      age,
		IsWaxing:     elongation < 180,
	}
}

// Elongation returns the difference between the apparent ecliptic longitudes
// of the Moon and the Sun at Julian day jd, in degrees [0, 360).
func Elongation(jd float64) float64 {
	λ, _, _ := apparentEcliptic(jd)
	λSun := sun.ApparentLongitude(base.J2000Century(jd))
	return sky.NormalizeDegrees(sky.RadToDeg(λ - λSun.Rad()))
}

// NextNewMoon returns the first new moon after t, in UTC.
func NextNewMoon(t time.Time) time.Time {
	return nextPhase(t, moonphase.New)
}

// NextFullMoon returns the first full moon after t, in UTC.
func NextFullMoon(t time.Time) time.Time {
	return nextPhase(t, moonphase.Full)
}

// PreviousNewMoon returns the last new moon at or before t, in UTC.
func PreviousNewMoon(t time.Time) time.Time {
	y := decimalYear(t) + lunationYears
	for i := 0; i < 4; i++ {
		at := julian.JDToTime(moonphase.New(y))
		if !at.After(t) {
			return at
		}
		y -= lunationYears
	}
	return julian.JDToTime(moonphase.New(y))
}

// nextPhase steps through the lunations returned by f, starting one before t,
// until it finds one after t.
func nextPhase(t time.Time, f func(float64) float64) time.Time {
	y := decimalYear(t) - lunationYears
	for i := 0; i < 4; i++ {
		at := julian.JDToTime(f(y))
		if at.After(t) {
			return at
		}
		y += lunationYears
	}
	return julian.JDToTime(f(y))
}

func decimalYear(t time.Time) float64 {
	t = t.UTC()
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return float64(t.Year()) + float64(t.Sub(start))/float64(end.Sub(start))
}
