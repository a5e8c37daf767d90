package solar

import (
	"math"
	"time"

	"github.com/chrissnell/ephemeris/pkg/sky"
	"github.com/soniakeys/meeus/v3/base"
	sun "github.com/soniakeys/meeus/v3/solar"
)

const (
	solarConstant  = 1361.0 // W/m² at 1 AU
	linkeTurbidity = 2.0    // typical clear sky, range 2-6
)

// ClearSkyIrradiance returns the global horizontal irradiance, in W/m², that a
// cloudless sky would deliver at t for an observer o, using the Ineichen-Perez
// model. It is zero while the Sun is below the horizon.
func ClearSkyIrradiance(o sky.Observer, t time.Time) float64 {
	return clearSky(Elevation(o, t), sky.JD(t), o.Elevation, t.YearDay())
}

func clearSky(elevationDeg, jd, altitude float64, yearDay int) float64 {
	if elevationDeg <= 0 {
		return 0
	}
	zenith := 90 - elevationDeg

	// Extraterrestrial irradiance scaled by the Earth-Sun distance.
	r := sun.Radius(base.J2000Century(jd))
	g0 := solarConstant / (r * r)

	// Kasten-Young air mass.
	am := 1.0 / (math.Cos(sky.DegToRad(zenith)) + 0.50572*math.Pow(96.07995-zenith, -1.6364))

	const (
		c = 0.7   // DNI normalisation
		a = 0.027 // extinction coefficient
	)
	dni := g0 * c * math.Exp(-a*am*linkeTurbidity*math.Exp(-altitude/8000.0))

	fh := 0.1 + 0.05*math.Sin(math.Pi*float64(yearDay-100)/365.0)
	dhi := fh * g0 * math.Sin(sky.DegToRad(zenith))

	return dni*math.Cos(sky.DegToRad(zenith)) + dhi
}
