package solar

// Band names the colour of the sky for a range of solar elevations. Colors are
// X11/CSS names so they can be used directly in HTML.
type Band struct {
	Name  string
	Color string
	Hex   string
}

var (
	BandDay        = Band{Name: "Day", Color: "SkyBlue", Hex: "#87CEEB"}
	BandGoldenHour = Band{Name: "Golden hour", Color: "Orange", Hex: "#FFA500"}
	BandBlueHour   = Band{Name: "Blue hour", Color: "SteelBlue", Hex: "#4682B4"}
	BandNight      = Band{Name: "Night", Color: "CornflowerBlue", Hex: "#6495ED"}
)

// SkyBand returns the sky band for a solar elevation in degrees. Lower bounds
// are inclusive: 6° is day, -4° is golden hour and -6° is blue hour.
func SkyBand(elevation float64) Band {
	switch {
	case elevation >= GoldenHourHigh:
		return BandDay
	case elevation >= GoldenHourLow:
		return BandGoldenHour
	case elevation >= CivilAltitude:
		return BandBlueHour
	default:
		return BandNight
	}
}
