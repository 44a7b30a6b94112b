package cube

import (
	"fmt"
	"math"
)

// CoordFormat controls the string rendering of sky coordinates.
type CoordFormat struct {
	// RA and Dec pick the angle rendering: "deg", "hms" or "dms".
	RA  string
	Dec string

	// Decimals is the number of digits after the decimal point.
	Decimals int
}

// DefaultCoordFormat renders right ascension in hours and declination in
// degrees, the conventional pairing, with two decimals.
func DefaultCoordFormat() CoordFormat {
	return CoordFormat{RA: "hms", Dec: "dms", Decimals: 2}
}

// PointCoordsStr is PointCoords with the results rendered as human-readable
// strings. The velocity is always in km/s.
func (c *DataCube) PointCoordsStr(x, y, z int, opt CoordFormat) (raStr, decStr, velStr string, err error) {
	ra, dec, vel, err := c.PointCoords(x, y, z)
	if err != nil {
		return "", "", "", err
	}
	raStr, err = formatAngle(ra, opt.RA, opt.Decimals)
	if err != nil {
		return "", "", "", err
	}
	decStr, err = formatAngle(dec, opt.Dec, opt.Decimals)
	if err != nil {
		return "", "", "", err
	}
	velStr = fmt.Sprintf("%.*f km/s", opt.Decimals, vel)
	return raStr, decStr, velStr, nil
}

// formatAngle renders an angle in decimal degrees as plain degrees,
// hours/minutes/seconds or degrees/arcminutes/arcseconds.
func formatAngle(deg float64, format string, decimals int) (string, error) {
	switch format {
	case "deg":
		return fmt.Sprintf("%.*f°", decimals, deg), nil
	case "hms":
		h, m, s := degToHMS(deg)
		return fmt.Sprintf("%dh %dm %.*fs", h, m, decimals, s), nil
	case "dms":
		d, m, s := degToDMS(deg)
		return fmt.Sprintf("%d° %d' %.*f''", d, m, decimals, s), nil
	}
	return "", fmt.Errorf("cube: unknown coordinate format %q", format)
}

// degToHMS splits decimal degrees into hours, minutes and seconds
// (24 hours = 360 degrees).
func degToHMS(deg float64) (h, m int, s float64) {
	hours := deg / 15
	h = int(hours)
	m, s = subdivide(math.Abs(hours - math.Trunc(hours)))
	return h, m, s
}

// degToDMS splits decimal degrees into degrees, arcminutes and arcseconds.
// The sign stays on the degrees component.
func degToDMS(deg float64) (d, m int, s float64) {
	d = int(deg)
	m, s = subdivide(math.Abs(deg - math.Trunc(deg)))
	return d, m, s
}

// subdivide splits a fractional unit into minutes and seconds. The epsilon
// absorbs float error that would otherwise surface as 60-second values.
func subdivide(frac float64) (m int, s float64) {
	m = int(frac*60 + 1e-9)
	s = frac*3600 - float64(m)*60
	if s < 0 {
		s = 0
	}
	return m, s
}
