// Package registry loads municipal address registry extracts whose
// coordinates are given in the GK25FIN plane coordinate system.
package registry

import "math"

// GK25FIN (EPSG:3879) Gauss-Krüger parameters on the GRS80 ellipsoid.
const (
	gkA            = 6378137.0
	gkF            = 1 / 298.257222101
	gkLon0         = 25.0      // central meridian, degrees
	gkFalseEasting = 25500000.0
	gkScale        = 1.0
)

// GK25ToWGS84 converts a GK25FIN northing/easting pair to WGS84
// longitude and latitude in degrees. The inverse projection uses the
// standard transverse Mercator series, accurate to well under a
// millimeter over the projection's validity area.
func GK25ToWGS84(n, e float64) (lon, lat float64) {
	esq := gkF * (2 - gkF)
	epsq := esq / (1 - esq)

	x := e - gkFalseEasting
	y := n

	// Footpoint latitude from the meridian arc.
	m := y / gkScale
	mu := m / (gkA * (1 - esq/4 - 3*esq*esq/64 - 5*esq*esq*esq/256))

	e1 := (1 - math.Sqrt(1-esq)) / (1 + math.Sqrt(1-esq))
	phi1 := mu +
		(3*e1/2-27*e1*e1*e1/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*e1*e1*e1*e1/32)*math.Sin(4*mu) +
		(151*e1*e1*e1/96)*math.Sin(6*mu) +
		(1097*e1*e1*e1*e1/512)*math.Sin(8*mu)

	sinPhi1 := math.Sin(phi1)
	cosPhi1 := math.Cos(phi1)
	tanPhi1 := math.Tan(phi1)

	c1 := epsq * cosPhi1 * cosPhi1
	t1 := tanPhi1 * tanPhi1
	n1 := gkA / math.Sqrt(1-esq*sinPhi1*sinPhi1)
	r1 := gkA * (1 - esq) / math.Pow(1-esq*sinPhi1*sinPhi1, 1.5)
	d := x / (n1 * gkScale)

	latRad := phi1 - (n1*tanPhi1/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*epsq)*d*d*d*d/24+
		(61+90*t1+298*c1+45*t1*t1-252*epsq-3*c1*c1)*d*d*d*d*d*d/720)

	lonRad := (d -
		(1+2*t1+c1)*d*d*d/6 +
		(5-2*c1+28*t1-3*c1*c1+8*epsq+24*t1*t1)*d*d*d*d*d/120) / cosPhi1

	lat = latRad * 180 / math.Pi
	lon = gkLon0 + lonRad*180/math.Pi
	return lon, lat
}
