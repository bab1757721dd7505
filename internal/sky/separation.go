package sky

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// DefaultConeRadius is the nearby-source search radius in degrees
const DefaultConeRadius = 1.5

// LatLng maps equatorial coordinates onto the unit sphere: dec is the
// latitude and ra the longitude, both in degrees
func LatLng(ra, dec float64) s2.LatLng {
	return s2.LatLngFromDegrees(dec, ra)
}

// Separation returns the angular distance between two positions in degrees
func Separation(ra1, dec1, ra2, dec2 float64) float64 {
	return LatLng(ra1, dec1).Distance(LatLng(ra2, dec2)).Degrees()
}

// PositionAngle returns the position angle of point 2 as seen from point 1,
// in degrees east of north (0-360)
func PositionAngle(ra1, dec1, ra2, dec2 float64) float64 {
	p1 := LatLng(ra1, dec1)
	p2 := LatLng(ra2, dec2)

	dec1Rad := p1.Lat.Radians()
	dec2Rad := p2.Lat.Radians()
	raDiff := p2.Lng.Radians() - p1.Lng.Radians()

	y := math.Sin(raDiff) * math.Cos(dec2Rad)
	x := math.Cos(dec1Rad)*math.Sin(dec2Rad) - math.Sin(dec1Rad)*math.Cos(dec2Rad)*math.Cos(raDiff)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Midpoint returns the point halfway along the great circle between two positions
func Midpoint(ra1, dec1, ra2, dec2 float64) (ra, dec float64) {
	mid := s2.Interpolate(0.5, s2.PointFromLatLng(LatLng(ra1, dec1)), s2.PointFromLatLng(LatLng(ra2, dec2)))
	ll := s2.LatLngFromPoint(mid)
	return NormalizeRA(ll.Lng.Degrees()), ll.Lat.Degrees()
}

// Cone returns the spherical cap of radius degrees around (ra, dec)
func Cone(ra, dec, radius float64) s2.Cap {
	center := s2.PointFromLatLng(LatLng(ra, dec))
	return s2.CapFromCenterAngle(center, s1.Angle(radius)*s1.Degree)
}

// InCone reports whether (ra, dec) lies inside the cap
func InCone(c s2.Cap, ra, dec float64) bool {
	return c.ContainsPoint(s2.PointFromLatLng(LatLng(ra, dec)))
}

// NormalizeRA wraps a right ascension into [0, 360)
func NormalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	return ra
}
