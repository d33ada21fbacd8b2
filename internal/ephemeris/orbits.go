package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

const (
	deg   = math.Pi / 180
	j2000 = 2451545.0
)

// centuries returns Julian centuries since J2000. The meeus series expect
// JDE (TT) and are fed UT; the difference stays under 0.02 degrees for the
// Moon and is negligible for everything slower.
func centuries(jd float64) float64 {
	return (jd - j2000) / 36525.0
}

func normalize(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// orbit holds J2000 mean elements and their rates per Julian century, from
// the JPL "Approximate Positions of the Major Planets" table valid for
// 1800-2050: semi-major axis (au), eccentricity, inclination, mean
// longitude, longitude of perihelion, longitude of ascending node (degrees).
type orbit struct {
	a, e, i, l, peri, node                   float64
	aDot, eDot, iDot, lDot, periDot, nodeDot float64
}

var orbits = map[string]orbit{
	"mercury": {0.38709927, 0.20563593, 7.00497902, 252.25032350, 77.45779628, 48.33076593,
		0.00000037, 0.00001906, -0.00594749, 149472.67411175, 0.16047689, -0.12534081},
	"venus": {0.72333566, 0.00677672, 3.39467605, 181.97909950, 131.60246718, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.00268329, -0.27769418},
	"earth": {1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
		0.00000562, -0.00004392, -0.01294668, 35999.37244981, 0.32327364, 0.0},
	"mars": {1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343},
	"jupiter": {5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106},
	"saturn": {9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794},
	"uranus": {19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589},
	"neptune": {30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664},
}

// heliocentric returns ecliptic J2000 rectangular coordinates in au.
func (o orbit) heliocentric(t float64) (x, y, z float64) {
	a := o.a + o.aDot*t
	e := o.e + o.eDot*t
	incl := o.i + o.iDot*t
	l := o.l + o.lDot*t
	peri := o.peri + o.periDot*t
	node := o.node + o.nodeDot*t

	argPeri := peri - node
	m := normalize(l - peri)
	if m > 180 {
		m -= 360
	}
	ecc := solveKepler(m, e)

	xp := a * (math.Cos(ecc*deg) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(ecc*deg)

	cw, sw := math.Cos(argPeri*deg), math.Sin(argPeri*deg)
	cn, sn := math.Cos(node*deg), math.Sin(node*deg)
	ci, si := math.Cos(incl*deg), math.Sin(incl*deg)

	x = (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp
	y = (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp
	z = (sw*si)*xp + (cw*si)*yp
	return x, y, z
}

// solveKepler returns the eccentric anomaly in degrees for mean anomaly m
// (degrees) by Newton iteration.
func solveKepler(m, e float64) float64 {
	eDeg := e / deg
	ecc := m + eDeg*math.Sin(m*deg)
	for i := 0; i < 50; i++ {
		dm := m - (ecc - eDeg*math.Sin(ecc*deg))
		de := dm / (1 - e*math.Cos(ecc*deg))
		ecc += de
		if math.Abs(de) < 1e-10 {
			break
		}
	}
	return ecc
}

// planetLonLat returns the geocentric ecliptic longitude and latitude of date
// for one of the orbit table planets.
func planetLonLat(name string, jd float64) (lon, lat float64) {
	px, py, pz := orbits[name].heliocentric(centuries(jd))
	return geocentricOfDate(jd, px, py, pz)
}

// plutoLonLat uses the Meeus Pluto theory (valid 1885-2099) instead of the
// Keplerian elements, which drift by arcminutes for Pluto.
func plutoLonLat(jd float64) (lon, lat float64) {
	l, b, r := pluto.Heliocentric(jd)
	cb := math.Cos(b.Rad())
	return geocentricOfDate(jd, r*cb*math.Cos(l.Rad()), r*cb*math.Sin(l.Rad()), r*math.Sin(b.Rad()))
}

// geocentricOfDate turns heliocentric ecliptic J2000 coordinates (au) into
// geocentric longitude and latitude referred to the true equinox of date.
func geocentricOfDate(jd, px, py, pz float64) (lon, lat float64) {
	t := centuries(jd)
	ex, ey, ez := orbits["earth"].heliocentric(t)
	gx, gy, gz := px-ex, py-ey, pz-ez

	lon = math.Atan2(gy, gx) / deg
	lat = math.Atan2(gz, math.Hypot(gx, gy)) / deg
	dpsi, _ := nutation.Nutation(jd)
	return normalize(lon + precession(t) + dpsi.Deg()), lat
}

// sunLonLat is the apparent solar longitude, aberration and nutation
// included, good to about 0.01 degrees.
func sunLonLat(jd float64) (lon, lat float64) {
	return normalize(solar.ApparentLongitude(base.J2000Century(jd)).Deg()), 0
}

// moonLonLat is the full periodic series of Meeus chapter 47 plus nutation in
// longitude.
func moonLonLat(jd float64) (lon, lat float64) {
	l, b, _ := moonposition.Position(jd)
	dpsi, _ := nutation.Nutation(jd)
	return normalize(l.Deg() + dpsi.Deg()), b.Deg()
}

// precession is the general precession in longitude from J2000 to date.
func precession(t float64) float64 {
	return (5029.0966*t + 1.11113*t*t) / 3600
}

// trueObliquity returns the obliquity of the ecliptic of date in degrees.
func trueObliquity(jd float64) float64 {
	_, deps := nutation.Nutation(jd)
	return nutation.MeanObliquity(jd).Deg() + deps.Deg()
}

// apparentSiderealDeg returns Greenwich apparent sidereal time in degrees.
func apparentSiderealDeg(jd float64) float64 {
	st := sidereal.Apparent(jd)
	return normalize(float64(st) / 240)
}
