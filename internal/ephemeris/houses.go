package ephemeris

import (
	"math"

	"github.com/luraaya/factengine/internal/domain"
)

// polarLatitude is where Placidus semi-arcs stop being defined for points on
// the ecliptic: beyond it some degrees never rise or set.
func polarLatitude(eps float64) float64 {
	return 90 - eps
}

// raToLon projects a right ascension onto the ecliptic.
func raToLon(ra, eps float64) float64 {
	return normalize(math.Atan2(math.Sin(ra*deg), math.Cos(ra*deg)*math.Cos(eps*deg)) / deg)
}

type angles struct {
	ramc, eps, asc, mc float64
}

func computeAngles(jd, lat, lon float64) angles {
	eps := trueObliquity(jd)
	ramc := normalize(apparentSiderealDeg(jd) + lon)
	mc := raToLon(ramc, eps)
	asc := normalize(math.Atan2(
		math.Cos(ramc*deg),
		-(math.Sin(ramc*deg)*math.Cos(eps*deg)+math.Tan(lat*deg)*math.Sin(eps*deg)),
	) / deg)
	return angles{ramc: ramc, eps: eps, asc: asc, mc: mc}
}

func houses(jd, lat, lon float64, system domain.HouseSystem) domain.HouseCusps {
	a := computeAngles(jd, lat, lon)

	var c [12]float64
	used := system
	switch system {
	case domain.HousePlacidus:
		var ok bool
		if c, ok = placidus(a, lat); !ok {
			c = porphyry(a)
			used = domain.HousePorphyry
		}
	case domain.HouseEqual:
		for i := range c {
			c[i] = normalize(a.asc + 30*float64(i))
		}
	case domain.HouseWholeSign:
		first := math.Floor(a.asc/30) * 30
		for i := range c {
			c[i] = normalize(first + 30*float64(i))
		}
	default:
		c = porphyry(a)
		used = domain.HousePorphyry
	}

	return domain.HouseCusps{System: used, Cusps: c, Asc: a.asc, MC: a.mc}
}

// placidus trisects the diurnal and nocturnal semi-arcs. It reports false
// when the semi-arc of a cusp is undefined at this latitude.
func placidus(a angles, lat float64) ([12]float64, bool) {
	var c [12]float64
	if math.Abs(lat) >= polarLatitude(a.eps) {
		return c, false
	}

	cusp := func(fraction float64, below bool) (float64, bool) {
		offset := fraction * 90
		if below {
			offset = 180 - fraction*90
		}
		lam := raToLon(a.ramc+offset, a.eps)
		for i := 0; i < 100; i++ {
			dec := math.Asin(math.Sin(a.eps*deg) * math.Sin(lam*deg))
			x := math.Tan(lat*deg) * math.Tan(dec)
			if math.Abs(x) > 1 {
				return 0, false
			}
			ad := math.Asin(x) / deg

			var ra float64
			if below {
				ra = a.ramc + 180 - fraction*(90-ad)
			} else {
				ra = a.ramc + fraction*(90+ad)
			}
			next := raToLon(ra, a.eps)
			delta := math.Abs(angularDiff(next, lam))
			lam = next
			if delta < 1e-9 {
				break
			}
		}
		return lam, true
	}

	type cuspStep struct {
		index    int
		fraction float64
		below    bool
	}
	for _, s := range []cuspStep{{10, 1.0 / 3, false}, {11, 2.0 / 3, false}, {1, 2.0 / 3, true}, {2, 1.0 / 3, true}} {
		v, ok := cusp(s.fraction, s.below)
		if !ok {
			return c, false
		}
		c[s.index] = v
	}
	c[0] = a.asc
	c[9] = a.mc
	mirror(&c)
	return c, true
}

// porphyry trisects the ecliptic arcs between the angles.
func porphyry(a angles) [12]float64 {
	var c [12]float64
	upper := normalize(a.asc - a.mc)
	lower := normalize(a.mc + 180 - a.asc)

	c[9] = a.mc
	c[10] = normalize(a.mc + upper/3)
	c[11] = normalize(a.mc + 2*upper/3)
	c[0] = a.asc
	c[1] = normalize(a.asc + lower/3)
	c[2] = normalize(a.asc + 2*lower/3)
	mirror(&c)
	return c
}

// mirror fills houses 4-9 from their opposites.
func mirror(c *[12]float64) {
	for _, i := range []int{0, 1, 2, 9, 10, 11} {
		c[(i+6)%12] = normalize(c[i] + 180)
	}
}

// angularDiff returns a-b folded into (-180, 180].
func angularDiff(a, b float64) float64 {
	d := math.Mod(a-b+540, 360) - 180
	if d == -180 {
		return 180
	}
	return d
}
