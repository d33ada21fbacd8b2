package ephemeris

import (
	"errors"
	"fmt"
	"math"

	"github.com/luraaya/factengine/internal/domain"
)

const (
	AnalyticEphemerisVersion = "meeus-jpl-approx-1800-2050"
	AnalyticEngineVersion    = "analytic-1.1.0"
)

var (
	ErrUnknownBody        = errors.New("unknown body")
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidJulianDay   = errors.New("julian day is not finite")
)

// speedStep is the half width, in days, of the central difference used for
// longitude speed.
const speedStep = 0.5

// AnalyticEngine computes positions from closed-form series: the Meeus solar,
// lunar and Pluto theories, and Keplerian elements for the other planets. Accuracy is a few arcminutes for the planets in 1800-2050, which
// is well inside a zodiac degree. It holds no state and is safe for
// concurrent use.
type AnalyticEngine struct{}

func NewAnalyticEngine() *AnalyticEngine {
	return &AnalyticEngine{}
}

func (e *AnalyticEngine) Meta() domain.EphemerisMeta {
	return domain.EphemerisMeta{
		EphemerisVersion: AnalyticEphemerisVersion,
		EngineVersion:    AnalyticEngineVersion,
	}
}

func (e *AnalyticEngine) Position(jdUT float64, body domain.Body) (domain.EclipticPosition, error) {
	if math.IsNaN(jdUT) || math.IsInf(jdUT, 0) {
		return domain.EclipticPosition{}, ErrInvalidJulianDay
	}
	fn, err := lonLatFunc(body)
	if err != nil {
		return domain.EclipticPosition{}, err
	}

	lon, lat := fn(jdUT)
	before, _ := fn(jdUT - speedStep)
	after, _ := fn(jdUT + speedStep)

	return domain.EclipticPosition{
		Lon:      lon,
		Lat:      lat,
		SpeedLon: angularDiff(after, before) / (2 * speedStep),
	}, nil
}

func (e *AnalyticEngine) Houses(jdUT, lat, lon float64, system domain.HouseSystem) (domain.HouseCusps, error) {
	if math.IsNaN(jdUT) || math.IsInf(jdUT, 0) {
		return domain.HouseCusps{}, ErrInvalidJulianDay
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return domain.HouseCusps{}, fmt.Errorf("%w: lat=%v lon=%v", ErrInvalidCoordinates, lat, lon)
	}
	return houses(jdUT, lat, lon, system), nil
}

func lonLatFunc(body domain.Body) (func(float64) (float64, float64), error) {
	switch body {
	case domain.BodySun:
		return sunLonLat, nil
	case domain.BodyMoon:
		return moonLonLat, nil
	case domain.BodyPluto:
		return plutoLonLat, nil
	}
	if _, ok := orbits[string(body)]; ok && body != "earth" {
		name := string(body)
		return func(jd float64) (float64, float64) { return planetLonLat(name, jd) }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBody, body)
}
