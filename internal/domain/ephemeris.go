package domain

import "math"

type Body string

const (
	BodySun     Body = "sun"
	BodyMoon    Body = "moon"
	BodyMercury Body = "mercury"
	BodyVenus   Body = "venus"
	BodyMars    Body = "mars"
	BodyJupiter Body = "jupiter"
	BodySaturn  Body = "saturn"
	BodyUranus  Body = "uranus"
	BodyNeptune Body = "neptune"
	BodyPluto   Body = "pluto"
)

// AllBodies returns the bodies facts are computed for, in traditional order.
// Lunar nodes, Lilith, Chiron, and asteroids are deliberately not included.
func AllBodies() []Body {
	return []Body{
		BodySun, BodyMoon, BodyMercury, BodyVenus, BodyMars,
		BodyJupiter, BodySaturn, BodyUranus, BodyNeptune, BodyPluto,
	}
}

func ValidBody(b string) bool {
	for _, x := range AllBodies() {
		if string(x) == b {
			return true
		}
	}
	return false
}

// EclipticPosition is a geocentric position in degrees (speed in degrees per
// day) referred to the ecliptic and equinox of date.
type EclipticPosition struct {
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	SpeedLon float64 `json:"speed_lon"`
}

type HouseSystem string

const (
	HousePlacidus  HouseSystem = "placidus"
	HousePorphyry  HouseSystem = "porphyry"
	HouseEqual     HouseSystem = "equal"
	HouseWholeSign HouseSystem = "whole_sign"
)

func ValidHouseSystem(s string) bool {
	switch HouseSystem(s) {
	case HousePlacidus, HousePorphyry, HouseEqual, HouseWholeSign:
		return true
	}
	return false
}

// HouseCusps holds twelve cusp longitudes (house 1 first) and the angles.
// System is the system actually used, which can differ from the one asked
// for when it is undefined at the given latitude.
type HouseCusps struct {
	System HouseSystem `json:"system"`
	Cusps  [12]float64 `json:"cusps"`
	Asc    float64     `json:"asc"`
	MC     float64     `json:"mc"`
}

type EphemerisMeta struct {
	EphemerisVersion string `json:"ephemeris_version"`
	EngineVersion    string `json:"engine_version"`
}

type Sign string

const (
	SignAries       Sign = "aries"
	SignTaurus      Sign = "taurus"
	SignGemini      Sign = "gemini"
	SignCancer      Sign = "cancer"
	SignLeo         Sign = "leo"
	SignVirgo       Sign = "virgo"
	SignLibra       Sign = "libra"
	SignScorpio     Sign = "scorpio"
	SignSagittarius Sign = "sagittarius"
	SignCapricorn   Sign = "capricorn"
	SignAquarius    Sign = "aquarius"
	SignPisces      Sign = "pisces"
)

var signs = [12]Sign{
	SignAries, SignTaurus, SignGemini, SignCancer, SignLeo, SignVirgo,
	SignLibra, SignScorpio, SignSagittarius, SignCapricorn, SignAquarius, SignPisces,
}

// SignOf maps an ecliptic longitude in degrees to its 30 degree sign.
func SignOf(lon float64) Sign {
	return signs[int(NormalizeDegrees(lon)/30)%12]
}

// NormalizeDegrees folds an angle into [0, 360).
func NormalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}
