package ephemeris

import (
	"sync"

	"github.com/luraaya/factengine/internal/domain"
)

// MockEngine is a configurable engine for tests. Positions default to the
// body's index times 30 degrees so every body lands in a distinct sign.
type MockEngine struct {
	MetaResponse  domain.EphemerisMeta
	Positions     map[domain.Body]domain.EclipticPosition
	PositionFunc  func(jdUT float64, body domain.Body) (domain.EclipticPosition, error)
	PositionError error
	HousesResult  *domain.HouseCusps
	HousesError   error

	mu            sync.Mutex
	PositionCalls []PositionCall
	HousesCalls   int
}

type PositionCall struct {
	JulianDayUT float64
	Body        domain.Body
}

func NewMockEngine() *MockEngine {
	return &MockEngine{
		MetaResponse: domain.EphemerisMeta{
			EphemerisVersion: "mock-ephe",
			EngineVersion:    "mock-1",
		},
	}
}

func (m *MockEngine) Meta() domain.EphemerisMeta {
	return m.MetaResponse
}

func (m *MockEngine) Position(jdUT float64, body domain.Body) (domain.EclipticPosition, error) {
	m.mu.Lock()
	m.PositionCalls = append(m.PositionCalls, PositionCall{JulianDayUT: jdUT, Body: body})
	m.mu.Unlock()

	if m.PositionError != nil {
		return domain.EclipticPosition{}, m.PositionError
	}
	if m.PositionFunc != nil {
		return m.PositionFunc(jdUT, body)
	}
	if p, ok := m.Positions[body]; ok {
		return p, nil
	}
	for i, b := range domain.AllBodies() {
		if b == body {
			return domain.EclipticPosition{Lon: float64(i)*30 + 15, SpeedLon: 1}, nil
		}
	}
	return domain.EclipticPosition{}, ErrUnknownBody
}

func (m *MockEngine) Houses(jdUT, lat, lon float64, system domain.HouseSystem) (domain.HouseCusps, error) {
	m.mu.Lock()
	m.HousesCalls++
	m.mu.Unlock()

	if m.HousesError != nil {
		return domain.HouseCusps{}, m.HousesError
	}
	if m.HousesResult != nil {
		return *m.HousesResult, nil
	}
	var c [12]float64
	for i := range c {
		c[i] = float64(i) * 30
	}
	return domain.HouseCusps{System: system, Cusps: c, Asc: 0, MC: 270}, nil
}
