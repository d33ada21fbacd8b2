package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/luraaya/factengine/internal/canonical"
	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/ephemeris"
	"github.com/luraaya/factengine/internal/metrics"
	"github.com/luraaya/factengine/internal/store"
	"github.com/luraaya/factengine/internal/timeline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPlaceStore mocks the PlaceStore interface.
type MockPlaceStore struct {
	mock.Mock
}

func (m *MockPlaceStore) GetByPlaceID(ctx context.Context, placeID string) (*domain.Place, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Place), args.Error(1)
}

func (m *MockPlaceStore) Upsert(ctx context.Context, p *domain.Place) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPlaceStore) List(ctx context.Context, limit int) ([]domain.Place, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Place), args.Error(1)
}

func (m *MockPlaceStore) Delete(ctx context.Context, placeID string) error {
	args := m.Called(ctx, placeID)
	return args.Error(0)
}

func strPtr(s string) *string   { return &s }
func fltPtr(f float64) *float64 { return &f }

func zurichRequest(birthTime *string) domain.ComputeRequest {
	return domain.ComputeRequest{
		Language:  domain.LanguageDE,
		PlanTier:  domain.PlanBase,
		BirthDate: "1990-06-01",
		BirthTime: birthTime,
		BirthPlace: domain.BirthPlace{
			PlaceID:     "ch-zurich",
			Name:        "Zürich",
			CountryCode: "CH",
			Lat:         fltPtr(47.3769),
			Lon:         fltPtr(8.5417),
			TZIANA:      "Europe/Zurich",
		},
		Name: "Ada",
	}
}

func newTestContractService(engine domain.EphemerisEngine) *ContractService {
	return NewContractService(engine, ContractConfig{
		CalcVersion:   "1.0.0",
		TZDataVersion: "tzdata:2024a",
	}, nil, zap.NewNop())
}

func TestContractService_ComputeFull(t *testing.T) {
	engine := ephemeris.NewMockEngine()
	s := newTestContractService(engine)

	c, err := s.Compute(context.Background(), zurichRequest(strPtr("12:30")))
	require.NoError(t, err)

	assert.Equal(t, domain.SchemaVersionV1, c.SchemaVersion)
	assert.Equal(t, "1.0.0", c.CalcVersion)
	assert.Equal(t, "tzdata:2024a", c.TZDataVersion)
	assert.Equal(t, "mock-ephe", c.EphemerisVersion)
	assert.True(t, c.HasBirthTime)
	assert.Equal(t, domain.ModeFull, c.Precision.Mode)
	assert.Equal(t, domain.ReasonBirthTimeProvided, c.Precision.Reason)
	assert.Len(t, c.FactsHash, 64)
	assert.NotNil(t, c.Errors)
	assert.Empty(t, c.Errors)

	f := c.Facts
	require.NotNil(t, f.Instant)
	assert.Nil(t, f.Interval)
	assert.Nil(t, f.Provisional)
	assert.Equal(t, "1990-06-01T10:30:00Z", f.Instant.UTC)
	assert.InDelta(t, 2448043.9375, f.Instant.JulianDayUT, 1e-9)
	assert.Equal(t, "mock-1", f.EngineVersion)

	require.Len(t, f.Bodies, len(domain.AllBodies()))
	assert.Equal(t, domain.SignAries, f.Bodies[domain.BodySun].Sign)
	assert.Equal(t, domain.SignCapricorn, f.Bodies[domain.BodyPluto].Sign)
	assert.False(t, f.Bodies[domain.BodyMoon].Retrograde)

	require.NotNil(t, f.Houses)
	assert.Equal(t, domain.HousePlacidus, f.Houses.System)
	assert.Len(t, f.Houses.Cusps, 12)
	assert.Equal(t, 1, engine.HousesCalls)

	for _, call := range engine.PositionCalls {
		assert.InDelta(t, 2448043.9375, call.JulianDayUT, 1e-9)
	}
}

func TestContractService_ComputeFullWithoutCoordinatesHasNoHouses(t *testing.T) {
	engine := ephemeris.NewMockEngine()
	s := newTestContractService(engine)

	req := zurichRequest(strPtr("12:30"))
	req.BirthPlace.Lat, req.BirthPlace.Lon = nil, nil

	c, err := s.Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, c.Facts.Houses)
	assert.Zero(t, engine.HousesCalls)
}

func TestContractService_ComputeDegraded(t *testing.T) {
	engine := ephemeris.NewMockEngine()
	s := newTestContractService(engine)

	c, err := s.Compute(context.Background(), zurichRequest(nil))
	require.NoError(t, err)

	assert.False(t, c.HasBirthTime)
	assert.Equal(t, domain.ModeDegraded, c.Precision.Mode)
	assert.Equal(t, domain.ReasonBirthTimeMissing, c.Precision.Reason)

	f := c.Facts
	assert.Nil(t, f.Instant)
	assert.Nil(t, f.Bodies)
	assert.Nil(t, f.Houses)
	require.NotNil(t, f.Interval)
	assert.Equal(t, "1990-05-31T22:00:00Z", f.Interval.StartUTC)
	assert.Equal(t, "1990-06-01T22:00:00Z", f.Interval.EndUTC)
	assert.InDelta(t, 1.0, f.Interval.JulianDayEndUT-f.Interval.JulianDayStartUT, 1e-6)

	require.Len(t, f.Provisional, len(domain.AllBodies()))
	for body, st := range f.Provisional {
		assert.True(t, st.Stability.Stable, "body %s", body)
		assert.Equal(t, st.SignStart, st.SignEnd)
	}
	assert.Len(t, engine.PositionCalls, 2*len(domain.AllBodies()))
	assert.Zero(t, engine.HousesCalls)
}

func TestContractService_EmptyBirthTimeDegrades(t *testing.T) {
	s := newTestContractService(ephemeris.NewMockEngine())

	c, err := s.Compute(context.Background(), zurichRequest(strPtr("")))
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDegraded, c.Precision.Mode)
}

func TestContractService_DegradedSignChange(t *testing.T) {
	engine := ephemeris.NewMockEngine()
	engine.PositionFunc = func(jd float64, body domain.Body) (domain.EclipticPosition, error) {
		if body == domain.BodyMoon && jd > 2448044.0 {
			return domain.EclipticPosition{Lon: 31}, nil
		}
		if body == domain.BodyMoon {
			return domain.EclipticPosition{Lon: 29.9}, nil
		}
		return domain.EclipticPosition{Lon: 100}, nil
	}
	s := newTestContractService(engine)

	c, err := s.Compute(context.Background(), zurichRequest(nil))
	require.NoError(t, err)

	moon := c.Facts.Provisional[domain.BodyMoon]
	assert.False(t, moon.Stability.Stable)
	assert.Equal(t, domain.ChangesWithinInterval, moon.Stability.Reason)
	assert.Equal(t, domain.SignAries, moon.SignStart)
	assert.Equal(t, domain.SignTaurus, moon.SignEnd)

	sun := c.Facts.Provisional[domain.BodySun]
	assert.True(t, sun.Stability.Stable)
	assert.Equal(t, domain.SignCancer, sun.SignStart)
}

func TestContractService_DegradedEvaluationErrorIsRecorded(t *testing.T) {
	engine := ephemeris.NewMockEngine()
	engine.PositionFunc = func(jd float64, body domain.Body) (domain.EclipticPosition, error) {
		if body == domain.BodyMars {
			return domain.EclipticPosition{}, ephemeris.ErrInvalidJulianDay
		}
		return domain.EclipticPosition{Lon: 200}, nil
	}
	s := newTestContractService(engine)

	c, err := s.Compute(context.Background(), zurichRequest(nil))
	require.NoError(t, err)

	mars := c.Facts.Provisional[domain.BodyMars]
	assert.False(t, mars.Stability.Stable)
	assert.Equal(t, domain.EvaluationError, mars.Stability.Reason)
	assert.Equal(t, "*errors.errorString", mars.Stability.ErrorKind)
	assert.True(t, c.Facts.Provisional[domain.BodyVenus].Stability.Stable)
}

func TestContractService_TimePipelineErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *domain.ComputeRequest)
		wantErr  error
		wantCode string
	}{
		{
			name:     "spring forward gap",
			mutate:   func(r *domain.ComputeRequest) { r.BirthDate = "2023-03-26"; r.BirthTime = strPtr("02:30") },
			wantErr:  timeline.ErrTimeNonExistent,
			wantCode: timeline.CodeTimeNonExistent,
		},
		{
			name:     "hour out of range",
			mutate:   func(r *domain.ComputeRequest) { r.BirthTime = strPtr("25:00") },
			wantErr:  timeline.ErrInvalidTimeFormat,
			wantCode: timeline.CodeInvalidTimeFormat,
		},
		{
			name:     "missing timezone",
			mutate:   func(r *domain.ComputeRequest) { r.BirthPlace.TZIANA = "" },
			wantErr:  timeline.ErrMissingTimezone,
			wantCode: timeline.CodeMissingTimezone,
		},
		{
			name:     "unknown timezone without time",
			mutate:   func(r *domain.ComputeRequest) { r.BirthPlace.TZIANA = "Mars/Olympus"; r.BirthTime = nil },
			wantErr:  timeline.ErrMissingTimezone,
			wantCode: timeline.CodeMissingTimezone,
		},
		{
			name:     "impossible date",
			mutate:   func(r *domain.ComputeRequest) { r.BirthDate = "1990-02-30" },
			wantErr:  timeline.ErrInvalidDate,
			wantCode: timeline.CodeInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := ephemeris.NewMockEngine()
			s := newTestContractService(engine)

			req := zurichRequest(strPtr("12:30"))
			tt.mutate(&req)

			c, err := s.Compute(context.Background(), req)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCode, timeline.Code(err))
			assert.Empty(t, engine.PositionCalls)
		})
	}
}

func TestContractService_EphemerisErrorIsNotSwallowed(t *testing.T) {
	engine := ephemeris.NewMockEngine()
	engine.PositionError = ephemeris.ErrUnknownBody
	s := newTestContractService(engine)

	c, err := s.Compute(context.Background(), zurichRequest(strPtr("12:30")))
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrEphemeris)
	assert.ErrorIs(t, err, ephemeris.ErrUnknownBody)

	engine = ephemeris.NewMockEngine()
	engine.HousesError = ephemeris.ErrInvalidCoordinates
	s = newTestContractService(engine)

	c, err = s.Compute(context.Background(), zurichRequest(strPtr("12:30")))
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ephemeris.ErrInvalidCoordinates)
}

func TestContractService_AmbiguousTimeUsesFirstOccurrence(t *testing.T) {
	s := newTestContractService(ephemeris.NewMockEngine())

	req := zurichRequest(strPtr("02:30"))
	req.BirthDate = "2023-10-29"

	c, err := s.Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "2023-10-29T00:30:00Z", c.Facts.Instant.UTC)
}

func TestContractService_HashIsDeterministic(t *testing.T) {
	s := newTestContractService(ephemeris.NewMockEngine())
	ctx := context.Background()

	for _, bt := range []*string{strPtr("12:30"), nil} {
		a, err := s.Compute(ctx, zurichRequest(bt))
		require.NoError(t, err)
		b, err := s.Compute(ctx, zurichRequest(bt))
		require.NoError(t, err)

		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("contracts differ (-first +second):\n%s", diff)
		}
	}
}

func TestContractService_HashIgnoresDisplayFields(t *testing.T) {
	s := newTestContractService(ephemeris.NewMockEngine())
	ctx := context.Background()

	base, err := s.Compute(ctx, zurichRequest(strPtr("12:30")))
	require.NoError(t, err)

	other := zurichRequest(strPtr("12:30"))
	other.Name = "Grace"
	other.Language = domain.LanguageFR
	other.PlanTier = domain.PlanPremium
	other.BirthPlace.Name = "Zurich"
	other.BirthPlace.CountryCode = "ch"

	c, err := s.Compute(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, base.FactsHash, c.FactsHash)
}

func TestContractService_HashCommitsToInputs(t *testing.T) {
	ctx := context.Background()
	s := newTestContractService(ephemeris.NewMockEngine())

	base, err := s.Compute(ctx, zurichRequest(strPtr("12:30")))
	require.NoError(t, err)

	mutations := map[string]func(r *domain.ComputeRequest){
		"birth time": func(r *domain.ComputeRequest) { r.BirthTime = strPtr("12:31") },
		"birth date": func(r *domain.ComputeRequest) { r.BirthDate = "1990-06-02" },
		"latitude":   func(r *domain.ComputeRequest) { r.BirthPlace.Lat = fltPtr(47.3770) },
		"place id":   func(r *domain.ComputeRequest) { r.BirthPlace.PlaceID = "ch-zurich-2" },
		"timezone":   func(r *domain.ComputeRequest) { r.BirthPlace.TZIANA = "Europe/Vienna" },
		"no time":    func(r *domain.ComputeRequest) { r.BirthTime = nil },
	}

	seen := map[string]string{"base": base.FactsHash}
	for name, mutate := range mutations {
		req := zurichRequest(strPtr("12:30"))
		mutate(&req)
		c, err := s.Compute(ctx, req)
		require.NoError(t, err, name)
		for prev, h := range seen {
			assert.NotEqual(t, h, c.FactsHash, "%s collides with %s", name, prev)
		}
		seen[name] = c.FactsHash
	}
}

func TestContractService_CalcVersionsCoexist(t *testing.T) {
	engine := ephemeris.NewMockEngine()
	v1 := NewContractService(engine, ContractConfig{CalcVersion: "1.0.0"}, nil, nil)
	v2 := NewContractService(engine, ContractConfig{CalcVersion: "1.1.0"}, nil, nil)
	ctx := context.Background()

	a, err := v1.Compute(ctx, zurichRequest(strPtr("12:30")))
	require.NoError(t, err)
	b, err := v2.Compute(ctx, zurichRequest(strPtr("12:30")))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", a.CalcVersion)
	assert.Equal(t, "1.1.0", b.CalcVersion)
	assert.Equal(t, a.Facts, b.Facts)
	assert.NotEqual(t, a.FactsHash, b.FactsHash)
	assert.Equal(t, "1.1.0", v2.CalcVersion())
}

func TestContractService_PlaceLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("fills timezone and coordinates", func(t *testing.T) {
		places := new(MockPlaceStore)
		places.On("GetByPlaceID", mock.Anything, "ch-bern").Return(&domain.Place{
			PlaceID: "ch-bern", Name: "Bern", CountryCode: "CH",
			Lat: 46.9480, Lon: 7.4474, TZIANA: "Europe/Zurich",
		}, nil)

		engine := ephemeris.NewMockEngine()
		s := newTestContractService(engine)
		s.SetPlaceStore(places)

		req := domain.ComputeRequest{
			BirthDate:  "1990-06-01",
			BirthTime:  strPtr("12:30"),
			BirthPlace: domain.BirthPlace{PlaceID: " ch-bern "},
		}
		c, err := s.Compute(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "1990-06-01T10:30:00Z", c.Facts.Instant.UTC)
		assert.NotNil(t, c.Facts.Houses)
		places.AssertExpectations(t)
	})

	t.Run("unknown place", func(t *testing.T) {
		places := new(MockPlaceStore)
		places.On("GetByPlaceID", mock.Anything, "xx-nowhere").Return(nil, store.ErrNotFound)

		s := newTestContractService(ephemeris.NewMockEngine())
		s.SetPlaceStore(places)

		_, err := s.Compute(ctx, domain.ComputeRequest{
			BirthDate:  "1990-06-01",
			BirthPlace: domain.BirthPlace{PlaceID: "xx-nowhere"},
		})
		assert.ErrorIs(t, err, ErrPlaceNotFound)
	})

	t.Run("store failure is propagated", func(t *testing.T) {
		boom := errors.New("connection refused")
		places := new(MockPlaceStore)
		places.On("GetByPlaceID", mock.Anything, "ch-bern").Return(nil, boom)

		s := newTestContractService(ephemeris.NewMockEngine())
		s.SetPlaceStore(places)

		_, err := s.Compute(ctx, domain.ComputeRequest{
			BirthDate:  "1990-06-01",
			BirthPlace: domain.BirthPlace{PlaceID: "ch-bern"},
		})
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrPlaceNotFound)
	})

	t.Run("explicit timezone skips the directory", func(t *testing.T) {
		places := new(MockPlaceStore)
		s := newTestContractService(ephemeris.NewMockEngine())
		s.SetPlaceStore(places)

		_, err := s.Compute(ctx, zurichRequest(strPtr("12:30")))
		require.NoError(t, err)
		places.AssertNotCalled(t, "GetByPlaceID", mock.Anything, mock.Anything)
	})
}

func TestContractService_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s := NewContractService(ephemeris.NewMockEngine(), ContractConfig{CalcVersion: "1.0.0"}, m, zap.NewNop())
	ctx := context.Background()

	_, err := s.Compute(ctx, zurichRequest(strPtr("12:30")))
	require.NoError(t, err)
	_, err = s.Compute(ctx, zurichRequest(nil))
	require.NoError(t, err)
	_, err = s.Compute(ctx, zurichRequest(strPtr("99:99")))
	require.Error(t, err)

	outcomes := gatherCounter(t, reg, "factengine_compute_outcomes_total", "outcome")
	assert.Equal(t, map[string]float64{
		"FULL":                         1,
		"DEGRADED":                     1,
		timeline.CodeInvalidTimeFormat: 1,
	}, outcomes)
}

func TestContractService_AnalyticEngine(t *testing.T) {
	s := newTestContractService(ephemeris.NewAnalyticEngine())

	c, err := s.Compute(context.Background(), zurichRequest(strPtr("12:30")))
	require.NoError(t, err)

	assert.Equal(t, ephemeris.AnalyticEphemerisVersion, c.EphemerisVersion)
	assert.Equal(t, domain.SignGemini, c.Facts.Bodies[domain.BodySun].Sign)
	assert.True(t, c.Facts.Bodies[domain.BodySaturn].Retrograde)
	require.NotNil(t, c.Facts.Houses)
	assert.Equal(t, c.Facts.Houses.Asc, c.Facts.Houses.Cusps[0])

	d, err := s.Compute(context.Background(), zurichRequest(nil))
	require.NoError(t, err)
	assert.True(t, d.Facts.Provisional[domain.BodySun].Stability.Stable)
	assert.Equal(t, domain.SignGemini, d.Facts.Provisional[domain.BodySun].SignStart)
}

func gatherCounter(t *testing.T, reg *prometheus.Registry, name, label string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label {
					values[l.GetValue()] = m.GetCounter().GetValue()
				}
			}
		}
	}
	return values
}

func TestContractService_RoundingStaysInRange(t *testing.T) {
	engine := ephemeris.NewMockEngine()
	engine.Positions = map[domain.Body]domain.EclipticPosition{
		domain.BodySun:  {Lon: 359.9999996, SpeedLon: 0.98},
		domain.BodyMoon: {Lon: 120, SpeedLon: -0.0000001},
	}
	engine.HousesResult = &domain.HouseCusps{
		System: domain.HousePlacidus,
		Cusps:  [12]float64{359.9999997, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330},
		Asc:    359.9999997,
		MC:     270,
	}
	s := newTestContractService(engine)

	c, err := s.Compute(context.Background(), zurichRequest(strPtr("12:30")))
	require.NoError(t, err)

	sun := c.Facts.Bodies[domain.BodySun]
	assert.Equal(t, 0.0, sun.Lon)
	assert.Equal(t, domain.SignAries, sun.Sign)

	// A speed that rounds away is neither negative zero nor retrograde.
	moon := c.Facts.Bodies[domain.BodyMoon]
	assert.False(t, math.Signbit(moon.SpeedLon))
	assert.False(t, moon.Retrograde)

	assert.Equal(t, 0.0, c.Facts.Houses.Asc)
	assert.Equal(t, 0.0, c.Facts.Houses.Cusps[0])

	raw, err := canonical.Marshal(c.Facts)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "-0,")
	assert.NotContains(t, string(raw), ":360")
}
