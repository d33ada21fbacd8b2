package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/luraaya/factengine/internal/canonical"
	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/metrics"
	"github.com/luraaya/factengine/internal/store"
	"github.com/luraaya/factengine/internal/timeline"
	"go.uber.org/zap"
)

var (
	ErrPlaceNotFound = errors.New("birth place not found")
	ErrEphemeris     = errors.New("ephemeris computation failed")
)

// ContractConfig carries the process-wide values a contract is stamped with.
type ContractConfig struct {
	CalcVersion   string
	TZDataVersion string
	HouseSystem   domain.HouseSystem
}

// ContractService assembles FactsContracts. It holds no mutable state after
// construction and may be shared between requests.
type ContractService struct {
	engine  domain.EphemerisEngine
	places  domain.PlaceStore
	cfg     ContractConfig
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewContractService(engine domain.EphemerisEngine, cfg ContractConfig, m *metrics.Metrics, logger *zap.Logger) *ContractService {
	if cfg.HouseSystem == "" {
		cfg.HouseSystem = domain.HousePlacidus
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		engine:  engine,
		cfg:     cfg,
		metrics: m,
		logger:  logger,
	}
}

// SetPlaceStore enables place id lookups for requests without a timezone.
func (s *ContractService) SetPlaceStore(places domain.PlaceStore) {
	s.places = places
}

// CalcVersion returns the calculation version contracts are stamped with.
func (s *ContractService) CalcVersion() string {
	return s.cfg.CalcVersion
}

// Compute runs the time pipeline, gathers facts from the ephemeris engine,
// and commits them to a facts hash. Time pipeline errors are returned
// unchanged; no partial contract is ever returned.
func (s *ContractService) Compute(ctx context.Context, req domain.ComputeRequest) (*domain.FactsContract, error) {
	start := time.Now()
	c, err := s.compute(ctx, req)
	s.metrics.ObserveComputeLatency(time.Since(start))

	if err != nil {
		outcome := timeline.Code(err)
		if outcome == "" {
			outcome = "error"
		}
		s.metrics.IncrementOutcome(outcome)
		return nil, err
	}

	s.metrics.IncrementOutcome(string(c.Precision.Mode))
	s.logger.Debug("contract computed",
		zap.String("mode", string(c.Precision.Mode)),
		zap.String("facts_hash", c.FactsHash),
		zap.String("calc_version", c.CalcVersion),
	)
	return c, nil
}

func (s *ContractService) compute(ctx context.Context, req domain.ComputeRequest) (*domain.FactsContract, error) {
	place, err := s.resolvePlace(ctx, req.BirthPlace)
	if err != nil {
		return nil, err
	}
	date, err := timeline.ParseDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	meta := s.engine.Meta()
	facts := domain.Facts{
		EphemerisVersion: meta.EphemerisVersion,
		EngineVersion:    meta.EngineVersion,
	}

	var birthTime *string
	if req.HasBirthTime() {
		instant, err := timeline.ResolveInstant(date, *req.BirthTime, place.TZIANA)
		if err != nil {
			return nil, err
		}
		facts.Precision = Decide(instant.HasExactTime)
		if err := s.fullFacts(&facts, instant, place); err != nil {
			return nil, err
		}
		t := *req.BirthTime
		birthTime = &t
	} else {
		interval, err := timeline.ResolveInterval(date, place.TZIANA)
		if err != nil {
			return nil, err
		}
		facts.Precision = Decide(interval.HasExactTime)
		s.degradedFacts(&facts, interval)
	}

	normalized := domain.NormalizedInput{
		BirthDate: date.String(),
		BirthTime: birthTime,
		BirthPlace: domain.NormalizedPlace{
			PlaceID: place.PlaceID,
			Lat:     place.Lat,
			Lon:     place.Lon,
			TZIANA:  place.TZIANA,
		},
	}

	hash, err := canonical.HashFacts(normalized, s.cfg.CalcVersion, facts)
	if err != nil {
		return nil, fmt.Errorf("hash facts: %w", err)
	}

	return &domain.FactsContract{
		SchemaVersion:    domain.SchemaVersionV1,
		CalcVersion:      s.cfg.CalcVersion,
		EphemerisVersion: meta.EphemerisVersion,
		TZDataVersion:    s.cfg.TZDataVersion,
		FactsHash:        hash,
		HasBirthTime:     facts.Precision.HasExactTime,
		Precision:        facts.Precision,
		Facts:            facts,
		Signals:          []any{},
		Errors:           []domain.ContractError{},
	}, nil
}

// resolvePlace fills the timezone, and coordinates when absent, from the place
// directory. Requests that already carry a timezone never hit the directory.
func (s *ContractService) resolvePlace(ctx context.Context, p domain.BirthPlace) (domain.BirthPlace, error) {
	p.TZIANA = strings.TrimSpace(p.TZIANA)
	p.PlaceID = strings.TrimSpace(p.PlaceID)
	if p.TZIANA != "" || p.PlaceID == "" || s.places == nil {
		return p, nil
	}

	found, err := s.places.GetByPlaceID(ctx, p.PlaceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.IncrementPlaceLookup("miss")
			return p, fmt.Errorf("%w: %s", ErrPlaceNotFound, p.PlaceID)
		}
		s.metrics.IncrementPlaceLookup("error")
		return p, fmt.Errorf("lookup place %s: %w", p.PlaceID, err)
	}
	s.metrics.IncrementPlaceLookup("hit")

	p.TZIANA = found.TZIANA
	if !p.HasCoordinates() {
		lat, lon := found.Lat, found.Lon
		p.Lat, p.Lon = &lat, &lon
	}
	return p, nil
}

func (s *ContractService) fullFacts(facts *domain.Facts, instant timeline.ResolvedInstant, place domain.BirthPlace) error {
	facts.Instant = &domain.InstantFacts{
		UTC:         instant.UTC.Format(time.RFC3339),
		JulianDayUT: round6(instant.JulianDayUT),
	}

	facts.Bodies = make(map[domain.Body]domain.BodyPosition, len(domain.AllBodies()))
	for _, body := range domain.AllBodies() {
		p, err := s.engine.Position(instant.JulianDayUT, body)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrEphemeris, body, err)
		}
		lon, speed := roundDegrees(p.Lon), round6(p.SpeedLon)
		facts.Bodies[body] = domain.BodyPosition{
			Lon:        lon,
			Lat:        round6(p.Lat),
			SpeedLon:   speed,
			Sign:       domain.SignOf(lon),
			Retrograde: speed < 0,
		}
	}

	if !place.HasCoordinates() {
		return nil
	}
	h, err := s.engine.Houses(instant.JulianDayUT, *place.Lat, *place.Lon, s.cfg.HouseSystem)
	if err != nil {
		return fmt.Errorf("%w: houses: %w", ErrEphemeris, err)
	}
	cusps := make([]float64, len(h.Cusps))
	for i, c := range h.Cusps {
		cusps[i] = roundDegrees(c)
	}
	facts.Houses = &domain.HouseFacts{
		System: h.System,
		Cusps:  cusps,
		Asc:    roundDegrees(h.Asc),
		MC:     roundDegrees(h.MC),
	}
	return nil
}

// degradedFacts commits only what survives an unknown birth minute: the sign
// of each body at both ends of the local day and whether it changes.
func (s *ContractService) degradedFacts(facts *domain.Facts, interval timeline.ResolvedInterval) {
	facts.Interval = &domain.IntervalFacts{
		StartUTC:         interval.StartUTC.Format(time.RFC3339),
		EndUTC:           interval.EndUTC.Format(time.RFC3339),
		JulianDayStartUT: round6(interval.JulianDayStartUT),
		JulianDayEndUT:   round6(interval.JulianDayEndUT),
	}

	facts.Provisional = make(map[domain.Body]domain.BodyStability, len(domain.AllBodies()))
	for _, body := range domain.AllBodies() {
		atStart := &bodySign{engine: s.engine, jd: interval.JulianDayStartUT, body: body}
		atEnd := &bodySign{engine: s.engine, jd: interval.JulianDayEndUT, body: body}
		result := EvaluateStability[domain.Sign](atStart, atEnd)
		if !result.Stable && result.Reason == domain.EvaluationError {
			s.logger.Warn("sign evaluation failed",
				zap.String("body", string(body)),
				zap.String("kind", result.ErrorKind),
			)
		}
		facts.Provisional[body] = domain.BodyStability{
			SignStart: atStart.last,
			SignEnd:   atEnd.last,
			Stability: result,
		}
	}
}

// bodySign is the zodiac sign of a body at one Julian Day.
type bodySign struct {
	engine domain.EphemerisEngine
	jd     float64
	body   domain.Body
	last   domain.Sign
}

func (b *bodySign) Evaluate() (domain.Sign, error) {
	p, err := b.engine.Position(b.jd, b.body)
	if err != nil {
		return "", err
	}
	b.last = domain.SignOf(roundDegrees(p.Lon))
	return b.last, nil
}

// round6 keeps hashed floats stable against last-bit differences between
// platforms. Negative zero collapses to zero.
func round6(x float64) float64 {
	r := math.Round(x*1e6) / 1e6
	if r == 0 {
		return 0
	}
	return r
}

// roundDegrees rounds an ecliptic longitude and keeps it in [0, 360).
func roundDegrees(x float64) float64 {
	return domain.NormalizeDegrees(round6(x))
}
