package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/luraaya/factengine/internal/domain"
	"github.com/luraaya/factengine/internal/store"
	"github.com/luraaya/factengine/internal/timeline"
	"go.uber.org/zap"
)

var ErrInvalidPlace = errors.New("invalid place")

// PlaceService maintains the place directory consulted by ContractService.
type PlaceService struct {
	store  domain.PlaceStore
	logger *zap.Logger
}

func NewPlaceService(s domain.PlaceStore, logger *zap.Logger) *PlaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlaceService{store: s, logger: logger}
}

func (s *PlaceService) Get(ctx context.Context, placeID string) (*domain.Place, error) {
	p, err := s.store.GetByPlaceID(ctx, placeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPlaceNotFound, placeID)
		}
		return nil, err
	}
	return p, nil
}

func (s *PlaceService) List(ctx context.Context, limit int) ([]domain.Place, error) {
	places, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if places == nil {
		places = []domain.Place{}
	}
	return places, nil
}

// Save validates and stores p. The timezone must load, since a place whose
// zone cannot be resolved would fail every compute request that names it.
func (s *PlaceService) Save(ctx context.Context, p *domain.Place) error {
	p.PlaceID = strings.TrimSpace(p.PlaceID)
	p.TZIANA = strings.TrimSpace(p.TZIANA)
	if err := ValidatePlace(p); err != nil {
		return err
	}

	if err := s.store.Upsert(ctx, p); err != nil {
		if errors.Is(err, store.ErrInvalid) {
			return fmt.Errorf("%w: %v", ErrInvalidPlace, err)
		}
		return err
	}
	return nil
}

func (s *PlaceService) Delete(ctx context.Context, placeID string) error {
	if err := s.store.Delete(ctx, placeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrPlaceNotFound, placeID)
		}
		return err
	}
	return nil
}

// Import saves every place and stops at the first failure. It returns the
// number of places written.
func (s *PlaceService) Import(ctx context.Context, places []domain.Place) (int, error) {
	for i := range places {
		if err := s.Save(ctx, &places[i]); err != nil {
			return i, fmt.Errorf("place %d (%s): %w", i, places[i].PlaceID, err)
		}
	}
	s.logger.Info("places imported", zap.Int("count", len(places)))
	return len(places), nil
}

// ImportFile loads a YAML place list and imports it through Import, so every
// entry is validated. When optional is set a missing file imports nothing.
func (s *PlaceService) ImportFile(ctx context.Context, path string, optional bool) (int, error) {
	places, err := store.LoadPlacesFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("places file not found", zap.String("path", path))
			return 0, nil
		}
		return 0, err
	}
	return s.Import(ctx, places)
}

// ValidatePlace rejects directory entries the time pipeline could not use.
func ValidatePlace(p *domain.Place) error {
	if p.PlaceID == "" {
		return fmt.Errorf("%w: place_id is required", ErrInvalidPlace)
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidPlace)
	}
	if _, err := timeline.LoadZone(p.TZIANA); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlace, err)
	}
	return nil
}
