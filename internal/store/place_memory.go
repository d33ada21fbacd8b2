package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/luraaya/factengine/internal/domain"
)

// MemoryPlaceStore is a PlaceStore for deployments without Postgres. The
// server seeds it from a YAML file; tests use it directly.
type MemoryPlaceStore struct {
	mu     sync.RWMutex
	places map[string]domain.Place
}

func NewMemoryPlaceStore() *MemoryPlaceStore {
	return &MemoryPlaceStore{places: make(map[string]domain.Place)}
}

func (s *MemoryPlaceStore) GetByPlaceID(_ context.Context, placeID string) (*domain.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.places[placeID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryPlaceStore) Upsert(_ context.Context, p *domain.Place) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.places[p.PlaceID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.places[p.PlaceID] = *p
	return nil
}

func (s *MemoryPlaceStore) List(_ context.Context, limit int) ([]domain.Place, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	places := make([]domain.Place, 0, len(s.places))
	for _, p := range s.places {
		places = append(places, p)
	}
	sort.Slice(places, func(i, j int) bool { return places[i].PlaceID < places[j].PlaceID })
	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

func (s *MemoryPlaceStore) Delete(_ context.Context, placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.places[placeID]; !ok {
		return ErrNotFound
	}
	delete(s.places, placeID)
	return nil
}
