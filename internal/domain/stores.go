package domain

import (
	"context"
	"time"
)

// Place is a resolved birth place from the place directory.
type Place struct {
	PlaceID     string    `json:"place_id" yaml:"place_id"`
	Name        string    `json:"name" yaml:"name"`
	CountryCode string    `json:"country_code" yaml:"country_code"`
	Lat         float64   `json:"lat" yaml:"lat"`
	Lon         float64   `json:"lon" yaml:"lon"`
	TZIANA      string    `json:"tz_iana" yaml:"tz_iana"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

// PlaceStore is the place directory used when a request carries a place id
// but no timezone.
type PlaceStore interface {
	GetByPlaceID(ctx context.Context, placeID string) (*Place, error)
	Upsert(ctx context.Context, p *Place) error
	List(ctx context.Context, limit int) ([]Place, error)
	Delete(ctx context.Context, placeID string) error
}

// EphemerisEngine computes body positions and house cusps. Implementations
// must be safe for concurrent use and must not depend on anything but their
// arguments and immutable initialization state.
type EphemerisEngine interface {
	Meta() EphemerisMeta
	Position(jdUT float64, body Body) (EclipticPosition, error)
	Houses(jdUT, lat, lon float64, system HouseSystem) (HouseCusps, error)
}
