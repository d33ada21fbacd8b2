package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luraaya/factengine/internal/domain"
)

type PlaceStore struct {
	db *pgxpool.Pool
}

func NewPlaceStore(db *pgxpool.Pool) *PlaceStore {
	return &PlaceStore{db: db}
}

func (s *PlaceStore) GetByPlaceID(ctx context.Context, placeID string) (*domain.Place, error) {
	p := &domain.Place{}
	err := s.db.QueryRow(ctx,
		`SELECT place_id, name, country_code, lat, lon, tz_iana, created_at, updated_at
		 FROM places WHERE place_id = $1`,
		placeID,
	).Scan(&p.PlaceID, &p.Name, &p.CountryCode, &p.Lat, &p.Lon, &p.TZIANA, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *PlaceStore) Upsert(ctx context.Context, p *domain.Place) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO places (place_id, name, country_code, lat, lon, tz_iana)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (place_id) DO UPDATE SET
		    name = EXCLUDED.name,
		    country_code = EXCLUDED.country_code,
		    lat = EXCLUDED.lat,
		    lon = EXCLUDED.lon,
		    tz_iana = EXCLUDED.tz_iana,
		    updated_at = NOW()
		 RETURNING created_at, updated_at`,
		p.PlaceID, p.Name, p.CountryCode, p.Lat, p.Lon, p.TZIANA,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return ErrInvalid
		}
		return err
	}
	return nil
}

func (s *PlaceStore) List(ctx context.Context, limit int) ([]domain.Place, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(ctx,
		`SELECT place_id, name, country_code, lat, lon, tz_iana, created_at, updated_at
		 FROM places ORDER BY place_id
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		var p domain.Place
		if err := rows.Scan(&p.PlaceID, &p.Name, &p.CountryCode, &p.Lat, &p.Lon, &p.TZIANA, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

func (s *PlaceStore) Delete(ctx context.Context, placeID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM places WHERE place_id = $1`, placeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
