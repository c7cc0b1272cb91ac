package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/camier/spots/internal/core/domain"
)

// SpotRepo implements ports.SpotRepository with pgx.
type SpotRepo struct {
	db *DB
}

// NewSpotRepo creates a new SpotRepo.
func NewSpotRepo(db *DB) *SpotRepo {
	return &SpotRepo{db: db}
}

// Upsert inserts or updates a single spot, keyed by slug.
func (r *SpotRepo) Upsert(ctx context.Context, s *domain.Spot) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO spots (slug, name, type, location, elevation_m, department, description, sun_score, tags, metadata)
		VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name, type = EXCLUDED.type,
		    location = EXCLUDED.location,
		    elevation_m = EXCLUDED.elevation_m,
		    department = EXCLUDED.department,
		    description = EXCLUDED.description,
		    sun_score = COALESCE(EXCLUDED.sun_score, spots.sun_score),
		    tags = EXCLUDED.tags,
		    metadata = EXCLUDED.metadata
	`, s.Slug, s.Name, s.Type, s.Location.Lon, s.Location.Lat,
		s.ElevationM, s.Department, s.Description, s.SunScore, s.Tags, s.Metadata)
	return err
}

// UpsertBatch inserts many spots using pgx.Batch.
func (r *SpotRepo) UpsertBatch(ctx context.Context, spots []domain.Spot) error {
	batch := &pgx.Batch{}
	for _, s := range spots {
		batch.Queue(`
			INSERT INTO spots (slug, name, type, location, elevation_m, department, description, sun_score, tags, metadata)
			VALUES ($1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (slug) DO UPDATE
			SET name = EXCLUDED.name, location = EXCLUDED.location,
			    elevation_m = EXCLUDED.elevation_m
		`, s.Slug, s.Name, s.Type, s.Location.Lon, s.Location.Lat,
			s.ElevationM, s.Department, s.Description, s.SunScore, s.Tags, s.Metadata)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range spots {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a spot by UUID.
func (r *SpotRepo) GetByID(ctx context.Context, id string) (*domain.Spot, error) {
	var s domain.Spot
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, slug, name, type,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       elevation_m, department, COALESCE(description, ''),
		       sun_score, COALESCE(tags, '{}'), COALESCE(metadata, '{}'), created_at
		FROM spots WHERE id = $1
	`, id).Scan(
		&s.ID, &s.Slug, &s.Name, &s.Type,
		&s.Location.Lat, &s.Location.Lon,
		&s.ElevationM, &s.Department, &s.Description,
		&s.SunScore, &s.Tags, &s.Metadata, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindNearby returns spots within radiusMeters using PostGIS ST_DWithin.
func (r *SpotRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Spot, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, slug, name, type,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       elevation_m, department, sun_score, COALESCE(tags, '{}'),
		       ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) as distance,
		       created_at
		FROM spots
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spots []domain.Spot
	for rows.Next() {
		var s domain.Spot
		var dist float64
		if err := rows.Scan(
			&s.ID, &s.Slug, &s.Name, &s.Type,
			&s.Location.Lat, &s.Location.Lon,
			&s.ElevationM, &s.Department, &s.SunScore, &s.Tags,
			&dist, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		s.Distance = &dist
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

// Search performs fuzzy + full-text search on spot names, optionally ranking
// by proximity to a reference point.
func (r *SpotRepo) Search(ctx context.Context, query string, near *domain.GeoPoint, limit int) ([]domain.Spot, error) {
	var rows pgx.Rows
	var err error
	if near != nil {
		rows, err = r.db.Pool.Query(ctx, `
			SELECT id, slug, name, type,
			       ST_Y(location::geometry) as lat,
			       ST_X(location::geometry) as lon,
			       elevation_m, department, sun_score, created_at,
			       ST_Distance(location, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography) as distance
			FROM spots
			WHERE name_vector @@ plainto_tsquery('french', $1)
			   OR name %> $1
			ORDER BY distance
			LIMIT $4
		`, query, near.Lon, near.Lat, limit)
	} else {
		rows, err = r.db.Pool.Query(ctx, `
			SELECT id, slug, name, type,
			       ST_Y(location::geometry) as lat,
			       ST_X(location::geometry) as lon,
			       elevation_m, department, sun_score, created_at,
			       similarity(name, $1) as sim
			FROM spots
			WHERE name_vector @@ plainto_tsquery('french', $1)
			   OR name %> $1
			ORDER BY sim DESC
			LIMIT $2
		`, query, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spots []domain.Spot
	for rows.Next() {
		var s domain.Spot
		var rank float64
		if err := rows.Scan(
			&s.ID, &s.Slug, &s.Name, &s.Type,
			&s.Location.Lat, &s.Location.Lon,
			&s.ElevationM, &s.Department, &s.SunScore, &s.CreatedAt,
			&rank,
		); err != nil {
			return nil, err
		}
		if near != nil {
			d := rank
			s.Distance = &d
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

// ListByDepartment returns spots in an INSEE department, best sun first.
func (r *SpotRepo) ListByDepartment(ctx context.Context, department string, limit int) ([]domain.Spot, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, slug, name, type,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       elevation_m, department, sun_score, COALESCE(tags, '{}'), created_at
		FROM spots
		WHERE department = $1
		ORDER BY sun_score DESC NULLS LAST, name
		LIMIT $2
	`, department, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSpots(rows)
}

// ListAll returns the full catalog, used by the digest worker.
func (r *SpotRepo) ListAll(ctx context.Context) ([]domain.Spot, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, slug, name, type,
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       elevation_m, department, sun_score, COALESCE(tags, '{}'), created_at
		FROM spots
		ORDER BY department, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSpots(rows)
}

func scanSpots(rows pgx.Rows) ([]domain.Spot, error) {
	var spots []domain.Spot
	for rows.Next() {
		var s domain.Spot
		if err := rows.Scan(
			&s.ID, &s.Slug, &s.Name, &s.Type,
			&s.Location.Lat, &s.Location.Lon,
			&s.ElevationM, &s.Department, &s.SunScore, &s.Tags, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}
