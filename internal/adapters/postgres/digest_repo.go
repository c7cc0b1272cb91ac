package postgres

import (
	"context"

	"github.com/camier/spots/internal/core/domain"
)

// DigestRepo implements ports.ExposureDigestRepository.
type DigestRepo struct {
	db *DB
}

func NewDigestRepo(db *DB) *DigestRepo {
	return &DigestRepo{db: db}
}

func (r *DigestRepo) Upsert(ctx context.Context, d *domain.ExposureDigest) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO exposure_digests (spot_id, date, sun_hours, first_sun, last_sun, computed_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (spot_id, date) DO UPDATE
		SET sun_hours = EXCLUDED.sun_hours,
		    first_sun = EXCLUDED.first_sun,
		    last_sun = EXCLUDED.last_sun,
		    computed_at = now()
	`, d.SpotID, d.Date, d.SunHours, d.FirstSun, d.LastSun)
	return err
}

func (r *DigestRepo) Get(ctx context.Context, spotID, date string) (*domain.ExposureDigest, error) {
	d := &domain.ExposureDigest{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, spot_id, to_char(date, 'YYYY-MM-DD'), sun_hours, first_sun, last_sun, computed_at
		FROM exposure_digests WHERE spot_id = $1 AND date = $2
	`, spotID, date).Scan(&d.ID, &d.SpotID, &d.Date, &d.SunHours, &d.FirstSun, &d.LastSun, &d.ComputedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DigestRepo) Delete(ctx context.Context, spotID, date string) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM exposure_digests WHERE spot_id = $1 AND date = $2
	`, spotID, date)
	return err
}
