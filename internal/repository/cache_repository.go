package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/lightcurve-viewer-go/internal/database"
	"github.com/jengzang/lightcurve-viewer-go/internal/models"
)

// CacheRepository stores catalog payloads and cutouts in sqlite with a TTL
type CacheRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewCacheRepository creates a new cache repository. A ttl of zero disables reads.
func NewCacheRepository(db *sql.DB, ttl time.Duration) *CacheRepository {
	return &CacheRepository{db: db, ttl: ttl, now: time.Now}
}

// GetLightcurve returns the cached light-curve payload of a source, if fresh
func (r *CacheRepository) GetLightcurve(sourceID int64) ([]byte, bool, error) {
	if r.ttl <= 0 {
		return nil, false, nil
	}

	var payload []byte
	query := `SELECT payload FROM lightcurve_cache WHERE source_id = ? AND fetched_at >= ?`
	err := r.db.QueryRow(query, sourceID, r.cutoff()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read lightcurve cache: %w", err)
	}
	return payload, true, nil
}

// PutLightcurve stores the payload of a source
func (r *CacheRepository) PutLightcurve(sourceID int64, payload []byte) error {
	query := `
		INSERT INTO lightcurve_cache (source_id, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`
	if _, err := r.db.Exec(query, sourceID, payload, r.now().Unix()); err != nil {
		return fmt.Errorf("failed to write lightcurve cache: %w", err)
	}
	return nil
}

// GetCutout returns a cached cutout, including remembered misses
func (r *CacheRepository) GetCutout(pointID int64, format models.CutoutFormat) (models.Cutout, bool, error) {
	cutout := models.Cutout{PointID: pointID, Format: format}
	if r.ttl <= 0 {
		return cutout, false, nil
	}

	query := `SELECT content_type, data, not_found FROM cutout_cache
		WHERE point_id = ? AND ext = ? AND fetched_at >= ?`
	var notFound int
	err := r.db.QueryRow(query, pointID, string(format), r.cutoff()).Scan(&cutout.ContentType, &cutout.Data, &notFound)
	if errors.Is(err, sql.ErrNoRows) {
		return cutout, false, nil
	}
	if err != nil {
		return cutout, false, fmt.Errorf("failed to read cutout cache: %w", err)
	}
	cutout.NotFound = notFound != 0
	return cutout, true, nil
}

// PutCutout stores a cutout or a miss
func (r *CacheRepository) PutCutout(cutout models.Cutout) error {
	notFound := 0
	if cutout.NotFound {
		notFound = 1
	}
	query := `
		INSERT INTO cutout_cache (point_id, ext, content_type, data, not_found, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(point_id, ext) DO UPDATE SET
			content_type = excluded.content_type,
			data = excluded.data,
			not_found = excluded.not_found,
			fetched_at = excluded.fetched_at
	`
	_, err := r.db.Exec(query, cutout.PointID, string(cutout.Format), cutout.ContentType, cutout.Data, notFound, r.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write cutout cache: %w", err)
	}
	return nil
}

// Purge deletes expired rows from both tables and returns how many went
func (r *CacheRepository) Purge() (int64, error) {
	var removed int64
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"lightcurve_cache", "cutout_cache"} {
			res, err := tx.Exec(`DELETE FROM `+table+` WHERE fetched_at < ?`, r.cutoff())
			if err != nil {
				return fmt.Errorf("failed to purge %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			removed += n
		}
		return nil
	})
	return removed, err
}

// Stats returns the number of cached rows per table
func (r *CacheRepository) Stats() (lightcurves, cutouts int64, err error) {
	if err = r.db.QueryRow(`SELECT COUNT(*) FROM lightcurve_cache`).Scan(&lightcurves); err != nil {
		return 0, 0, fmt.Errorf("failed to count lightcurve cache: %w", err)
	}
	if err = r.db.QueryRow(`SELECT COUNT(*) FROM cutout_cache`).Scan(&cutouts); err != nil {
		return 0, 0, fmt.Errorf("failed to count cutout cache: %w", err)
	}
	return lightcurves, cutouts, nil
}

func (r *CacheRepository) cutoff() int64 {
	return r.now().Add(-r.ttl).Unix()
}
