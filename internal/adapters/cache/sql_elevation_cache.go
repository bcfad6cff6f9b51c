package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLElevationCache is a Postgres-backed cache mapping coordinate keys to elevations.
// Keys are expected to come from domain.Coordinates.Key.
type SQLElevationCache struct {
	DB *sql.DB
}

func NewSQLElevationCache(db *sql.DB) *SQLElevationCache {
	return &SQLElevationCache{DB: db}
}

// Fetch cached elevations for the given keys.
func (s *SQLElevationCache) GetMany(ctx context.Context, keys []string) (map[string]float64, error) {
	if s.DB == nil {
		return nil, errors.New("elevation cache: db is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	q := `
	SELECT coord_key, elevation_m
    FROM elevation_cache
    WHERE coord_key = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get elevation cache: query elevation_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(uniq))
	for rows.Next() {
		var key string
		var elevation float64
		if err := rows.Scan(&key, &elevation); err != nil {
			return nil, fmt.Errorf("get elevation cache: scan rows: %w", err)
		}
		out[key] = elevation
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get elevation cache: row iteration: %w", err)
	}

	return out, nil
}

// Store key -> elevation mappings in the cache.
func (s *SQLElevationCache) PutMany(ctx context.Context, elevations map[string]float64) error {
	if s.DB == nil {
		return errors.New("elevation cache: db is nil")
	}

	if len(elevations) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert elevation cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO elevation_cache (coord_key, elevation_m)
    VALUES ($1, $2)
	ON CONFLICT (coord_key) DO UPDATE
	SET elevation_m = EXCLUDED.elevation_m,
		fetched_at = now();
	`)
	if err != nil {
		return fmt.Errorf("insert elevation cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for key, elevation := range elevations {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("insert elevation cache: empty coordinate key")
		}

		if _, err := stmt.ExecContext(ctx, key, elevation); err != nil {
			return fmt.Errorf("insert elevation cache key=%q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert elevation cache commit: %w", err)
	}

	return nil
}

func uniqueKeys(keys []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
