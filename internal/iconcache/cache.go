package iconcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"urldeck/internal/config"
	"urldeck/internal/icon"
)

// Cache is the SQLite-backed icon cache.
type Cache struct {
	db   *sql.DB
	path string
	ttl  time.Duration
	now  func() time.Time
}

// Stats summarises cache contents.
type Stats struct {
	Entries  int
	Bytes    int64
	Expired  int
	Oldest   time.Time
	Newest   time.Time
	ByFormat map[string]int
}

// Open initializes or connects to the cache database at path. A zero ttl
// keeps entries forever.
func Open(path string, ttl time.Duration) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{db: db, path: path, ttl: ttl, now: time.Now}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// OpenFromConfig opens the cache configured in cfg.
func OpenFromConfig(cfg *config.Config) (*Cache, error) {
	return Open(cfg.CacheDBPath(), cfg.CacheTTL())
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Record is a cached icon with its fetch time.
type Record struct {
	Icon      icon.Icon
	FetchedAt time.Time
	Expired   bool
}

// Get returns the cached record for target whether or not it has expired.
func (c *Cache) Get(ctx context.Context, target string) (Record, bool, error) {
	var (
		rec       Record
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT format, width, height, data, fetched_at FROM icons WHERE target = ?",
		target,
	).Scan(&rec.Icon.Format, &rec.Icon.Width, &rec.Icon.Height, &rec.Icon.Data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("lookup icon: %w", err)
	}
	rec.FetchedAt = time.Unix(0, fetchedAt)
	rec.Expired = c.expired(rec.FetchedAt)
	return rec, true, nil
}

// Lookup returns the fresh cached icon for target.
func (c *Cache) Lookup(ctx context.Context, target string) (icon.Icon, bool, error) {
	rec, ok, err := c.Get(ctx, target)
	if err != nil || !ok || rec.Expired {
		return icon.Icon{}, false, err
	}
	return rec.Icon, true, nil
}

// Store records a fetched icon for target. Placeholders are ignored.
func (c *Cache) Store(ctx context.Context, target string, ic icon.Icon) error {
	if ic.Placeholder || len(ic.Data) == 0 {
		return nil
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO icons (target, format, width, height, data, fetched_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(target) DO UPDATE SET
             format = excluded.format,
             width = excluded.width,
             height = excluded.height,
             data = excluded.data,
             fetched_at = excluded.fetched_at`,
		target, ic.Format, ic.Width, ic.Height, ic.Data, c.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("store icon: %w", err)
	}
	return nil
}

// Clear removes every cached icon and returns the number removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM icons")
	if err != nil {
		return 0, fmt.Errorf("clear icons: %w", err)
	}
	return res.RowsAffected()
}

// Prune removes expired icons and returns the number removed. It is a no-op
// without a TTL.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	res, err := c.db.ExecContext(ctx, "DELETE FROM icons WHERE fetched_at < ?", c.cutoff())
	if err != nil {
		return 0, fmt.Errorf("prune icons: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports counts, sizes and age range of cached icons.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByFormat: make(map[string]int)}

	var oldest, newest sql.NullInt64
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(SUM(LENGTH(data)), 0), MIN(fetched_at), MAX(fetched_at) FROM icons",
	).Scan(&stats.Entries, &stats.Bytes, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("icon stats: %w", err)
	}
	if oldest.Valid {
		stats.Oldest = time.Unix(0, oldest.Int64)
	}
	if newest.Valid {
		stats.Newest = time.Unix(0, newest.Int64)
	}

	if c.ttl > 0 {
		if err := c.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM icons WHERE fetched_at < ?", c.cutoff(),
		).Scan(&stats.Expired); err != nil {
			return Stats{}, fmt.Errorf("expired icon count: %w", err)
		}
	}

	rows, err := c.db.QueryContext(ctx, "SELECT format, COUNT(1) FROM icons GROUP BY format")
	if err != nil {
		return Stats{}, fmt.Errorf("icon formats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			format string
			count  int
		)
		if err := rows.Scan(&format, &count); err != nil {
			return Stats{}, fmt.Errorf("scan icon format: %w", err)
		}
		stats.ByFormat[format] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate icon formats: %w", err)
	}
	return stats, nil
}

func (c *Cache) expired(fetchedAt time.Time) bool {
	return c.ttl > 0 && c.now().Sub(fetchedAt) > c.ttl
}

func (c *Cache) cutoff() int64 {
	return c.now().Add(-c.ttl).UnixNano()
}
