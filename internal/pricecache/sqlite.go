package pricecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"FundRadar/internal/model"
)

// DefaultTTL bounds how long a cached response is served.
const DefaultTTL = 12 * time.Hour

const dateLayout = "2006-01-02"

// SQLiteCache stores provider responses in SQLite, one fetch_log row per
// (symbol, range) and its points in price_points.
type SQLiteCache struct {
	db  *sql.DB
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache opens (or creates) the database and runs migrations.
// A ttl of zero or less uses DefaultTTL.
func NewSQLiteCache(dbPath string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &SQLiteCache{db: db, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Dur("ttl", ttl).Msg("price cache opened")
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT NOT NULL,
			range_start TEXT NOT NULL,
			range_end   TEXT NOT NULL,
			fetched_at  INTEGER NOT NULL,
			UNIQUE(symbol, range_start, range_end)
		)`,
		`CREATE TABLE IF NOT EXISTS price_points (
			fetch_id  INTEGER NOT NULL REFERENCES fetch_log(id) ON DELETE CASCADE,
			day       TEXT NOT NULL,
			adj_close REAL NOT NULL,
			PRIMARY KEY (fetch_id, day)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_at ON fetch_log(fetched_at)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Get returns the cached points for symbol and rng when a fresh entry exists.
func (c *SQLiteCache) Get(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		id        int64
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT id, fetched_at FROM fetch_log WHERE symbol = ? AND range_start = ? AND range_end = ?`,
		symbol, rng.Start.Format(dateLayout), rng.End.Format(dateLayout),
	).Scan(&id, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query fetch_log: %w", err)
	}
	if c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		return nil, false, nil
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT day, adj_close FROM price_points WHERE fetch_id = ? ORDER BY day`, id)
	if err != nil {
		return nil, false, fmt.Errorf("query price_points: %w", err)
	}
	defer rows.Close()

	var pts []model.PricePoint
	for rows.Next() {
		var (
			day string
			px  float64
		)
		if err := rows.Scan(&day, &px); err != nil {
			return nil, false, fmt.Errorf("scan price point: %w", err)
		}
		d, err := time.Parse(dateLayout, day)
		if err != nil {
			return nil, false, fmt.Errorf("parse day %q: %w", day, err)
		}
		pts = append(pts, model.PricePoint{Date: d, AdjClose: px})
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return pts, len(pts) > 0, nil
}

// Put replaces the cached entry for symbol and rng.
func (c *SQLiteCache) Put(ctx context.Context, symbol string, rng model.DateRange, points []model.PricePoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	start, end := rng.Start.Format(dateLayout), rng.End.Format(dateLayout)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM price_points WHERE fetch_id IN
			(SELECT id FROM fetch_log WHERE symbol = ? AND range_start = ? AND range_end = ?)`,
		symbol, start, end); err != nil {
		return fmt.Errorf("clear points: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM fetch_log WHERE symbol = ? AND range_start = ? AND range_end = ?`,
		symbol, start, end); err != nil {
		return fmt.Errorf("clear fetch_log: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO fetch_log (symbol, range_start, range_end, fetched_at) VALUES (?,?,?,?)`,
		symbol, start, end, c.now().Unix())
	if err != nil {
		return fmt.Errorf("insert fetch_log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO price_points (fetch_id, day, adj_close) VALUES (?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare points: %w", err)
	}
	defer stmt.Close()
	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, id, p.Date.UTC().Format(dateLayout), p.AdjClose); err != nil {
			return fmt.Errorf("insert point: %w", err)
		}
	}
	return tx.Commit()
}

func (c *SQLiteCache) Close() error {
	log.Info().Msg("closing price cache")
	return c.db.Close()
}
