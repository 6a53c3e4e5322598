package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Cache mirrors the last successfully loaded ledger view into a local sqlite
// file, so a process restarted while the remote document is unreachable still
// has a dedupe baseline.
type Cache struct {
	db *sql.DB
}

func OpenCache(path string) (*Cache, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS ledger_snapshot (
  url TEXT PRIMARY KEY,
  published_at TEXT NOT NULL
);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Put replaces the cached snapshot wholesale.
func (c *Cache) Put(ctx context.Context, snap Snapshot) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_snapshot;`); err != nil {
		return err
	}
	for url, ts := range snap {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_snapshot(url, published_at) VALUES(?,?);`,
			url, ts.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (c *Cache) Get(ctx context.Context) (Snapshot, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT url, published_at FROM ledger_snapshot;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := Snapshot{}
	for rows.Next() {
		var url, tsStr string
		if err := rows.Scan(&url, &tsStr); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			continue
		}
		out[url] = ts
	}
	return out, rows.Err()
}
