package assets

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// Catalog stores animation documents in a SQLite database, one row per
// asset path. It implements Source so a Loader can read straight from it.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (creating if needed) the catalog at dbPath.
func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on catalog: %w", err)
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS animations (
			path TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			mtime INTEGER NOT NULL
		);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Put validates data as an animation document and stores it under path.
func (c *Catalog) Put(path string, data []byte) error {
	if _, err := Decode(path, data); err != nil {
		return &LoadError{Path: path, Err: err}
	}
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO animations (path, record, mtime) VALUES (?, ?, ?)",
		path, string(data), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", path, err)
	}
	return nil
}

// ReadAsset implements Source.
func (c *Catalog) ReadAsset(path string) ([]byte, error) {
	var raw string
	err := c.db.QueryRow("SELECT record FROM animations WHERE path = ?", path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &os.PathError{Op: "read", Path: path, Err: os.ErrNotExist}
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	return []byte(raw), nil
}

// Entry is one catalog row without its payload.
type Entry struct {
	Path    string
	Size    int
	ModTime time.Time
}

// Stream iterates over all stored documents in path order, one at a time.
func (c *Catalog) Stream(fn func(path string, raw []byte) error) error {
	rows, err := c.db.Query("SELECT path, record FROM animations ORDER BY path")
	if err != nil {
		return fmt.Errorf("query animations: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	for rows.Next() {
		var path, raw string
		if err := rows.Scan(&path, &raw); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		if err := fn(path, []byte(raw)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// List returns every stored path with its size and modification time.
func (c *Catalog) List() ([]Entry, error) {
	rows, err := c.db.Query("SELECT path, length(record), mtime FROM animations ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("query animations: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var out []Entry
	for rows.Next() {
		var (
			e     Entry
			mtime int64
		)
		if err := rows.Scan(&e.Path, &e.Size, &mtime); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.ModTime = time.Unix(mtime, 0)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}
