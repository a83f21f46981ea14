// Package store provides a SQLite-backed cache for parsed workbook data.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/clubsmell/fragdash/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed workbook caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size of a workbook.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
	ParsedAt  time.Time
}

// Matches reports whether the cached parse is still valid for a file on disk.
func (fi FileInfo) Matches(mtimeNs, sizeBytes int64) bool {
	return fi.MtimeNs == mtimeNs && fi.SizeBytes == sizeBytes
}

// Snapshot is everything parsed from one workbook.
type Snapshot struct {
	Catalog []model.Fragrance
	Records []model.UsageRecord
	Periods []string
	Issues  []string
}

// Tracked returns the file info recorded for a workbook path.
func (c *Cache) Tracked(path string) (FileInfo, bool, error) {
	var (
		fi     FileInfo
		parsed string
	)
	err := c.db.QueryRow("SELECT mtime_ns, size_bytes, parsed_at FROM workbook_tracker WHERE path = ?", path).
		Scan(&fi.MtimeNs, &fi.SizeBytes, &parsed)
	if errors.Is(err, sql.ErrNoRows) {
		return FileInfo{}, false, nil
	}
	if err != nil {
		return FileInfo{}, false, err
	}
	fi.ParsedAt, _ = time.Parse(time.RFC3339, parsed)
	return fi, true, nil
}

// SaveWorkbook replaces the cached contents of a workbook in one transaction.
func (c *Cache) SaveWorkbook(path string, mtimeNs, sizeBytes int64, snap Snapshot) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascades to every table keyed by workbook.
	if _, err := tx.Exec("DELETE FROM workbook_tracker WHERE path = ?", path); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO workbook_tracker (path, mtime_ns, size_bytes, parsed_at)
		VALUES (?, ?, ?, ?)`, path, mtimeNs, sizeBytes, now)
	if err != nil {
		return err
	}

	for i, f := range snap.Catalog {
		_, err = tx.Exec(`INSERT INTO fragrances
			(workbook, position, name, house, perfumer, price, volume_ml, notes, score, performance, scent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			path, i, f.Name, f.House, f.Perfumer, f.Price.String(), f.Volume, f.Notes,
			nullInt(f.Score), nullInt(f.Performance), nullFloat(f.Scent),
		)
		if err != nil {
			return fmt.Errorf("caching fragrance %q: %w", f.Name, err)
		}
	}

	for i, r := range snap.Records {
		_, err = tx.Exec(`INSERT INTO wear_records
			(workbook, position, item, period, uses, container_ml, backups, row_num)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			path, i, r.Item, r.Period, r.Uses, r.ContainerVolume, r.Backups, r.Row,
		)
		if err != nil {
			return fmt.Errorf("caching wear record %s/%s: %w", r.Period, r.Item, err)
		}
	}

	for i, sheet := range snap.Periods {
		if _, err = tx.Exec("INSERT INTO period_sheets (workbook, position, sheet) VALUES (?, ?, ?)", path, i, sheet); err != nil {
			return err
		}
	}

	for i, msg := range snap.Issues {
		if _, err = tx.Exec("INSERT INTO load_issues (workbook, position, message) VALUES (?, ?, ?)", path, i, msg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadWorkbook reads a cached workbook back in its original order.
func (c *Cache) LoadWorkbook(path string) (Snapshot, error) {
	var snap Snapshot

	rows, err := c.db.Query(`SELECT name, house, perfumer, price, volume_ml, notes, score, performance, scent
		FROM fragrances WHERE workbook = ? ORDER BY position`, path)
	if err != nil {
		return snap, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			f                    model.Fragrance
			perfumer, notes, prc sql.NullString
			vol, scent           sql.NullFloat64
			score, perf          sql.NullInt64
		)
		if err := rows.Scan(&f.Name, &f.House, &perfumer, &prc, &vol, &notes, &score, &perf, &scent); err != nil {
			return snap, err
		}
		f.Perfumer = perfumer.String
		f.Notes = notes.String
		f.Volume = vol.Float64
		if prc.Valid && prc.String != "" {
			f.Price, err = decimal.NewFromString(prc.String)
			if err != nil {
				return snap, fmt.Errorf("cached price for %q: %w", f.Name, err)
			}
		}
		f.PricePerML = model.PricePerML(f.Price, f.Volume)
		if score.Valid {
			n := int(score.Int64)
			f.Score = &n
		}
		if perf.Valid {
			n := int(perf.Int64)
			f.Performance = &n
		}
		if scent.Valid {
			s := scent.Float64
			f.Scent = &s
		}
		snap.Catalog = append(snap.Catalog, f)
	}
	if err := rows.Err(); err != nil {
		return snap, err
	}

	wearRows, err := c.db.Query(`SELECT item, period, uses, container_ml, backups, row_num
		FROM wear_records WHERE workbook = ? ORDER BY position`, path)
	if err != nil {
		return snap, err
	}
	defer func() { _ = wearRows.Close() }()

	for wearRows.Next() {
		var (
			r   model.UsageRecord
			row sql.NullInt64
		)
		if err := wearRows.Scan(&r.Item, &r.Period, &r.Uses, &r.ContainerVolume, &r.Backups, &row); err != nil {
			return snap, err
		}
		r.Row = int(row.Int64)
		snap.Records = append(snap.Records, r)
	}
	if err := wearRows.Err(); err != nil {
		return snap, err
	}

	snap.Periods, err = c.strings("SELECT sheet FROM period_sheets WHERE workbook = ? ORDER BY position", path)
	if err != nil {
		return snap, err
	}
	snap.Issues, err = c.strings("SELECT message FROM load_issues WHERE workbook = ? ORDER BY position", path)
	return snap, err
}

// strings runs a single-column query.
func (c *Cache) strings(query string, args ...any) ([]string, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteWorkbook removes a workbook and everything cached for it.
func (c *Cache) DeleteWorkbook(path string) error {
	_, err := c.db.Exec("DELETE FROM workbook_tracker WHERE path = ?", path)
	return err
}

// Counts returns the number of cached fragrances and wear records for a workbook.
func (c *Cache) Counts(path string) (fragrances, records int, err error) {
	err = c.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM fragrances WHERE workbook = ?),
		(SELECT COUNT(*) FROM wear_records WHERE workbook = ?)`, path, path).Scan(&fragrances, &records)
	return fragrances, records, err
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
