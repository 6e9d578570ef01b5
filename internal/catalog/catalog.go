// Package catalog maintains a sqlite index of the project's well-log
// files: per-well header data plus per-curve statistics, kept fresh by
// rescans that skip unchanged files.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	_ "modernc.org/sqlite"

	"github.com/san-kum/geoforge/internal/las"
	"github.com/san-kum/geoforge/internal/logger"
)

var log = logger.ForComponent("catalog")

// ErrNoFiles indicates the scan glob matched nothing.
var ErrNoFiles = errors.New("catalog: no files matched")

const schema = `
CREATE TABLE IF NOT EXISTS wells (
	id          INTEGER PRIMARY KEY,
	path        TEXT NOT NULL UNIQUE,
	name        TEXT,
	uwi         TEXT,
	depth_start REAL,
	depth_stop  REAL,
	step        REAL,
	n_curves    INTEGER,
	mtime       INTEGER,
	size        INTEGER,
	error       TEXT,
	scanned_at  TIMESTAMP
);
CREATE TABLE IF NOT EXISTS curves (
	well_id  INTEGER NOT NULL REFERENCES wells(id) ON DELETE CASCADE,
	mnem     TEXT NOT NULL,
	unit     TEXT,
	min      REAL,
	max      REAL,
	mean     REAL,
	null_pct REAL
);
CREATE INDEX IF NOT EXISTS idx_curves_mnem ON curves(mnem);
`

// Store wraps the catalog database.
type Store struct {
	db *sql.DB
}

// Open creates or opens a catalog database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("catalog: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ScanResult counts the outcome of one scan.
type ScanResult struct {
	Scanned int // parsed and upserted
	Skipped int // unchanged since the last scan
	Failed  int // parse failures, recorded and skipped over
}

// Scan walks a doublestar glob of LAS files and upserts each well.
// Files whose mtime and size are unchanged are skipped; parse failures
// are recorded in the wells row and do not stop the scan.
func (s *Store) Scan(pattern string) (ScanResult, error) {
	var res ScanResult
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return res, fmt.Errorf("catalog: bad glob %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return res, fmt.Errorf("%w: %s", ErrNoFiles, pattern)
	}

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return res, err
		}
		mtime := info.ModTime().UTC().Unix()
		size := info.Size()

		var oldMtime, oldSize sql.NullInt64
		var oldErr sql.NullString
		row := s.db.QueryRow("SELECT mtime, size, error FROM wells WHERE path = ?", path)
		if err := row.Scan(&oldMtime, &oldSize, &oldErr); err == nil {
			if oldMtime.Int64 == mtime && oldSize.Int64 == size && oldErr.String == "" {
				res.Skipped++
				continue
			}
		} else if err != sql.ErrNoRows {
			return res, fmt.Errorf("catalog: lookup %s: %w", path, err)
		}

		if err := s.indexFile(path, mtime, size); err != nil {
			log.Warn("file failed", "file", path, "error", err)
			if uerr := s.recordFailure(path, mtime, size, err); uerr != nil {
				return res, uerr
			}
			res.Failed++
			continue
		}
		res.Scanned++
	}
	log.Info("scan finished", "pattern", pattern,
		"scanned", res.Scanned, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

func (s *Store) indexFile(path string, mtime, size int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	parsed, err := las.Parse(f)
	f.Close()
	if err != nil {
		return err
	}
	ws := las.ComputeWellStats(path, parsed, nil)

	units := map[string]string{}
	for _, c := range parsed.Curves {
		units[c.Mnem] = c.Unit
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO wells (path, name, uwi, depth_start, depth_stop, step, n_curves, mtime, size, error, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?)
		ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			uwi = excluded.uwi,
			depth_start = excluded.depth_start,
			depth_stop = excluded.depth_stop,
			step = excluded.step,
			n_curves = excluded.n_curves,
			mtime = excluded.mtime,
			size = excluded.size,
			error = '',
			scanned_at = excluded.scanned_at
	`, path, ws.Name, ws.UWI, nullable(ws.DepthStart), nullable(ws.DepthStop),
		nullable(ws.DepthStep), ws.NCurves, mtime, size, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert well: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil || id == 0 {
		if err := tx.QueryRow("SELECT id FROM wells WHERE path = ?", path).Scan(&id); err != nil {
			return fmt.Errorf("get well id: %w", err)
		}
	}

	if _, err := tx.Exec("DELETE FROM curves WHERE well_id = ?", id); err != nil {
		return fmt.Errorf("clear curves: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO curves (well_id, mnem, unit, min, max, mean, null_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range parsed.Curves {
		cs, ok := ws.Curves[c.Mnem]
		if !ok {
			continue
		}
		if _, err := stmt.Exec(id, c.Mnem, units[c.Mnem],
			cs.Min, cs.Max, cs.Mean, cs.NullPct); err != nil {
			return fmt.Errorf("insert curve %s: %w", c.Mnem, err)
		}
	}
	return tx.Commit()
}

func (s *Store) recordFailure(path string, mtime, size int64, cause error) error {
	_, err := s.db.Exec(`
		INSERT INTO wells (path, mtime, size, error, scanned_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			size = excluded.size,
			error = excluded.error,
			scanned_at = excluded.scanned_at
	`, path, mtime, size, cause.Error(), time.Now().UTC())
	return err
}

// nullable maps NaN to NULL for REAL columns.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// Well is one catalog row.
type Well struct {
	ID         int64
	Path       string
	Name       string
	UWI        string
	DepthStart float64
	DepthStop  float64
	Step       float64
	NCurves    int
	Error      string
}

func scanWell(scanner interface{ Scan(...any) error }) (Well, error) {
	var w Well
	var name, uwi, werr sql.NullString
	var start, stop, step sql.NullFloat64
	var ncurves sql.NullInt64
	err := scanner.Scan(&w.ID, &w.Path, &name, &uwi, &start, &stop, &step, &ncurves, &werr)
	if err != nil {
		return w, err
	}
	w.Name, w.UWI, w.Error = name.String, uwi.String, werr.String
	w.DepthStart, w.DepthStop, w.Step = math.NaN(), math.NaN(), math.NaN()
	if start.Valid {
		w.DepthStart = start.Float64
	}
	if stop.Valid {
		w.DepthStop = stop.Float64
	}
	if step.Valid {
		w.Step = step.Float64
	}
	w.NCurves = int(ncurves.Int64)
	return w, nil
}

// ListWells returns every cataloged well ordered by path.
func (s *Store) ListWells() ([]Well, error) {
	rows, err := s.db.Query(`
		SELECT id, path, name, uwi, depth_start, depth_stop, step, n_curves, error
		FROM wells ORDER BY path ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list wells: %w", err)
	}
	defer rows.Close()
	var wells []Well
	for rows.Next() {
		w, err := scanWell(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan well: %w", err)
		}
		wells = append(wells, w)
	}
	return wells, rows.Err()
}

// CurveRow is one curve availability entry.
type CurveRow struct {
	Path    string
	Well    string
	Mnem    string
	Unit    string
	Min     float64
	Max     float64
	Mean    float64
	NullPct float64
}

// CurveAvailability lists wells carrying the mnemonic, or every curve
// when mnem is empty.
func (s *Store) CurveAvailability(mnem string) ([]CurveRow, error) {
	query := `
		SELECT w.path, w.name, c.mnem, c.unit, c.min, c.max, c.mean, c.null_pct
		FROM curves c JOIN wells w ON w.id = c.well_id
	`
	args := []any{}
	if mnem != "" {
		query += " WHERE c.mnem = ?"
		args = append(args, mnem)
	}
	query += " ORDER BY w.path ASC, c.mnem ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: curve query: %w", err)
	}
	defer rows.Close()
	var out []CurveRow
	for rows.Next() {
		var r CurveRow
		var name, unit sql.NullString
		if err := rows.Scan(&r.Path, &name, &r.Mnem, &unit,
			&r.Min, &r.Max, &r.Mean, &r.NullPct); err != nil {
			return nil, fmt.Errorf("catalog: scan curve: %w", err)
		}
		r.Well, r.Unit = name.String, unit.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats aggregates the catalog.
type Stats struct {
	Wells     int
	Failed    int
	Curves    int
	Mnemonics int
	DepthMin  float64
	DepthMax  float64
}

// Stats runs the aggregate queries.
func (s *Store) Stats() (*Stats, error) {
	st := &Stats{DepthMin: math.NaN(), DepthMax: math.NaN()}
	var depthMin, depthMax sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0),
		       MIN(depth_start), MAX(depth_stop)
		FROM wells
	`).Scan(&st.Wells, &st.Failed, &depthMin, &depthMax)
	if err != nil {
		return nil, fmt.Errorf("catalog: stats: %w", err)
	}
	if depthMin.Valid {
		st.DepthMin = depthMin.Float64
	}
	if depthMax.Valid {
		st.DepthMax = depthMax.Float64
	}
	err = s.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT mnem) FROM curves
	`).Scan(&st.Curves, &st.Mnemonics)
	if err != nil {
		return nil, fmt.Errorf("catalog: curve stats: %w", err)
	}
	return st, nil
}
