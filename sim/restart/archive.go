package restart

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/resvsim/schedule-sim/sim/simerr"
	"github.com/resvsim/schedule-sim/sim/summary"
)

// RunInfo describes one archived run.
type RunInfo struct {
	ID         string
	Created    time.Time
	UnitSystem string
	Steps      int
}

// Archive persists encoded restart steps and summary vectors of runs into a
// single SQLite file. Each run gets its own ID.
type Archive struct {
	db    *sql.DB
	path  string
	runID string
}

// OpenArchive opens (creating when needed) the archive at path.
func OpenArchive(path string) (*Archive, error) {
	if path == "" {
		path = "schedule-sim.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created TEXT NOT NULL,
			unit_system TEXT NOT NULL,
			steps INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS restart (
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			elapsed REAL NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, step)
		)`,
		`CREATE TABLE IF NOT EXISTS summary (
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			key TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (run_id, step, key)
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &Archive{db: db, path: path}, nil
}

// BeginRun registers a new run and makes it the target of WriteStep.
func (a *Archive) BeginRun(unitSystem string, steps int) (string, error) {
	id := uuid.NewString()
	if _, err := a.db.Exec(`INSERT INTO runs(id, created, unit_system, steps) VALUES(?,?,?,?)`,
		id, time.Now().UTC().Format(time.RFC3339), unitSystem, steps); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	a.runID = id
	logrus.Infof("archiving run %s to %s", id, a.path)
	return id, nil
}

// RunID returns the current run ID; empty before BeginRun.
func (a *Archive) RunID() string { return a.runID }

// WriteStep stores the encoded aggregate and the summary vector of step.
func (a *Archive) WriteStep(step int, agg *Aggregate, st *summary.State) (retErr error) {
	if a.runID == "" {
		return fmt.Errorf("archive: WriteStep before BeginRun: %w", simerr.ErrInvalidArgument)
	}
	payload, err := EncodeBytes(agg.Arrays())
	if err != nil {
		return err
	}
	tx, err := a.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.Exec(`INSERT INTO restart(run_id, step, elapsed, payload) VALUES(?,?,?,?)
		ON CONFLICT(run_id, step) DO UPDATE SET elapsed=excluded.elapsed, payload=excluded.payload`,
		a.runID, step, agg.Header.Elapsed, payload); err != nil {
		return fmt.Errorf("upsert restart step %d: %w", step, err)
	}
	for _, key := range st.Keys() {
		v, _ := st.Get(key)
		if _, err := tx.Exec(`INSERT INTO summary(run_id, step, key, value) VALUES(?,?,?,?)
			ON CONFLICT(run_id, step, key) DO UPDATE SET value=excluded.value`,
			a.runID, step, key, v); err != nil {
			return fmt.Errorf("upsert summary %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Runs lists archived runs, oldest first.
func (a *Archive) Runs() ([]RunInfo, error) {
	rows, err := a.db.Query(`SELECT id, created, unit_system, steps FROM runs ORDER BY created, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []RunInfo
	for rows.Next() {
		var r RunInfo
		var created string
		if err := rows.Scan(&r.ID, &created, &r.UnitSystem, &r.Steps); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		r.Created, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Load returns the restart arrays and summary vector stored for step of run.
func (a *Archive) Load(runID string, step int) ([]Array, map[string]float64, error) {
	var payload []byte
	err := a.db.QueryRow(`SELECT payload FROM restart WHERE run_id = ? AND step = ?`, runID, step).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("run %s step %d: %w", runID, step, simerr.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("select restart: %w", err)
	}
	arrays, err := DecodeBytes(payload)
	if err != nil {
		return nil, nil, err
	}

	rows, err := a.db.Query(`SELECT key, value FROM summary WHERE run_id = ? AND step = ?`, runID, step)
	if err != nil {
		return nil, nil, fmt.Errorf("select summary: %w", err)
	}
	defer func() { _ = rows.Close() }()
	vec := make(map[string]float64)
	for rows.Next() {
		var k string
		var v float64
		if err := rows.Scan(&k, &v); err != nil {
			return nil, nil, fmt.Errorf("scan: %w", err)
		}
		vec[k] = v
	}
	return arrays, vec, rows.Err()
}

// Steps returns the archived report steps of run, ascending.
func (a *Archive) Steps(runID string) ([]int, error) {
	rows, err := a.db.Query(`SELECT step FROM restart WHERE run_id = ? ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("select steps: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close closes the database.
func (a *Archive) Close() error { return a.db.Close() }

// MemoryWriter keeps every written step in memory.
type MemoryWriter struct {
	Steps      []int
	Aggregates map[int]*Aggregate
	Summaries  map[int]map[string]float64
}

// NewMemoryWriter returns an empty writer.
func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{
		Aggregates: make(map[int]*Aggregate),
		Summaries:  make(map[int]map[string]float64),
	}
}

// WriteStep records agg and a copy of the summary vector.
func (m *MemoryWriter) WriteStep(step int, agg *Aggregate, st *summary.State) error {
	m.Steps = append(m.Steps, step)
	m.Aggregates[step] = agg
	vec := make(map[string]float64, st.Len())
	for _, k := range st.Keys() {
		vec[k], _ = st.Get(k)
	}
	m.Summaries[step] = vec
	return nil
}
