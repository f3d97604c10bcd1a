package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/coherence-engine/internal/field"
	"github.com/danielpatrickdp/coherence-engine/internal/pipeline"
	"github.com/danielpatrickdp/coherence-engine/internal/validate"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	config_json   TEXT NOT NULL,
	report_json   TEXT NOT NULL,
	verdict       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS timeseries (
	run_id              TEXT NOT NULL,
	ts                  TEXT NOT NULL,
	geometric_coherence REAL NOT NULL,
	forcing             REAL NOT NULL,
	field_raw           REAL NOT NULL,
	memory_term         REAL NOT NULL,
	observer_term       REAL NOT NULL,
	field_normalized    REAL NOT NULL,
	event_flag          INTEGER NOT NULL,
	is_conjunction      INTEGER NOT NULL,
	is_opposition       INTEGER NOT NULL,
	PRIMARY KEY (run_id, ts),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS lag_sweep (
	run_id TEXT NOT NULL,
	lag    INTEGER NOT NULL,
	r      REAL NOT NULL,
	PRIMARY KEY (run_id, lag),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS spectrum (
	run_id    TEXT NOT NULL,
	frequency REAL NOT NULL,
	coherence REAL NOT NULL,
	PRIMARY KEY (run_id, frequency),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store

// Store persists pipeline runs in SQLite: the derived timeseries, the
// validation report, and both auxiliary tables.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region save

// SaveRun writes a full run in one transaction.
func (s *Store) SaveRun(res *pipeline.Result) error {
	configJSON, err := json.Marshal(res.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	reportJSON, err := json.Marshal(res.Outcome.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, created_at, config_json, report_json, verdict)
		 VALUES (?, ?, ?, ?, ?)`,
		res.RunID, res.CreatedAt.Format(time.RFC3339Nano),
		string(configJSON), string(reportJSON), string(res.Outcome.Report.Verdict),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, r := range res.Records {
		_, err = tx.Exec(
			`INSERT INTO timeseries (run_id, ts, geometric_coherence, forcing, field_raw,
			                         memory_term, observer_term, field_normalized,
			                         event_flag, is_conjunction, is_opposition)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			res.RunID, r.Timestamp.UTC().Format(time.RFC3339Nano),
			r.GeometricCoherence, r.Forcing, r.FieldRaw,
			r.MemoryTerm, r.ObserverTerm, r.FieldNorm,
			boolInt(r.EventFlag), boolInt(r.IsConjunction), boolInt(r.IsOpposition),
		)
		if err != nil {
			return fmt.Errorf("insert timestep: %w", err)
		}
	}

	for _, p := range res.Outcome.LagSweep {
		if _, err = tx.Exec(
			`INSERT INTO lag_sweep (run_id, lag, r) VALUES (?, ?, ?)`,
			res.RunID, p.Lag, p.R,
		); err != nil {
			return fmt.Errorf("insert lag point: %w", err)
		}
	}

	for _, p := range res.Outcome.Spectrum {
		if _, err = tx.Exec(
			`INSERT INTO spectrum (run_id, frequency, coherence) VALUES (?, ?, ?)`,
			res.RunID, p.Frequency, p.Coherence,
		); err != nil {
			return fmt.Errorf("insert spectrum point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion save

// #region load

// LoadRun reconstructs a stored run by id.
func (s *Store) LoadRun(runID string) (*pipeline.Result, error) {
	res := &pipeline.Result{RunID: runID}

	var createdAt, configJSON, reportJSON string
	err := s.db.QueryRow(
		`SELECT created_at, config_json, report_json FROM runs WHERE run_id = ?`, runID,
	).Scan(&createdAt, &configJSON, &reportJSON)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	if res.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(configJSON), &res.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := json.Unmarshal([]byte(reportJSON), &res.Outcome.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}

	if res.Records, err = s.loadRecords(runID); err != nil {
		return nil, err
	}
	if res.Outcome.LagSweep, err = s.loadLagSweep(runID); err != nil {
		return nil, err
	}
	if res.Outcome.Spectrum, err = s.loadSpectrum(runID); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) loadRecords(runID string) ([]field.Record, error) {
	rows, err := s.db.Query(
		`SELECT ts, geometric_coherence, forcing, field_raw, memory_term, observer_term,
		        field_normalized, event_flag, is_conjunction, is_opposition
		 FROM timeseries WHERE run_id = ? ORDER BY ts`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query timeseries: %w", err)
	}
	defer rows.Close()

	var out []field.Record
	for rows.Next() {
		var r field.Record
		var ts string
		var event, conj, opp int
		if err := rows.Scan(&ts, &r.GeometricCoherence, &r.Forcing, &r.FieldRaw,
			&r.MemoryTerm, &r.ObserverTerm, &r.FieldNorm, &event, &conj, &opp); err != nil {
			return nil, fmt.Errorf("scan timestep: %w", err)
		}
		if r.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse timestep ts: %w", err)
		}
		r.EventFlag = event != 0
		r.IsConjunction = conj != 0
		r.IsOpposition = opp != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) loadLagSweep(runID string) ([]validate.LagPoint, error) {
	rows, err := s.db.Query(`SELECT lag, r FROM lag_sweep WHERE run_id = ? ORDER BY lag`, runID)
	if err != nil {
		return nil, fmt.Errorf("query lag sweep: %w", err)
	}
	defer rows.Close()

	var out []validate.LagPoint
	for rows.Next() {
		var p validate.LagPoint
		if err := rows.Scan(&p.Lag, &p.R); err != nil {
			return nil, fmt.Errorf("scan lag point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) loadSpectrum(runID string) ([]validate.SpectrumPoint, error) {
	rows, err := s.db.Query(`SELECT frequency, coherence FROM spectrum WHERE run_id = ? ORDER BY frequency`, runID)
	if err != nil {
		return nil, fmt.Errorf("query spectrum: %w", err)
	}
	defer rows.Close()

	var out []validate.SpectrumPoint
	for rows.Next() {
		var p validate.SpectrumPoint
		if err := rows.Scan(&p.Frequency, &p.Coherence); err != nil {
			return nil, fmt.Errorf("scan spectrum point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// #endregion load

// #region list

// RunSummary is one row of the run index.
type RunSummary struct {
	RunID     string
	CreatedAt time.Time
	Verdict   string
}

// ListRuns returns all stored runs, newest first.
func (s *Store) ListRuns() ([]RunSummary, error) {
	rows, err := s.db.Query(`SELECT run_id, created_at, verdict FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var createdAt string
		if err := rows.Scan(&r.RunID, &createdAt, &r.Verdict); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse run created_at: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion list

// #region helpers

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
