package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/logging"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id          TEXT PRIMARY KEY,
	parent_id       TEXT,
	ciphertext_hash TEXT NOT NULL,
	ciphertext      TEXT NOT NULL,
	language        TEXT NOT NULL,
	max_key_length  INTEGER NOT NULL,
	key_length      INTEGER NOT NULL,
	key             TEXT,
	plaintext       TEXT,
	error_code      TEXT,
	error           TEXT,
	candidates_json TEXT,
	eval_json       TEXT,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES analysis_runs(run_id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_hash ON analysis_runs(ciphertext_hash, created_at);

CREATE TABLE IF NOT EXISTS attempt_log (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id         TEXT NOT NULL,
	language       TEXT NOT NULL,
	max_key_length INTEGER NOT NULL,
	key_length     INTEGER NOT NULL,
	key            TEXT,
	outcome        TEXT NOT NULL,
	reason         TEXT,
	duration_ms    INTEGER NOT NULL,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES analysis_runs(run_id) ON DELETE CASCADE
);
`

const timeLayout = logging.TimeLayout

// #endregion schema

// #region store-struct
// Store keeps analysis history in SQLite.
type Store struct {
	db *sql.DB
}

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// foreign_keys is per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region save-run
// SaveRun assigns an id and timestamp to rec, links it to the latest run over
// the same ciphertext, and inserts it.
func (s *Store) SaveRun(rec Run) (Run, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rec, err = insertRun(tx, rec)
	if err != nil {
		return Run{}, err
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

func insertRun(tx *sql.Tx, rec Run) (Run, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.CiphertextHash == "" {
		rec.CiphertextHash = HashCiphertext(rec.Ciphertext)
	}

	if rec.ParentID == "" {
		var parent string
		err := tx.QueryRow(
			`SELECT run_id FROM analysis_runs WHERE ciphertext_hash = ?
			 ORDER BY created_at DESC LIMIT 1`, rec.CiphertextHash,
		).Scan(&parent)
		switch {
		case err == nil:
			rec.ParentID = parent
		case !errors.Is(err, sql.ErrNoRows):
			return Run{}, fmt.Errorf("find parent: %w", err)
		}
	}

	_, err := tx.Exec(
		`INSERT INTO analysis_runs (run_id, parent_id, ciphertext_hash, ciphertext, language,
		 max_key_length, key_length, key, plaintext, error_code, error, candidates_json, eval_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, nullIfEmpty(rec.ParentID), rec.CiphertextHash, rec.Ciphertext, rec.Language,
		rec.MaxKeyLength, rec.KeyLength, nullIfEmpty(rec.Key), nullIfEmpty(rec.Plaintext),
		nullIfEmpty(rec.ErrorCode), nullIfEmpty(rec.Error), nullIfEmpty(rec.CandidatesJSON),
		nullIfEmpty(rec.EvalJSON), rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// #endregion save-run

// #region get-run
const runColumns = `run_id, parent_id, ciphertext_hash, ciphertext, language, max_key_length,
	key_length, key, plaintext, error_code, error, candidates_json, eval_json, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var rec Run
	var parentID, key, plaintext, errorCode, errText, candidates, evalJSON sql.NullString
	var createdStr string

	err := row.Scan(&rec.RunID, &parentID, &rec.CiphertextHash, &rec.Ciphertext, &rec.Language,
		&rec.MaxKeyLength, &rec.KeyLength, &key, &plaintext, &errorCode, &errText,
		&candidates, &evalJSON, &createdStr)
	if err != nil {
		return Run{}, err
	}
	rec.ParentID = parentID.String
	rec.Key = key.String
	rec.Plaintext = plaintext.String
	rec.ErrorCode = errorCode.String
	rec.Error = errText.String
	rec.CandidatesJSON = candidates.String
	rec.EvalJSON = evalJSON.String
	rec.CreatedAt, err = time.Parse(timeLayout, createdStr)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	return rec, nil
}

// GetRun retrieves a run by id.
func (s *Store) GetRun(id string) (Run, error) {
	rec, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM analysis_runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

// LatestRun returns the most recent run.
func (s *Store) LatestRun() (Run, error) {
	rec, err := scanRun(s.db.QueryRow(`SELECT ` + runColumns + ` FROM analysis_runs ORDER BY created_at DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("latest run: %w", ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return rec, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	return s.queryRuns(`SELECT `+runColumns+` FROM analysis_runs ORDER BY created_at DESC LIMIT ?`, limit)
}

// RunsForCiphertext returns every run over the ciphertext with the given hash, oldest first.
func (s *Store) RunsForCiphertext(hash string) ([]Run, error) {
	return s.queryRuns(`SELECT `+runColumns+` FROM analysis_runs WHERE ciphertext_hash = ? ORDER BY created_at ASC`, hash)
}

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// #endregion list-runs

// #region attempts
// Attempts returns the attempt_log rows of a run in insertion order.
func (s *Store) Attempts(runID string) ([]AttemptRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, language, max_key_length, key_length, key, outcome, reason, duration_ms, created_at
		 FROM attempt_log WHERE run_id = ? ORDER BY id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRow
	for rows.Next() {
		var a AttemptRow
		var key, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&a.RunID, &a.Language, &a.MaxKeyLength, &a.KeyLength, &key,
			&a.Outcome, &reason, &a.DurationMS, &createdStr); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.Key = key.String
		a.Reason = reason.String
		created, err := time.Parse(timeLayout, createdStr)
		if err != nil {
			return nil, fmt.Errorf("parse attempt created_at: %w", err)
		}
		a.CreatedAt = created
		out = append(out, a)
	}
	return out, rows.Err()
}

// #endregion attempts

// #region delete-run
// DeleteRun removes a run and its attempts. Children keep existing with no parent.
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec(`DELETE FROM analysis_runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// #endregion delete-run

// #region helpers
// HashCiphertext identifies a normalized ciphertext.
func HashCiphertext(ciphertext string) string {
	sum := sha256.Sum256([]byte(ciphertext))
	return hex.EncodeToString(sum[:])
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
