package logging

import (
	"bytes"
	"database/sql"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// every connection would get its own :memory: database
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE attempt_log (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id         TEXT NOT NULL,
		language       TEXT NOT NULL,
		max_key_length INTEGER NOT NULL,
		key_length     INTEGER NOT NULL,
		key            TEXT,
		outcome        TEXT NOT NULL,
		reason         TEXT,
		duration_ms    INTEGER NOT NULL,
		created_at     TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-attempt-tests
func TestLogAttempt_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := AttemptEntry{
		RunID:        "r1",
		Language:     "eng",
		MaxKeyLength: 20,
		KeyLength:    3,
		Key:          "KEY",
		Outcome:      OutcomeRecovered,
		Duration:     1500 * time.Millisecond,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := LogAttempt(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var runID, key, outcome, created string
	var ms int64
	err := db.QueryRow("SELECT run_id, key, outcome, duration_ms, created_at FROM attempt_log").
		Scan(&runID, &key, &outcome, &ms, &created)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if runID != "r1" || key != "KEY" || outcome != OutcomeRecovered {
		t.Errorf("got run_id=%q key=%q outcome=%q", runID, key, outcome)
	}
	if ms != 1500 {
		t.Errorf("expected 1500ms, got %d", ms)
	}
	if created != "2026-01-01T00:00:00.000000000Z" {
		t.Errorf("unexpected created_at %q", created)
	}
}

func TestLogAttempt_EmptyFieldsStoredAsNull(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := AttemptEntry{RunID: "r2", Language: "fra", MaxKeyLength: 20, Outcome: OutcomeFailed}
	if err := LogAttempt(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var key, reason sql.NullString
	var created string
	db.QueryRow("SELECT key, reason, created_at FROM attempt_log").Scan(&key, &reason, &created)
	if key.Valid {
		t.Errorf("expected NULL key, got %q", key.String)
	}
	if reason.Valid {
		t.Errorf("expected NULL reason, got %q", reason.String)
	}
	if created == "" {
		t.Error("expected created_at to be filled in")
	}
}

func TestLogAttempt_FixedWidthUTC(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	zone := time.FixedZone("CET", 3600)
	entry := AttemptEntry{
		RunID:     "r3",
		Language:  "eng",
		Outcome:   OutcomeFailed,
		CreatedAt: time.Date(2026, 1, 1, 1, 0, 0, 1500, zone),
	}
	if err := LogAttempt(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var created string
	if err := db.QueryRow("SELECT created_at FROM attempt_log").Scan(&created); err != nil {
		t.Fatalf("query: %v", err)
	}
	if created != "2026-01-01T00:00:00.000001500Z" {
		t.Errorf("unexpected created_at %q", created)
	}
	parsed, err := time.Parse(TimeLayout, created)
	if err != nil || !parsed.Equal(entry.CreatedAt) {
		t.Errorf("created_at does not parse back: %v %v", parsed, err)
	}
}

func TestLogAttempt_RolledBackWithTx(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := LogAttempt(tx, AttemptEntry{RunID: "r4", Language: "eng", Outcome: OutcomeFailed}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM attempt_log").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected the rollback to drop the row, got %d", n)
	}
}

func TestLogAttempt_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	err = LogAttempt(db, AttemptEntry{RunID: "r", Language: "eng", Outcome: OutcomeFailed})
	if err == nil {
		t.Fatal("expected error without attempt_log table")
	}
	if !strings.Contains(err.Error(), "log attempt") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

// #endregion log-attempt-tests

// #region logger-tests
func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "lang", "eng")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "lang=eng") {
		t.Errorf("warn line missing: %q", out)
	}
}

// #endregion logger-tests
