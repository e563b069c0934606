package logging

import (
	"database/sql"
	"time"
)

// #region attempt-entry
// AttemptEntry is a single row in the attempt_log table: one language
// profile tried while answering an analysis request.
type AttemptEntry struct {
	RunID        string
	Language     string
	MaxKeyLength int
	KeyLength    int
	Key          string
	Outcome      string // "recovered" | "rejected" | "failed"
	Reason       string
	Duration     time.Duration
	CreatedAt    time.Time
}

// Outcomes recorded in attempt_log.
const (
	OutcomeRecovered = "recovered"
	OutcomeRejected  = "rejected" // key found but the plaintext failed evaluation
	OutcomeFailed    = "failed"
)

// #endregion attempt-entry

// #region storage
// TimeLayout is the created_at format shared by every history table. It is
// fixed width so timestamps sort lexically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Execer is satisfied by *sql.DB and *sql.Tx, so attempts can be written
// inside the transaction that stores their run.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// #endregion storage
