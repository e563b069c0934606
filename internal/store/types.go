package store

import "time"

// #region run
// Run is one stored analysis: the normalized ciphertext, the parameters it
// was analyzed with, and what came out.
type Run struct {
	RunID          string
	ParentID       string // previous run over the same ciphertext, if any
	CiphertextHash string
	Ciphertext     string
	Language       string
	MaxKeyLength   int
	KeyLength      int // 0 when not found
	Key            string
	Plaintext      string
	ErrorCode      string
	Error          string
	CandidatesJSON string
	EvalJSON       string
	CreatedAt      time.Time
}

// Failed reports whether the run ended in an error.
func (r Run) Failed() bool {
	return r.ErrorCode != ""
}

// #endregion run

// #region attempt-row
// AttemptRow is a row of attempt_log joined for display.
type AttemptRow struct {
	RunID        string
	Language     string
	MaxKeyLength int
	KeyLength    int
	Key          string
	Outcome      string
	Reason       string
	DurationMS   int64
	CreatedAt    time.Time
}

// #endregion attempt-row
