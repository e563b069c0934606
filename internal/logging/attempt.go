package logging

import (
	"fmt"
	"time"
)

// #region log-attempt
// LogAttempt writes an attempt entry to the attempt_log table.
func LogAttempt(db Execer, entry AttemptEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO attempt_log (run_id, language, max_key_length, key_length, key, outcome, reason, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Language,
		entry.MaxKeyLength,
		entry.KeyLength,
		nullIfEmpty(entry.Key),
		entry.Outcome,
		nullIfEmpty(entry.Reason),
		entry.Duration.Milliseconds(),
		entry.CreatedAt.UTC().Format(TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("log attempt: %w", err)
	}
	return nil
}

// #endregion log-attempt

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
