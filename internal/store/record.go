package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/logging"
)

// #region new-run
// NewRun flattens an analysis outcome into a storable run. err is the error
// Analyze returned alongside rep, if any.
func NewRun(req analysis.Request, rep analysis.Report, err error) (Run, error) {
	rec := Run{
		Ciphertext:   rep.Ciphertext.String(),
		Language:     rep.Language,
		MaxKeyLength: req.MaxKeyLength,
		KeyLength:    rep.KeyLength,
		Key:          rep.Key.String(),
		Plaintext:    rep.Plaintext,
	}
	if rec.Language == "" {
		rec.Language = strings.ToLower(strings.TrimSpace(req.Language))
	}
	if len(rep.Attempts) > 0 {
		rec.MaxKeyLength = rep.Attempts[0].MaxKeyLength
	}
	if err != nil {
		rec.ErrorCode = string(errkind.Classify(err))
		rec.Error = err.Error()
	}

	if len(rep.Candidates) > 0 {
		b, err := json.Marshal(rep.Candidates)
		if err != nil {
			return Run{}, fmt.Errorf("marshal candidates: %w", err)
		}
		rec.CandidatesJSON = string(b)
	}
	if len(rep.Eval.Metrics) > 0 {
		b, err := json.Marshal(rep.Eval)
		if err != nil {
			return Run{}, fmt.Errorf("marshal eval: %w", err)
		}
		rec.EvalJSON = string(b)
	}
	rec.CiphertextHash = HashCiphertext(rec.Ciphertext)
	return rec, nil
}

// #endregion new-run

// #region record
// Record saves the run and one attempt_log row per profile tried in a single
// transaction. Either all of them are stored or none.
func (s *Store) Record(req analysis.Request, rep analysis.Report, analyzeErr error) (Run, error) {
	rec, err := NewRun(req, rep, analyzeErr)
	if err != nil {
		return Run{}, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	rec, err = insertRun(tx, rec)
	if err != nil {
		return Run{}, err
	}
	for _, att := range rep.Attempts {
		entry := logging.AttemptEntry{
			RunID:        rec.RunID,
			Language:     att.Language,
			MaxKeyLength: att.MaxKeyLength,
			KeyLength:    att.KeyLength,
			Key:          att.Key,
			Outcome:      attemptOutcome(att),
			Duration:     att.Duration,
		}
		if att.Err != nil {
			entry.Reason = att.Err.Error()
		}
		if err := logging.LogAttempt(tx, entry); err != nil {
			return Run{}, fmt.Errorf("record run %s: %w", rec.RunID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

func attemptOutcome(att analysis.Attempt) string {
	switch {
	case !att.Succeeded():
		return logging.OutcomeFailed
	case !att.EvalPassed:
		return logging.OutcomeRejected
	}
	return logging.OutcomeRecovered
}

// #endregion record
