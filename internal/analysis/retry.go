package analysis

import (
	"errors"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

// #region engine

// RetryEngine walks a fixed plan of profiles and decides after each attempt
// whether another profile is worth trying.
type RetryEngine struct {
	plan       []string
	exhaustive bool
}

// NewRetryEngine creates an engine over plan. When exhaustive is set every
// profile is tried even after a success, so the best one can be kept.
func NewRetryEngine(plan []string, exhaustive bool) *RetryEngine {
	return &RetryEngine{plan: plan, exhaustive: exhaustive}
}

// #endregion

// #region should-retry

// Next returns the next profile to try given the attempts so far.
func (r *RetryEngine) Next(attempts []Attempt) (string, bool) {
	if len(attempts) >= len(r.plan) {
		return "", false
	}
	if len(attempts) == 0 {
		return r.plan[0], true
	}

	latest := attempts[len(attempts)-1]
	if latest.Err != nil && !retryable(latest.Err) {
		return "", false
	}
	if latest.Succeeded() && !r.exhaustive {
		return "", false
	}
	return r.plan[len(attempts)], true
}

// retryable reports whether another profile could succeed where this one failed.
// Errors about the input itself fail the same way under every profile.
func retryable(err error) bool {
	return errors.Is(err, errkind.ErrKeyLengthNotFound)
}

// #endregion
