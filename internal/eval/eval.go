package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/keyrec"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/stats"
)

// #region eval-harness
// EvalHarness runs sanity checks on a deciphered text. It never changes the
// recovered key; it only says how much to trust it.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks plain (the deciphered stream) against lang. shifts are the
// per-column results that produced the key.
func (h *EvalHarness) Run(plain alphabet.Sequence, shifts []keyrec.Shift, lang profile.Language) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Plaintext IC close to the language
	ic, err := stats.IndexOfCoincidence(plain)
	icPass := err == nil && math.Abs(ic-lang.IC) <= h.config.ICTolerance
	metrics = append(metrics, EvalMetric{
		Name:  MetricPlaintextIC,
		Value: ic,
		Pass:  icPass,
	})
	if !icPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("plaintext IC %.4f not within %.4f of %.4f",
			ic, h.config.ICTolerance, lang.IC))
	}

	// 2. Enough symbols per column for frequency analysis
	shortest := 0
	if len(shifts) > 0 {
		shortest = len(plain) / len(shifts)
	}
	colPass := shortest >= h.config.MinColumnLength
	metrics = append(metrics, EvalMetric{
		Name:  MetricMinColumnLength,
		Value: float64(shortest),
		Pass:  colPass,
	})
	if !colPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("shortest column has %d symbols, want %d",
			shortest, h.config.MinColumnLength))
	}

	// 3. Weakest column margin: informational
	var margin float64
	for i, s := range shifts {
		if m := s.Margin(); i == 0 || m < margin {
			margin = m
		}
	}
	metrics = append(metrics, EvalMetric{
		Name:  MetricShiftMargin,
		Value: margin,
		Pass:  margin >= h.config.MinShiftMargin,
	})

	// 4. Distance to the language frequencies: informational, used to rank languages
	var distance float64
	pct, err := stats.Count(plain).Percentages()
	if err == nil {
		distance = pct.Distance(lang.Frequencies)
	}
	metrics = append(metrics, EvalMetric{
		Name:  MetricProfileDistance,
		Value: distance,
		Pass:  err == nil,
	})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness
