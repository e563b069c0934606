package eval

// #region eval-config
// EvalConfig holds thresholds for checking a recovered key.
type EvalConfig struct {
	ICTolerance     float64 // fail if plaintext IC is further than this from the language IC
	MinColumnLength int     // fail if a residue class has fewer symbols than this
	MinShiftMargin  float64 // warn if the weakest column won by less than this
}

// DefaultEvalConfig returns sensible defaults.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		ICTolerance:     0.01,
		MinColumnLength: 20,
		MinShiftMargin:  50,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of post-recovery validation.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// Metric returns the metric named name.
func (r EvalResult) Metric(name string) (EvalMetric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return EvalMetric{}, false
}

// #endregion eval-result

// #region metric-names
const (
	MetricPlaintextIC     = "plaintext_ic"
	MetricMinColumnLength = "min_column_length"
	MetricShiftMargin     = "shift_margin"
	MetricProfileDistance = "profile_distance"
)

// #endregion metric-names
