package analysis

import (
	"time"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/eval"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/keylength"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/keyrec"
)

// #region language-auto

// LanguageAuto asks the analyzer to try every registered profile.
const LanguageAuto = "auto"

// #endregion

// #region request

// Request is one analysis job.
type Request struct {
	Text           string
	Language       string // profile code or LanguageAuto
	MaxKeyLength   int    // 0 uses the analyzer default
	PreserveFormat bool   // reinsert spacing, punctuation and case into the plaintext
}

// #endregion

// #region config

// Config holds analyzer-wide settings.
type Config struct {
	MaxKeyLength int
	// FoldDiacritics folds accented ciphertext letters into A-Z before
	// analysis. Off by default: accents in a ciphertext were passed through
	// unenciphered and must not take a keystream position.
	FoldDiacritics bool
	Eval           eval.EvalConfig
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{
		MaxKeyLength:   keylength.DefaultMaxLength,
		FoldDiacritics: false,
		Eval:           eval.DefaultEvalConfig(),
	}
}

// #endregion

// #region attempt

// Attempt records one profile tried while answering a request.
type Attempt struct {
	Language     string
	MaxKeyLength int
	KeyLength    int
	Key          string
	Err          error
	Distance     float64 // plaintext distance to the profile; 0 when the attempt failed
	EvalPassed   bool
	Duration     time.Duration
}

// Succeeded reports whether the attempt produced a key.
func (a Attempt) Succeeded() bool {
	return a.Err == nil
}

// #endregion

// #region report

// Report is everything the pipeline learned about one ciphertext.
// The core never formats it; rendering belongs to the caller.
type Report struct {
	Language       string
	KeyLength      int
	Key            alphabet.Key
	Plaintext      string
	Ciphertext     alphabet.Sequence
	Candidates     []keylength.Candidate
	Monoalphabetic bool
	Shifts         []keyrec.Shift
	Eval           eval.EvalResult
	Attempts       []Attempt
}

// Outcome pairs a profile with the result of analyzing under it alone.
type Outcome struct {
	Language string
	Report   Report
	Err      error
}

// #endregion
