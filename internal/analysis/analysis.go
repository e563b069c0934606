package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/cipher"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/eval"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/keylength"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/keyrec"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
)

// #region analyzer-struct

// Analyzer runs the key-length, key and decipher pipeline. It holds only
// read-only configuration and is safe for concurrent use.
type Analyzer struct {
	registry *profile.Registry
	config   Config
	eval     *eval.EvalHarness
	logger   *slog.Logger
}

// #endregion

// #region constructor

// NewAnalyzer creates an analyzer over the given profiles. logger may be nil.
func NewAnalyzer(registry *profile.Registry, config Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.MaxKeyLength == 0 {
		config.MaxKeyLength = keylength.DefaultMaxLength
	}
	return &Analyzer{
		registry: registry,
		config:   config,
		eval:     eval.NewEvalHarness(config.Eval),
		logger:   logger,
	}
}

// Registry returns the profiles the analyzer knows.
func (a *Analyzer) Registry() *profile.Registry {
	return a.registry
}

// Normalizer returns the normalizer applied to ciphertext.
func (a *Analyzer) Normalizer() alphabet.Normalizer {
	return alphabet.Normalizer{FoldDiacritics: a.config.FoldDiacritics}
}

// PlaintextNormalizer returns the normalizer Encipher applies. It always
// folds diacritics so accented plaintext letters take a keystream position
// instead of vanishing.
func (a *Analyzer) PlaintextNormalizer() alphabet.Normalizer {
	return alphabet.Normalizer{FoldDiacritics: true}
}

// #endregion

// #region analyze

// Analyze estimates the key length, recovers the key and deciphers req.Text.
// With LanguageAuto every profile is tried and the attempt whose plaintext
// sits closest to its own profile wins. On failure the returned report still
// carries the normalized ciphertext, the probed candidates and the attempts.
func (a *Analyzer) Analyze(req Request) (Report, error) {
	plan, err := a.plan(req.Language)
	if err != nil {
		return Report{}, err
	}
	maxLength := req.MaxKeyLength
	if maxLength == 0 {
		maxLength = a.config.MaxKeyLength
	}
	seq := a.Normalizer().Normalize(req.Text)

	engine := NewRetryEngine(plan, len(plan) > 1)
	var attempts []Attempt
	var best, last Report
	var bestAtt Attempt
	found := false

	for {
		code, ok := engine.Next(attempts)
		if !ok {
			break
		}
		lang, err := a.registry.Lookup(code)
		if err != nil {
			return Report{}, err
		}

		a.logger.Debug("analysis attempt", "language", code, "max_key_length", maxLength, "symbols", len(seq))
		start := time.Now()
		rep, err := a.run(req, seq, lang, maxLength)
		att := Attempt{
			Language:     code,
			MaxKeyLength: maxLength,
			KeyLength:    rep.KeyLength,
			Err:          err,
			Duration:     time.Since(start),
		}
		if err == nil {
			att.Key = rep.Key.String()
			att.EvalPassed = rep.Eval.Passed
			if m, ok := rep.Eval.Metric(eval.MetricProfileDistance); ok {
				att.Distance = m.Value
			}
			if !found || better(att, bestAtt) {
				best, bestAtt = rep, att
				found = true
			}
		} else {
			a.logger.Debug("analysis attempt failed", "language", code, "err", err)
		}
		attempts = append(attempts, att)
		last = rep
	}

	if !found {
		last.Attempts = attempts
		err := attempts[len(attempts)-1].Err
		a.logger.Info("analysis failed", "attempts", len(attempts), "err", err)
		return last, err
	}
	best.Attempts = attempts
	a.logger.Info("analysis complete",
		"language", best.Language, "key_length", best.KeyLength, "key", best.Key.String(),
		"eval_passed", best.Eval.Passed)
	return best, nil
}

// run is the pipeline under a single profile.
func (a *Analyzer) run(req Request, seq alphabet.Sequence, lang profile.Language, maxLength int) (Report, error) {
	rep := Report{Language: lang.Code, Ciphertext: seq}

	est, err := keylength.Estimate(seq, lang, maxLength)
	rep.Candidates = est.Candidates
	rep.Monoalphabetic = est.Monoalphabetic
	if err != nil {
		return rep, err
	}

	key, shifts, err := keyrec.RecoverKey(seq, est.Length, lang)
	if err != nil {
		return rep, err
	}
	plain, err := cipher.Decipher(seq, key)
	if err != nil {
		return rep, err
	}
	rep.KeyLength = est.Length
	rep.Key = key
	rep.Shifts = shifts
	rep.Eval = a.eval.Run(plain, shifts, lang)

	if req.PreserveFormat {
		text, err := cipher.DecipherText(req.Text, key, a.Normalizer())
		if err != nil {
			return rep, err
		}
		rep.Plaintext = text
	} else {
		rep.Plaintext = plain.String()
	}
	return rep, nil
}

// plan lists the profile codes to try for language.
func (a *Analyzer) plan(language string) ([]string, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == LanguageAuto {
		codes := a.registry.Codes()
		if len(codes) == 0 {
			return nil, fmt.Errorf("analyze: no language profiles registered")
		}
		return codes, nil
	}
	lang, err := a.registry.Lookup(language)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return []string{lang.Code}, nil
}

// better prefers attempts that passed evaluation, then the smaller distance.
func better(candidate, current Attempt) bool {
	if candidate.EvalPassed != current.EvalPassed {
		return candidate.EvalPassed
	}
	return candidate.Distance < current.Distance
}

// #endregion

// #region analyze-all

// AnalyzeAll runs req once per registered profile, concurrently.
// Outcomes are ordered by profile code.
func (a *Analyzer) AnalyzeAll(req Request) []Outcome {
	codes := a.registry.Codes()
	out := make([]Outcome, len(codes))
	var wg sync.WaitGroup
	for i, code := range codes {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			r := req
			r.Language = code
			rep, err := a.Analyze(r)
			out[i] = Outcome{Language: code, Report: rep, Err: err}
		}(i, code)
	}
	wg.Wait()
	return out
}

// #endregion

// #region encipher-decipher

// Decipher applies key to text with the analyzer's normalizer. With preserve
// set, the result keeps the layout of text; otherwise it is bare letters.
func (a *Analyzer) Decipher(text string, key alphabet.Key, preserve bool) (string, error) {
	if preserve {
		return cipher.DecipherText(text, key, a.Normalizer())
	}
	plain, err := cipher.Decipher(a.Normalizer().Normalize(text), key)
	if err != nil {
		return "", err
	}
	return plain.String(), nil
}

// Encipher is the inverse of Decipher. Plaintext goes through
// PlaintextNormalizer, so the result never carries accented letters.
func (a *Analyzer) Encipher(text string, key alphabet.Key, preserve bool) (string, error) {
	n := a.PlaintextNormalizer()
	if preserve {
		return cipher.EncipherText(text, key, n)
	}
	ct, err := cipher.Encipher(n.Normalize(text), key)
	if err != nil {
		return "", err
	}
	return ct.String(), nil
}

// #endregion
