package replay

import (
	"fmt"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/analysis"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

// #region types
// Case is a single replayable analysis request.
type Case struct {
	ID           string
	Language     string
	MaxKeyLength int
	Ciphertext   string
	Expected     Expected
}

// Expected is the outcome a case must reproduce.
type Expected struct {
	Language  string
	KeyLength int
	Key       string
	ErrorCode errkind.Code
}

// Result captures the outcome of replaying one case.
type Result struct {
	ID         string
	Report     analysis.Report
	Err        error
	Passed     bool
	Mismatches []string
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total     int
	Passed    int
	Failed    int
	Recovered int // cases that produced a key
	NotFound  int // cases ending in key_length_not_found
	Errors    int // any other error
}

// #endregion types

// #region replay
// Replay runs every case through the analyzer in order and checks it against
// its expectations. It never stops early.
func Replay(a *analysis.Analyzer, cases []Case) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		language := c.Language
		if language == "" {
			language = analysis.LanguageAuto
		}
		rep, err := a.Analyze(analysis.Request{
			Text:         c.Ciphertext,
			Language:     language,
			MaxKeyLength: c.MaxKeyLength,
		})
		res := Result{ID: c.ID, Report: rep, Err: err}
		res.Mismatches = check(c.Expected, rep, err)
		res.Passed = len(res.Mismatches) == 0
		results = append(results, res)
	}
	return results
}

func check(want Expected, rep analysis.Report, err error) []string {
	var out []string
	got := errkind.Classify(err)
	if got != want.ErrorCode {
		out = append(out, fmt.Sprintf("error_code: want %q, got %q (%v)", want.ErrorCode, got, err))
	}
	if err != nil {
		return out
	}
	if want.Language != "" && rep.Language != want.Language {
		out = append(out, fmt.Sprintf("language: want %s, got %s", want.Language, rep.Language))
	}
	if want.KeyLength != 0 && rep.KeyLength != want.KeyLength {
		out = append(out, fmt.Sprintf("key_length: want %d, got %d", want.KeyLength, rep.KeyLength))
	}
	if want.Key != "" && rep.Key.String() != want.Key {
		out = append(out, fmt.Sprintf("key: want %s, got %s", want.Key, rep.Key))
	}
	return out
}

// #endregion replay

// #region summarize
// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		switch errkind.Classify(r.Err) {
		case errkind.CodeNone:
			s.Recovered++
		case errkind.CodeKeyLengthNotFound:
			s.NotFound++
		default:
			s.Errors++
		}
	}
	return s
}

// #endregion summarize
