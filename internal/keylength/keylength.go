package keylength

import (
	"fmt"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/stats"
)

// #region config

const (
	// MinLength is the smallest key length that can be accepted.
	MinLength = 2
	// MaxWindow is the largest key length ever probed.
	MaxWindow = 20
	// DefaultMaxLength is used when the caller passes 0.
	DefaultMaxLength = MaxWindow
)

// #endregion config

// #region types

// Candidate is the averaged IC of the residue classes for one key length.
type Candidate struct {
	Length    int     `json:"length"`
	AverageIC float64 `json:"average_ic"`
	Classes   int     `json:"classes"`  // classes that contributed to the average
	Excluded  int     `json:"excluded"` // classes shorter than 2 symbols
}

// Result is the outcome of Estimate. Length is 0 when nothing qualified.
type Result struct {
	Length     int
	Threshold  float64
	Candidates []Candidate // every length probed, in order, starting at 1
	// Monoalphabetic reports that the text already beats the threshold with
	// no period at all (plain text or a single Caesar shift).
	Monoalphabetic bool
}

// #endregion types

// #region estimate

// Estimate returns the smallest length in [MinLength, maxLength] whose average
// residue-class IC is strictly greater than lang.IC. Scanning stops at the first
// qualifying length: multiples of the true period also qualify, so the smallest
// is preferred. Length 1 is probed only to set Monoalphabetic.
//
// maxLength 0 means DefaultMaxLength; larger values are clamped to MaxWindow.
func Estimate(seq alphabet.Sequence, lang profile.Language, maxLength int) (Result, error) {
	res := Result{Threshold: lang.IC}
	if len(seq) == 0 {
		return res, fmt.Errorf("estimate key length: %w", errkind.ErrEmptyInput)
	}
	maxLength, err := window(maxLength)
	if err != nil {
		return res, err
	}

	first := Probe(seq, 1)
	res.Candidates = append(res.Candidates, first)
	res.Monoalphabetic = first.Classes > 0 && first.AverageIC > lang.IC

	for length := MinLength; length <= maxLength; length++ {
		c := Probe(seq, length)
		res.Candidates = append(res.Candidates, c)
		if c.Classes > 0 && c.AverageIC > lang.IC {
			res.Length = length
			return res, nil
		}
	}
	return res, fmt.Errorf("estimate key length: no length in [%d, %d] exceeds IC %.4f: %w",
		MinLength, maxLength, lang.IC, errkind.ErrKeyLengthNotFound)
}

// Scan probes every length from 1 to maxLength without stopping early.
func Scan(seq alphabet.Sequence, maxLength int) ([]Candidate, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("scan key lengths: %w", errkind.ErrEmptyInput)
	}
	maxLength, err := window(maxLength)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, maxLength)
	for length := 1; length <= maxLength; length++ {
		out = append(out, Probe(seq, length))
	}
	return out, nil
}

// Probe averages the IC of the residue classes of seq modulo length.
// Classes with fewer than 2 symbols are left out of the average.
func Probe(seq alphabet.Sequence, length int) Candidate {
	c := Candidate{Length: length}
	var sum float64
	for i := 0; i < length; i++ {
		ic, err := stats.IndexOfCoincidence(seq.Column(i, length))
		if err != nil {
			c.Excluded++
			continue
		}
		sum += ic
		c.Classes++
	}
	if c.Classes > 0 {
		c.AverageIC = sum / float64(c.Classes)
	}
	return c
}

func window(maxLength int) (int, error) {
	if maxLength == 0 {
		return DefaultMaxLength, nil
	}
	if maxLength < MinLength {
		return 0, fmt.Errorf("max key length %d below %d: %w", maxLength, MinLength, errkind.ErrInvalidKeyLength)
	}
	if maxLength > MaxWindow {
		return MaxWindow, nil
	}
	return maxLength, nil
}

// #endregion estimate
