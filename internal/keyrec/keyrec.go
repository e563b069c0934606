package keyrec

import (
	"fmt"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/stats"
)

// #region types

// Shift is the recovered Caesar offset of one column together with the
// score of every candidate offset.
type Shift struct {
	Value       alphabet.Symbol
	Correlation [alphabet.Size]float64 // higher is better; decides Value
	Distance    [alphabet.Size]float64 // lower is better; diagnostic only
}

// Margin is the gap between the winning correlation and the runner-up.
func (s Shift) Margin() float64 {
	best := s.Correlation[s.Value]
	second := 0.0
	found := false
	for i, v := range s.Correlation {
		if alphabet.Symbol(i) == s.Value {
			continue
		}
		if !found || v > second {
			second = v
			found = true
		}
	}
	return best - second
}

// #endregion types

// #region caesar

// CaesarShift finds the offset k that makes seq, deciphered by k, correlate best
// with the language's letter frequencies. Ties go to the lowest k.
func CaesarShift(seq alphabet.Sequence, lang profile.Language) (Shift, error) {
	observed, err := stats.Count(seq).Percentages()
	if err != nil {
		return Shift{}, fmt.Errorf("caesar shift: %w", err)
	}
	var res Shift
	for k := 0; k < alphabet.Size; k++ {
		hypothesis := observed.Rotate(k)
		res.Correlation[k] = hypothesis.Correlation(lang.Frequencies)
		res.Distance[k] = hypothesis.Distance(lang.Frequencies)
		if res.Correlation[k] > res.Correlation[res.Value] {
			res.Value = alphabet.Symbol(k)
		}
	}
	return res, nil
}

// #endregion caesar

// #region vigenere

// RecoverKey solves each residue class of seq modulo length as an independent
// Caesar cipher and returns the key letters in order.
func RecoverKey(seq alphabet.Sequence, length int, lang profile.Language) (alphabet.Key, []Shift, error) {
	if length <= 0 || length > len(seq) {
		return nil, nil, fmt.Errorf("recover key: length %d for %d symbols: %w",
			length, len(seq), errkind.ErrInvalidKeyLength)
	}
	key := make(alphabet.Key, length)
	shifts := make([]Shift, length)
	for i := 0; i < length; i++ {
		s, err := CaesarShift(seq.Column(i, length), lang)
		if err != nil {
			return nil, nil, fmt.Errorf("recover key column %d: %w", i, err)
		}
		key[i] = s.Value
		shifts[i] = s
	}
	return key, shifts, nil
}

// #endregion vigenere
