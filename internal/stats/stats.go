package stats

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

// #region counts

// Counts holds raw occurrences per alphabet symbol.
type Counts [alphabet.Size]int

// Count tallies every symbol of seq.
func Count(seq alphabet.Sequence) Counts {
	var c Counts
	for _, s := range seq {
		c[s]++
	}
	return c
}

// Total returns the number of symbols counted.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Percentages converts counts into a profile summing to 100.
func (c Counts) Percentages() (Profile, error) {
	total := c.Total()
	if total == 0 {
		return Profile{}, fmt.Errorf("percentages: %w", errkind.ErrEmptyInput)
	}
	var p Profile
	for i, v := range c {
		p[i] = float64(v) / float64(total) * 100
	}
	return p, nil
}

// IC is the index of coincidence of the counted sequence:
// Σ n(n-1) / (N(N-1)). It needs at least two symbols.
func (c Counts) IC() (float64, error) {
	total := c.Total()
	if total < 2 {
		return 0, fmt.Errorf("index of coincidence: need at least 2 symbols, have %d: %w",
			total, errkind.ErrEmptyInput)
	}
	var sum float64
	for _, n := range c {
		sum += float64(n) * float64(n-1)
	}
	return sum / (float64(total) * float64(total-1)), nil
}

// IndexOfCoincidence is Count(seq).IC().
func IndexOfCoincidence(seq alphabet.Sequence) (float64, error) {
	return Count(seq).IC()
}

// #endregion counts

// #region profile

// Profile is a frequency vector over the alphabet, usually in percent.
type Profile [alphabet.Size]float64

// Sum adds up all slots.
func (p Profile) Sum() float64 {
	var s float64
	for _, v := range p {
		s += v
	}
	return s
}

// Rotate returns the profile seen after deciphering with shift k:
// slot i of the result is slot (i+k) mod Size of p.
func (p Profile) Rotate(k int) Profile {
	var out Profile
	for i := range out {
		out[i] = p[alphabet.Symbol(i).Shift(k)]
	}
	return out
}

// Correlation is the dot product of p and ref. Higher means closer.
func (p Profile) Correlation(ref Profile) float64 {
	var s float64
	for i := range p {
		s += p[i] * ref[i]
	}
	return s
}

// Distance is the sum of absolute differences. Lower means closer.
func (p Profile) Distance(ref Profile) float64 {
	var s float64
	for i := range p {
		s += math.Abs(p[i] - ref[i])
	}
	return s
}

// #endregion profile

// #region uniform

// UniformIC is the IC of text drawn uniformly at random from the alphabet.
const UniformIC = 1.0 / alphabet.Size

// #endregion uniform
