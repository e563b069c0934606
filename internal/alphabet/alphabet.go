package alphabet

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

// #region symbol

// Size is the number of symbols in the canonical alphabet.
const Size = 26

// Symbol is an alphabet index in [0, Size). 0 is 'A'.
type Symbol uint8

// Rune returns the uppercase letter for s.
func (s Symbol) Rune() rune {
	return rune('A' + s%Size)
}

// Shift returns s moved by k positions, wrapping around the alphabet.
// k may be negative.
func (s Symbol) Shift(k int) Symbol {
	v := (int(s) + k) % Size
	if v < 0 {
		v += Size
	}
	return Symbol(v)
}

// FromRune converts an ASCII letter of either case to its Symbol.
func FromRune(r rune) (Symbol, bool) {
	switch {
	case 'A' <= r && r <= 'Z':
		return Symbol(r - 'A'), true
	case 'a' <= r && r <= 'z':
		return Symbol(r - 'a'), true
	}
	return 0, false
}

// #endregion symbol

// #region sequence

// Sequence is a normalized symbol stream. Analysis code only reads it.
type Sequence []Symbol

// String renders the sequence as uppercase letters.
func (q Sequence) String() string {
	var b strings.Builder
	b.Grow(len(q))
	for _, s := range q {
		b.WriteRune(s.Rune())
	}
	return b.String()
}

// ColumnLen returns how many positions p in [0, len(q)) satisfy p ≡ i (mod length).
func (q Sequence) ColumnLen(i, length int) int {
	if length <= 0 || i < 0 || i >= length || i >= len(q) {
		return 0
	}
	return (len(q)-i-1)/length + 1
}

// Column copies residue class i modulo length: positions i, i+length, i+2*length, ...
func (q Sequence) Column(i, length int) Sequence {
	n := q.ColumnLen(i, length)
	col := make(Sequence, n)
	for j := 0; j < n; j++ {
		col[j] = q[i+j*length]
	}
	return col
}

// Split returns the length residue classes of q.
func (q Sequence) Split(length int) []Sequence {
	if length <= 0 {
		return nil
	}
	cols := make([]Sequence, length)
	for i := range cols {
		cols[i] = q.Column(i, length)
	}
	return cols
}

// Interleave is the inverse of Split: symbol j of column i lands at position i + j*len(cols).
// Column lengths must be what Split would produce for the combined length.
func Interleave(cols []Sequence) (Sequence, error) {
	length := len(cols)
	if length == 0 {
		return Sequence{}, nil
	}
	total := 0
	for _, c := range cols {
		total += len(c)
	}
	out := make(Sequence, total)
	for i, c := range cols {
		if want := out.ColumnLen(i, length); len(c) != want {
			return nil, fmt.Errorf("interleave column %d: have %d symbols, want %d: %w",
				i, len(c), want, errkind.ErrLayoutMismatch)
		}
		for j, s := range c {
			out[i+j*length] = s
		}
	}
	return out, nil
}

// #endregion sequence

// #region key

// Key is a repeating key; each symbol is the shift applied at its position (A = 0).
type Key []Symbol

// ParseKey reads a key made only of letters. Case is ignored.
func ParseKey(s string) (Key, error) {
	if s == "" {
		return nil, fmt.Errorf("parse key: %w", errkind.ErrInvalidKeyLength)
	}
	key := make(Key, 0, len(s))
	for _, r := range s {
		sym, ok := FromRune(r)
		if !ok {
			return nil, fmt.Errorf("parse key: %q is not a letter", r)
		}
		key = append(key, sym)
	}
	return key, nil
}

// String renders the key as uppercase letters.
func (k Key) String() string {
	return Sequence(k).String()
}

// #endregion key
