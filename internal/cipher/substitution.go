package cipher

import (
	"fmt"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

// #region substitution

// Mapping sends one ciphertext letter to one plaintext letter.
type Mapping struct {
	From rune
	To   rune
}

// Substitution is a partial monoalphabetic substitution. Unmapped symbols
// pass through unchanged.
type Substitution struct {
	table  [alphabet.Size]alphabet.Symbol
	mapped [alphabet.Size]bool
}

// NewSubstitution builds a table from mappings. Both sides must be letters,
// and a source letter may appear only once.
func NewSubstitution(mappings []Mapping) (*Substitution, error) {
	sub := &Substitution{}
	for i := range sub.table {
		sub.table[i] = alphabet.Symbol(i)
	}
	for _, m := range mappings {
		from, ok := alphabet.FromRune(m.From)
		if !ok {
			return nil, fmt.Errorf("substitution: source %q is not a letter", m.From)
		}
		to, ok := alphabet.FromRune(m.To)
		if !ok {
			return nil, fmt.Errorf("substitution: target %q is not a letter", m.To)
		}
		if sub.mapped[from] {
			return nil, fmt.Errorf("substitution: %c mapped twice: %w", from.Rune(), errkind.ErrDuplicateMapping)
		}
		sub.table[from] = to
		sub.mapped[from] = true
	}
	return sub, nil
}

// Apply substitutes every symbol of seq.
func (s *Substitution) Apply(seq alphabet.Sequence) alphabet.Sequence {
	out := make(alphabet.Sequence, len(seq))
	for i, sym := range seq {
		out[i] = s.table[sym]
	}
	return out
}

// Mapped reports whether sym has an explicit mapping.
func (s *Substitution) Mapped(sym alphabet.Symbol) bool {
	return s.mapped[sym]
}

// #endregion substitution
