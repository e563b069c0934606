package alphabet

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

// #region normalize

// Normalize keeps the ASCII letters of raw, uppercased, and drops everything else.
func Normalize(raw string) Sequence {
	return Normalizer{}.Normalize(raw)
}

// Normalizer turns raw text into a Sequence.
type Normalizer struct {
	// FoldDiacritics maps accented Latin letters onto their base letter
	// (é → E, Ç → C) instead of dropping them.
	FoldDiacritics bool
}

// Normalize strips raw to its letters. It never fails.
func (n Normalizer) Normalize(raw string) Sequence {
	raw = n.fold(raw)
	seq := make(Sequence, 0, len(raw))
	for _, r := range raw {
		if s, ok := FromRune(r); ok {
			seq = append(seq, s)
		}
	}
	return seq
}

// fold removes combining marks after canonical decomposition, one rune at a time,
// so the folded text keeps a rune-for-rune correspondence with raw.
func (n Normalizer) fold(raw string) string {
	if !n.FoldDiacritics {
		return raw
	}
	f := newFolder()
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		b.WriteRune(f.fold(r))
	}
	return b.String()
}

// folder strips combining marks from single runes. One folder serves a whole
// text; it is not safe for concurrent use.
type folder struct {
	t transform.Transformer
}

func newFolder() *folder {
	return &folder{t: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)}
}

func (f *folder) fold(r rune) rune {
	if r < unicode.MaxASCII {
		return r
	}
	// transform.String resets the chain before use
	out, _, err := transform.String(f.t, string(r))
	if err != nil {
		return r
	}
	folded := []rune(out)
	if len(folded) != 1 {
		return r
	}
	return folded[0]
}

// #endregion normalize

// #region layout

// slot describes one rune of the raw text.
type slot struct {
	letter bool
	lower  bool
	raw    rune
}

// Layout remembers where the letters of a raw text were so a deciphered
// sequence can be put back into the original spacing, punctuation and case.
type Layout struct {
	slots   []slot
	letters int
}

// Letters returns how many symbols the layout expects.
func (l Layout) Letters() int {
	return l.letters
}

// Layout normalizes raw and records the position and case of every kept letter.
func (n Normalizer) Layout(raw string) (Sequence, Layout) {
	var l Layout
	var f *folder
	if n.FoldDiacritics {
		f = newFolder()
	}
	seq := make(Sequence, 0, len(raw))
	for _, r := range raw {
		folded := r
		if f != nil {
			folded = f.fold(r)
		}
		s, ok := FromRune(folded)
		if !ok {
			l.slots = append(l.slots, slot{raw: r})
			continue
		}
		seq = append(seq, s)
		l.slots = append(l.slots, slot{letter: true, lower: folded >= 'a'})
		l.letters++
	}
	return seq, l
}

// Reassemble writes plain back into the layout. Non-letters are copied
// verbatim and each letter takes the case of the letter it replaces.
func (l Layout) Reassemble(plain Sequence) (string, error) {
	if len(plain) != l.letters {
		return "", fmt.Errorf("reassemble: have %d symbols, layout holds %d: %w",
			len(plain), l.letters, errkind.ErrLayoutMismatch)
	}
	var b strings.Builder
	b.Grow(len(l.slots))
	p := 0
	for _, s := range l.slots {
		if !s.letter {
			b.WriteRune(s.raw)
			continue
		}
		r := plain[p].Rune()
		if s.lower {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
		p++
	}
	return b.String(), nil
}

// #endregion layout
