package alphabet

import (
	"errors"
	"testing"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

// #region symbol-tests

func TestSymbolShift_Wraps(t *testing.T) {
	cases := []struct {
		s    Symbol
		k    int
		want Symbol
	}{
		{0, 1, 1},
		{25, 1, 0},
		{0, -1, 25},
		{3, -29, 0},
		{7, 52, 7},
	}
	for _, c := range cases {
		if got := c.s.Shift(c.k); got != c.want {
			t.Errorf("Symbol(%d).Shift(%d) = %d, want %d", c.s, c.k, got, c.want)
		}
	}
}

func TestFromRune(t *testing.T) {
	if s, ok := FromRune('a'); !ok || s != 0 {
		t.Errorf("FromRune('a') = %d,%v", s, ok)
	}
	if s, ok := FromRune('Z'); !ok || s != 25 {
		t.Errorf("FromRune('Z') = %d,%v", s, ok)
	}
	for _, r := range []rune{'@', '[', '`', '{', ' ', 'é', '0'} {
		if _, ok := FromRune(r); ok {
			t.Errorf("FromRune(%q) should not be a letter", r)
		}
	}
}

// #endregion symbol-tests

// #region column-tests

func TestColumn_ResidueClasses(t *testing.T) {
	seq := Normalize("ABCDEFGHIJ")
	cases := []struct {
		i, length int
		want      string
	}{
		{0, 3, "ADGJ"},
		{1, 3, "BEH"},
		{2, 3, "CFI"},
		{0, 1, "ABCDEFGHIJ"},
		{9, 20, "J"},
		{10, 20, ""},
		{3, 3, ""},
	}
	for _, c := range cases {
		col := seq.Column(c.i, c.length)
		if col.String() != c.want {
			t.Errorf("Column(%d,%d) = %q, want %q", c.i, c.length, col.String(), c.want)
		}
		if n := seq.ColumnLen(c.i, c.length); n != len(c.want) {
			t.Errorf("ColumnLen(%d,%d) = %d, want %d", c.i, c.length, n, len(c.want))
		}
	}
}

func TestColumn_DoesNotAlias(t *testing.T) {
	seq := Normalize("ABCDEF")
	col := seq.Column(0, 2)
	col[0] = 25
	if seq[0] != 0 {
		t.Fatal("Column must copy, source sequence was modified")
	}
}

func TestSplitInterleave_RoundTrip(t *testing.T) {
	seq := Normalize("thequickbrownfoxjumpsoverthelazydog")
	for length := 1; length <= 40; length++ {
		back, err := Interleave(seq.Split(length))
		if err != nil {
			t.Fatalf("length %d: %v", length, err)
		}
		if back.String() != seq.String() {
			t.Fatalf("length %d: got %s, want %s", length, back, seq)
		}
	}
}

func TestInterleave_UnevenColumnsRejected(t *testing.T) {
	cols := []Sequence{Normalize("AB"), Normalize("CDE")}
	_, err := Interleave(cols)
	if !errors.Is(err, errkind.ErrLayoutMismatch) {
		t.Fatalf("expected ErrLayoutMismatch, got %v", err)
	}
}

func TestInterleave_Empty(t *testing.T) {
	out, err := Interleave(nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("Interleave(nil) = %v, %v", out, err)
	}
}

// #endregion column-tests

// #region key-tests

func TestParseKey(t *testing.T) {
	k, err := ParseKey("cLe")
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	if k.String() != "CLE" {
		t.Errorf("expected CLE, got %s", k)
	}
	if k[0] != 2 || k[1] != 11 || k[2] != 4 {
		t.Errorf("unexpected shifts %v", k)
	}
}

func TestParseKey_Empty(t *testing.T) {
	if _, err := ParseKey(""); !errors.Is(err, errkind.ErrInvalidKeyLength) {
		t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
	}
}

func TestParseKey_NonLetter(t *testing.T) {
	if _, err := ParseKey("KE Y"); err == nil {
		t.Fatal("expected error for key with a space")
	}
}

// #endregion key-tests
