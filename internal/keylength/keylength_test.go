package keylength

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/cipher"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/profile"
)

// #region helpers

func language(t *testing.T, code string) profile.Language {
	t.Helper()
	r, err := profile.Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	lang, err := r.Lookup(code)
	if err != nil {
		t.Fatalf("Lookup %s: %v", code, err)
	}
	return lang
}

// enciphered loads a sample passage and enciphers it with key.
func enciphered(t *testing.T, name, key string) alphabet.Sequence {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	plain := alphabet.Normalizer{FoldDiacritics: true}.Normalize(string(data))
	k, err := alphabet.ParseKey(key)
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	ct, err := cipher.Encipher(plain, k)
	if err != nil {
		t.Fatalf("Encipher: %v", err)
	}
	return ct
}

// #endregion helpers

// #region estimate-tests

func TestEstimate_RecoversKnownLengths(t *testing.T) {
	eng := language(t, "eng")
	fra := language(t, "fra")
	cases := []struct {
		file string
		lang profile.Language
		key  string
	}{
		{"english.txt", eng, "KEY"},
		{"english.txt", eng, "AB"},
		{"english.txt", eng, "LEMON"},
		{"english.txt", eng, "VIGENERE"},
		{"english.txt", eng, "SECRETKEY"},
		{"english.txt", eng, "CRYPTOGRAPHY"},
		{"english.txt", eng, "LONGERKEYWORDSTWENTY"},
		{"french.txt", fra, "CLE"},
		{"french.txt", fra, "LEMON"},
		{"french.txt", fra, "CRYPTOGRAPHY"},
	}
	for _, c := range cases {
		res, err := Estimate(enciphered(t, c.file, c.key), c.lang, 20)
		if err != nil {
			t.Errorf("%s/%s: %v", c.file, c.key, err)
			continue
		}
		if res.Length != len(c.key) {
			t.Errorf("%s/%s: expected length %d, got %d", c.file, c.key, len(c.key), res.Length)
		}
		if res.Monoalphabetic {
			t.Errorf("%s/%s: polyalphabetic text reported as monoalphabetic", c.file, c.key)
		}
		// candidates 1..Length were probed and nothing after
		if len(res.Candidates) != res.Length {
			t.Errorf("%s/%s: expected %d candidates, got %d", c.file, c.key, res.Length, len(res.Candidates))
		}
	}
}

func TestEstimate_Empty(t *testing.T) {
	_, err := Estimate(nil, language(t, "eng"), 20)
	if !errors.Is(err, errkind.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestEstimate_RepeatedLetterAcceptsSmallestLength(t *testing.T) {
	seq := alphabet.Normalize(strings.Repeat("A", 100))
	res, err := Estimate(seq, language(t, "fra"), 20)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Length != 2 {
		t.Errorf("expected length 2, got %d", res.Length)
	}
	if !res.Monoalphabetic {
		t.Error("expected Monoalphabetic for a single repeated letter")
	}
}

func TestEstimate_SingleShiftIsMonoalphabetic(t *testing.T) {
	res, err := Estimate(enciphered(t, "english.txt", "Z"), language(t, "eng"), 20)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !res.Monoalphabetic {
		t.Error("expected Monoalphabetic for a Caesar-shifted text")
	}
	if res.Length != 2 {
		t.Errorf("expected smallest acceptable length 2, got %d", res.Length)
	}
}

func TestEstimate_NotFound(t *testing.T) {
	// English letter statistics never reach the French threshold.
	res, err := Estimate(enciphered(t, "english.txt", "KEY"), language(t, "fra"), 20)
	if !errors.Is(err, errkind.ErrKeyLengthNotFound) {
		t.Fatalf("expected ErrKeyLengthNotFound, got %v", err)
	}
	if res.Length != 0 {
		t.Errorf("expected length 0 on failure, got %d", res.Length)
	}
	if len(res.Candidates) != 20 {
		t.Errorf("expected candidates for lengths 1..20, got %d", len(res.Candidates))
	}
}

func TestEstimate_WindowTooSmall(t *testing.T) {
	for _, n := range []int{1, -1, -3} {
		_, err := Estimate(alphabet.Normalize("ABCDEF"), language(t, "eng"), n)
		if !errors.Is(err, errkind.ErrInvalidKeyLength) {
			t.Errorf("window %d: expected ErrInvalidKeyLength, got %v", n, err)
		}
	}
}

func TestEstimate_ZeroWindowUsesDefault(t *testing.T) {
	res, err := Estimate(enciphered(t, "english.txt", "CRYPTOGRAPHY"), language(t, "eng"), 0)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Length != 12 || len(res.Candidates) < 12 {
		t.Errorf("expected length 12 within the default window, got %d", res.Length)
	}
}

func TestEstimate_SmallerWindowMissesLongKey(t *testing.T) {
	_, err := Estimate(enciphered(t, "english.txt", "CRYPTOGRAPHY"), language(t, "eng"), 10)
	if !errors.Is(err, errkind.ErrKeyLengthNotFound) {
		t.Fatalf("expected ErrKeyLengthNotFound with window 10, got %v", err)
	}
}

func TestEstimate_ShortCiphertextDoesNotFail(t *testing.T) {
	// Most residue classes hold fewer than 2 symbols for large lengths.
	res, err := Estimate(alphabet.Normalize("XQZJVKWPBM"), language(t, "eng"), 20)
	if !errors.Is(err, errkind.ErrKeyLengthNotFound) {
		t.Fatalf("expected ErrKeyLengthNotFound, got %v", err)
	}
	last := res.Candidates[len(res.Candidates)-1]
	if last.Length != 20 || last.Classes != 0 || last.Excluded != 20 || last.AverageIC != 0 {
		t.Errorf("unexpected candidate for length 20: %+v", last)
	}
}

// #endregion estimate-tests

// #region probe-tests

func TestProbe_ExcludesShortClasses(t *testing.T) {
	// length 4 over 6 symbols: classes AA, BB, C, D
	c := Probe(alphabet.Normalize("ABCDAB"), 4)
	if c.Classes != 2 || c.Excluded != 2 {
		t.Fatalf("expected 2 classes and 2 excluded, got %+v", c)
	}
	if c.AverageIC != 1.0 {
		t.Errorf("expected average IC 1.0, got %v", c.AverageIC)
	}
}

func TestScan_ClampsWindow(t *testing.T) {
	cands, err := Scan(enciphered(t, "english.txt", "KEY"), 50)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(cands) != MaxWindow {
		t.Fatalf("expected %d candidates, got %d", MaxWindow, len(cands))
	}
	for i, c := range cands {
		if c.Length != i+1 {
			t.Errorf("candidate %d has length %d", i, c.Length)
		}
	}
	// multiples of the period stand out from the rest
	if cands[2].AverageIC <= cands[1].AverageIC || cands[5].AverageIC <= cands[4].AverageIC {
		t.Errorf("expected peaks at multiples of 3: %+v", cands[:6])
	}
}

func TestScan_Empty(t *testing.T) {
	if _, err := Scan(nil, 20); !errors.Is(err, errkind.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

// #endregion probe-tests
