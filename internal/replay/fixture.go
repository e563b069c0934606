package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/cipher"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/store"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Cases       []FixtureCase `json:"cases"`

	dir string // plaintext_file paths resolve against this
}

// FixtureCase is one analysis request and what it must produce. The
// ciphertext is either given directly or made at load time by enciphering
// plaintext (inline or from plaintext_file) with encipher_key.
type FixtureCase struct {
	ID            string          `json:"id"`
	Language      string          `json:"language"`
	MaxKeyLength  int             `json:"max_key_length,omitempty"`
	Ciphertext    string          `json:"ciphertext,omitempty"`
	Plaintext     string          `json:"plaintext,omitempty"`
	PlaintextFile string          `json:"plaintext_file,omitempty"`
	EncipherKey   string          `json:"encipher_key,omitempty"`
	Expected      FixtureExpected `json:"expected"`
}

// FixtureExpected lists the checked outputs. Zero values are not checked,
// except that an empty error_code requires success.
type FixtureExpected struct {
	Language  string `json:"language,omitempty"`
	KeyLength int    `json:"key_length,omitempty"`
	Key       string `json:"key,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return &f, nil
}

// ToCases resolves every fixture case into a runnable Case, enciphering
// plaintext cases with n so the ciphertext matches what the analyzer sees.
func (f *Fixture) ToCases(n alphabet.Normalizer) ([]Case, error) {
	out := make([]Case, 0, len(f.Cases))
	for i := range f.Cases {
		c, err := f.Cases[i].toCase(f.dir, n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (fc *FixtureCase) toCase(dir string, n alphabet.Normalizer) (Case, error) {
	c := Case{
		ID:           fc.ID,
		Language:     fc.Language,
		MaxKeyLength: fc.MaxKeyLength,
		Ciphertext:   fc.Ciphertext,
		Expected: Expected{
			Language:  fc.Expected.Language,
			KeyLength: fc.Expected.KeyLength,
			Key:       fc.Expected.Key,
			ErrorCode: errkind.Code(fc.Expected.ErrorCode),
		},
	}
	if fc.EncipherKey == "" {
		if fc.Plaintext != "" || fc.PlaintextFile != "" {
			return Case{}, fmt.Errorf("case %s: plaintext given without encipher_key", fc.ID)
		}
		return c, nil
	}
	if fc.Ciphertext != "" {
		return Case{}, fmt.Errorf("case %s: both ciphertext and encipher_key given", fc.ID)
	}

	plain := fc.Plaintext
	if fc.PlaintextFile != "" {
		data, err := os.ReadFile(filepath.Join(dir, fc.PlaintextFile))
		if err != nil {
			return Case{}, fmt.Errorf("case %s: read plaintext: %w", fc.ID, err)
		}
		plain = string(data)
	}
	key, err := alphabet.ParseKey(fc.EncipherKey)
	if err != nil {
		return Case{}, fmt.Errorf("case %s: %w", fc.ID, err)
	}
	ct, err := cipher.Encipher(n.Normalize(plain), key)
	if err != nil {
		return Case{}, fmt.Errorf("case %s: encipher: %w", fc.ID, err)
	}
	c.Ciphertext = ct.String()
	return c, nil
}

// #endregion fixture-loader

// #region fixture-export

// FromRuns builds a fixture whose expectations are the stored outcomes,
// so a later replay flags any drift.
func FromRuns(description string, runs []store.Run) Fixture {
	f := Fixture{Description: description}
	for _, r := range runs {
		fc := FixtureCase{
			ID:           r.RunID,
			Language:     r.Language,
			MaxKeyLength: r.MaxKeyLength,
			Ciphertext:   r.Ciphertext,
		}
		if r.Failed() {
			fc.Expected.ErrorCode = r.ErrorCode
		} else {
			fc.Expected = FixtureExpected{Language: r.Language, KeyLength: r.KeyLength, Key: r.Key}
		}
		f.Cases = append(f.Cases, fc)
	}
	return f
}

// CaseFromRun turns a stored run back into a case expecting the same outcome.
// Runs analyzed in auto mode record the winning profile, so the case pins it.
func CaseFromRun(r store.Run) Case {
	c := Case{
		ID:           r.RunID,
		Language:     r.Language,
		MaxKeyLength: r.MaxKeyLength,
		Ciphertext:   r.Ciphertext,
	}
	if r.Failed() {
		c.Expected.ErrorCode = errkind.Code(r.ErrorCode)
	} else {
		c.Expected = Expected{Language: r.Language, KeyLength: r.KeyLength, Key: r.Key}
	}
	return c
}

// #endregion fixture-export
