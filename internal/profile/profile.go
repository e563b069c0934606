package profile

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/stats"
)

//go:embed builtin/*.yaml
var builtinProfiles embed.FS

// #region types

// Language is a reference profile: expected letter frequencies (percent)
// and the expected index of coincidence of plain text in that language.
type Language struct {
	Code        string
	Name        string
	IC          float64
	Frequencies stats.Profile
}

// languageFile is the on-disk YAML form of a Language.
type languageFile struct {
	Code        string    `yaml:"code"`
	Name        string    `yaml:"name"`
	IC          float64   `yaml:"ic"`
	Frequencies []float64 `yaml:"frequencies"`
}

// sumTolerance is how far published frequency tables may drift from 100%.
const sumTolerance = 1.0

// #endregion types

// #region parse

// Parse decodes and validates one YAML language profile.
func Parse(data []byte) (Language, error) {
	var f languageFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Language{}, fmt.Errorf("parse profile: %w", err)
	}
	f.Code = strings.ToLower(strings.TrimSpace(f.Code))
	if f.Code == "" {
		return Language{}, errors.New("parse profile: missing code")
	}
	if len(f.Frequencies) != alphabet.Size {
		return Language{}, fmt.Errorf("profile %s: have %d frequencies, want %d",
			f.Code, len(f.Frequencies), alphabet.Size)
	}
	if f.IC <= 0 || f.IC > 1 {
		return Language{}, fmt.Errorf("profile %s: ic %v out of (0, 1]", f.Code, f.IC)
	}
	lang := Language{Code: f.Code, Name: f.Name, IC: f.IC}
	for i, v := range f.Frequencies {
		if v < 0 {
			return Language{}, fmt.Errorf("profile %s: negative frequency for %c", f.Code, alphabet.Symbol(i).Rune())
		}
		lang.Frequencies[i] = v
	}
	if sum := lang.Frequencies.Sum(); math.Abs(sum-100) > sumTolerance {
		return Language{}, fmt.Errorf("profile %s: frequencies sum to %.2f, want 100", f.Code, sum)
	}
	if lang.Name == "" {
		lang.Name = lang.Code
	}
	return lang, nil
}

// #endregion parse

// #region registry

// Registry holds the known language profiles. It is read-only once built.
type Registry struct {
	langs map[string]Language
}

// Builtin returns a registry with the embedded profiles (fra, eng).
func Builtin() (*Registry, error) {
	r := &Registry{langs: make(map[string]Language)}
	entries, err := fs.ReadDir(builtinProfiles, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin profiles: %w", err)
	}
	for _, e := range entries {
		data, err := builtinProfiles.ReadFile("builtin/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin %s: %w", e.Name(), err)
		}
		lang, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("builtin %s: %w", e.Name(), err)
		}
		r.langs[lang.Code] = lang
	}
	return r, nil
}

// Load returns the builtin profiles plus every *.yaml / *.yml file in dir.
// A custom file replaces a builtin with the same code. An empty dir loads builtins only.
func Load(dir string) (*Registry, error) {
	r, err := Builtin()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return r, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read profile dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read profile %s: %w", path, err)
		}
		lang, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		r.langs[lang.Code] = lang
	}
	return r, nil
}

// Lookup returns the profile registered under code (case-insensitive).
func (r *Registry) Lookup(code string) (Language, error) {
	lang, ok := r.langs[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		return Language{}, fmt.Errorf("language %q: %w", code, errkind.ErrProfileMismatch)
	}
	return lang, nil
}

// Codes lists registered codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.langs))
	for c := range r.langs {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Languages lists registered profiles ordered by code.
func (r *Registry) Languages() []Language {
	codes := r.Codes()
	out := make([]Language, len(codes))
	for i, c := range codes {
		out[i] = r.langs[c]
	}
	return out
}

// #endregion registry
