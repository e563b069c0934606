package analysis

import (
	"fmt"
	"testing"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

func TestRetryEngine_FirstAttempt(t *testing.T) {
	r := NewRetryEngine([]string{"eng", "fra"}, false)
	next, ok := r.Next(nil)
	if !ok || next != "eng" {
		t.Fatalf("expected eng, got %q %v", next, ok)
	}
}

func TestRetryEngine_StopsOnSuccess(t *testing.T) {
	r := NewRetryEngine([]string{"eng", "fra"}, false)
	if _, ok := r.Next([]Attempt{{Language: "eng"}}); ok {
		t.Fatal("expected no retry after success")
	}
}

func TestRetryEngine_ExhaustiveContinues(t *testing.T) {
	r := NewRetryEngine([]string{"eng", "fra"}, true)
	next, ok := r.Next([]Attempt{{Language: "eng"}})
	if !ok || next != "fra" {
		t.Fatalf("expected fra, got %q %v", next, ok)
	}
	if _, ok := r.Next([]Attempt{{Language: "eng"}, {Language: "fra"}}); ok {
		t.Fatal("expected plan to be exhausted")
	}
}

func TestRetryEngine_RetriesNotFound(t *testing.T) {
	r := NewRetryEngine([]string{"eng", "fra"}, false)
	err := fmt.Errorf("estimate: %w", errkind.ErrKeyLengthNotFound)
	next, ok := r.Next([]Attempt{{Language: "eng", Err: err}})
	if !ok || next != "fra" {
		t.Fatalf("expected retry with fra, got %q %v", next, ok)
	}
}

func TestRetryEngine_InputErrorsAreFinal(t *testing.T) {
	r := NewRetryEngine([]string{"eng", "fra"}, true)
	err := fmt.Errorf("estimate: %w", errkind.ErrEmptyInput)
	if _, ok := r.Next([]Attempt{{Language: "eng", Err: err}}); ok {
		t.Fatal("expected no retry after an input error")
	}
}
