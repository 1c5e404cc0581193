package keywords

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// fakeCompleter is a test double for llm.Completer. It returns a fixed
// response or error and records the prompts it received.
type fakeCompleter struct {
	// response is returned by Complete when err is nil.
	response string
	// err makes every completion fail.
	err error
	// prompts records every prompt received.
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, _ int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestNewExtractor_NilCompleter(t *testing.T) {
	t.Parallel()

	if _, err := NewExtractor(nil); err == nil {
		t.Fatal("expected error for nil completer")
	}
}

// TestExtract_ParsesTerms verifies the happy path: comma-separated model
// output becomes trimmed terms in model order.
func TestExtract_ParsesTerms(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "password reset, account lockout , login"}
	e, err := NewExtractor(fake)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	terms := e.Extract(context.Background(), "How do I reset my password?")

	want := []string{"password reset", "account lockout", "login"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("expected %v, got %v", want, terms)
	}
}

// TestExtract_CapsAtFiveTerms verifies that extra terms beyond the cap are
// dropped in order.
func TestExtract_CapsAtFiveTerms(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "a, b, c, d, e, f, g"}
	e, err := NewExtractor(fake)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	terms := e.Extract(context.Background(), "question")

	if len(terms) != maxKeywords {
		t.Fatalf("expected %d terms, got %d: %v", maxKeywords, len(terms), terms)
	}
	if terms[0] != "a" || terms[4] != "e" {
		t.Errorf("expected first five terms in order, got %v", terms)
	}
}

// TestExtract_SkipsEmptyTerms verifies that empty segments between commas do
// not become terms.
func TestExtract_SkipsEmptyTerms(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "billing, , refund,,"}
	e, err := NewExtractor(fake)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	terms := e.Extract(context.Background(), "question")

	want := []string{"billing", "refund"}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("expected %v, got %v", want, terms)
	}
}

// TestExtract_FallbackOnError verifies that a failed model call degrades to
// the raw question as the single keyword.
func TestExtract_FallbackOnError(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{err: errors.New("model unavailable")}
	e, err := NewExtractor(fake)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	question := "Why was I charged twice?"
	terms := e.Extract(context.Background(), question)

	want := []string{question}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("expected raw-question fallback %v, got %v", want, terms)
	}
}

// TestExtract_FallbackOnEmptyOutput verifies that unusable model output also
// degrades to the raw question.
func TestExtract_FallbackOnEmptyOutput(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: " , ,, "}
	e, err := NewExtractor(fake)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	question := "How do I export my data?"
	terms := e.Extract(context.Background(), question)

	want := []string{question}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("expected raw-question fallback %v, got %v", want, terms)
	}
}

// TestExtract_QuestionInPrompt verifies the question is embedded in the
// prompt sent to the model.
func TestExtract_QuestionInPrompt(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{response: "term"}
	e, err := NewExtractor(fake)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	e.Extract(context.Background(), "Can I change my plan mid-cycle?")

	if len(fake.prompts) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(fake.prompts))
	}
	if want := "Can I change my plan mid-cycle?"; !strings.Contains(fake.prompts[0], want) {
		t.Errorf("prompt does not contain the question %q:\n%s", want, fake.prompts[0])
	}
}
