package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// openTestLog opens a SQLiteLog backed by a temp file and closes it with the
// test.
func openTestLog(t *testing.T) *SQLiteLog {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "answers.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// TestAppendAndRecent verifies the round trip of a full record.
func TestAppendAndRecent(t *testing.T) {
	t.Parallel()

	l := openTestLog(t)
	ctx := context.Background()

	rec := Record{
		Question:   "How do I reset my password?",
		Answer:     "Open Settings and click Reset Password.",
		References: 2,
		Degraded:   false,
		Duration:   1250 * time.Millisecond,
	}
	if err := l.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	r := got[0]
	if r.Question != rec.Question || r.Answer != rec.Answer {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.References != 2 || r.Degraded {
		t.Errorf("unexpected outcome fields: %+v", r)
	}
	if r.Duration != 1250*time.Millisecond {
		t.Errorf("duration: expected 1.25s, got %v", r.Duration)
	}
	if r.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

// TestRecent_NewestFirstAndLimited verifies ordering and the limit.
func TestRecent_NewestFirstAndLimited(t *testing.T) {
	t.Parallel()

	l := openTestLog(t)
	ctx := context.Background()

	for _, q := range []string{"first", "second", "third"} {
		if err := l.Append(ctx, Record{Question: q, Answer: "a"}); err != nil {
			t.Fatalf("Append %s: %v", q, err)
		}
	}

	got, err := l.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records under limit, got %d", len(got))
	}
	if got[0].Question != "third" || got[1].Question != "second" {
		t.Errorf("expected newest first, got %q then %q", got[0].Question, got[1].Question)
	}
}

// TestAppend_DegradedFlagRoundTrip verifies the degraded flag survives
// storage.
func TestAppend_DegradedFlagRoundTrip(t *testing.T) {
	t.Parallel()

	l := openTestLog(t)
	ctx := context.Background()

	if err := l.Append(ctx, Record{Question: "q", Answer: "a", Degraded: true}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := l.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || !got[0].Degraded {
		t.Errorf("expected degraded record, got %+v", got)
	}
}

// TestRecent_Empty verifies an empty log returns no records without error.
func TestRecent_Empty(t *testing.T) {
	t.Parallel()

	l := openTestLog(t)

	got, err := l.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
