package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestBatch_Run(t *testing.T) {
	var calls int32
	b := NewBatch(3, NewLimiter(1000, 10), "ai")

	keys := []string{"c1", "c2", "c3", "c4"}
	results := b.Run(context.Background(), keys, func(ctx context.Context, key string) error {
		atomic.AddInt32(&calls, 1)
		if key == "c3" {
			return errors.New("lookup failed")
		}
		return nil
	})

	if len(results) != len(keys) {
		t.Fatalf("expected %d results, got %d", len(keys), len(results))
	}
	for i, r := range results {
		if r.Key != keys[i] {
			t.Errorf("result %d has key %s, want %s", i, r.Key, keys[i])
		}
	}
	if results[2].Error == nil {
		t.Error("expected c3 to fail")
	}
	if atomic.LoadInt32(&calls) != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewBatch(1, nil, "").Run(ctx, []string{"a", "b"}, func(ctx context.Context, key string) error {
		return ctx.Err()
	})
	for _, r := range results {
		if r.Error == nil {
			t.Errorf("expected %s to report cancellation", r.Key)
		}
	}
}

func TestReadLines(t *testing.T) {
	content := `
# Comment line
https://example.com/manifesto

https://example.org/pledges
https://example.com/manifesto
   https://example.net/speech
`
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}

	want := []string{"https://example.com/manifesto", "https://example.org/pledges", "https://example.net/speech"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %s, got %s", i, want[i], lines[i])
		}
	}
}

func TestReadLines_Missing(t *testing.T) {
	if _, err := ReadLines(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
