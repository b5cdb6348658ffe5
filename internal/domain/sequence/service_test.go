package sequence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// -- Mock Repository --

type mockRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	failures int
}

func newMockRepo() *mockRepo {
	return &mockRepo{counters: make(map[string]int64)}
}

func (m *mockRepo) Increment(_ context.Context, name, dateKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return 0, errors.New("connection reset")
	}
	key := name + "/" + dateKey
	m.counters[key]++
	return m.counters[key], nil
}

// -- Tests --

func TestNextID_Format(t *testing.T) {
	alloc := NewAllocator(newMockRepo(), "UHID")

	id, err := alloc.NextID(context.Background(), SeqUHID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantPrefix := "UHID-" + time.Now().Format("060102") + "-"
	if !strings.HasPrefix(id, wantPrefix) {
		t.Errorf("id = %q, want prefix %q", id, wantPrefix)
	}
	if !strings.HasSuffix(id, "-00001") {
		t.Errorf("id = %q, want zero-padded counter 00001", id)
	}
}

func TestNextID_Sequential(t *testing.T) {
	alloc := NewAllocator(newMockRepo(), "UHID")

	for i := 1; i <= 3; i++ {
		id, err := alloc.NextID(context.Background(), SeqUHID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := fmt.Sprintf("%05d", i)
		if !strings.HasSuffix(id, want) {
			t.Errorf("call %d: id = %q, want suffix %q", i, id, want)
		}
	}
}

func TestNextID_ConcurrentCallersDistinct(t *testing.T) {
	alloc := NewAllocator(newMockRepo(), "UHID")

	const n = 50
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.NextID(context.Background(), SeqUHID)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	var suffixes []string
	datePrefix := "UHID-" + time.Now().Format("060102") + "-"
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id issued: %s", id)
		}
		seen[id] = true
		if !strings.HasPrefix(id, datePrefix) {
			t.Errorf("id %q does not share date prefix %q", id, datePrefix)
		}
		suffixes = append(suffixes, strings.TrimPrefix(id, datePrefix))
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(seen))
	}

	// Counter values cover 1..n with no gaps.
	sort.Strings(suffixes)
	for i, s := range suffixes {
		if want := fmt.Sprintf("%05d", i+1); s != want {
			t.Fatalf("counter values not contiguous: position %d has %q, want %q", i, s, want)
		}
	}
}

func TestNextID_RetriesTransientFailure(t *testing.T) {
	repo := newMockRepo()
	repo.failures = 2
	alloc := NewAllocator(repo, "UHID")

	id, err := alloc.NextID(context.Background(), SeqUHID)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if !strings.HasSuffix(id, "-00001") {
		t.Errorf("id = %q, want counter 00001", id)
	}
}

func TestNextID_ExhaustedRetriesPropagates(t *testing.T) {
	repo := newMockRepo()
	repo.failures = 100
	alloc := NewAllocator(repo, "UHID")

	_, err := alloc.NextID(context.Background(), SeqUHID)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected underlying cause in error, got %v", err)
	}
}

func TestNextID_NoBackoffAfterFinalAttempt(t *testing.T) {
	repo := newMockRepo()
	repo.failures = 100
	alloc := NewAllocator(repo, "UHID")

	// Only the gaps between attempts sleep: 1x + 2x backoff = 150ms. A
	// trailing sleep after the last attempt would add another 150ms.
	start := time.Now()
	if _, err := alloc.NextID(context.Background(), SeqUHID); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if elapsed := time.Since(start); elapsed >= 250*time.Millisecond {
		t.Errorf("exhausted allocation took %v, should return without a final backoff", elapsed)
	}
}
