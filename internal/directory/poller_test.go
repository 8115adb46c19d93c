package directory

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// mockSearcher is a test double for Searcher. It returns empty result
// sets until the configured attempt, then a single match.
type mockSearcher struct {
	emptyResults int
	err          error
	calls        int
	filters      []string
}

func (m *mockSearcher) SearchClients(_ context.Context, filter string) ([]Match, error) {
	m.calls++
	m.filters = append(m.filters, filter)

	if m.err != nil {
		return nil, m.err
	}
	if m.calls <= m.emptyResults {
		return []Match{}, nil
	}
	return []Match{{Name: "web-01"}}, nil
}

// recorderUI captures UI events for assertions.
type recorderUI struct {
	infos []string
	warns []string
}

func (r *recorderUI) Info(msg string) { r.infos = append(r.infos, msg) }
func (r *recorderUI) Warn(msg string) { r.warns = append(r.warns, msg) }

func TestPoller_FoundImmediately(t *testing.T) {
	searcher := &mockSearcher{}
	rec := &recorderUI{}
	p := NewPoller(searcher, rec, WithInterval(time.Millisecond))

	if err := p.WaitForClient(context.Background(), "web-01"); err != nil {
		t.Fatalf("WaitForClient() error = %v", err)
	}

	if searcher.calls != 1 {
		t.Errorf("search calls = %d, want 1", searcher.calls)
	}
	if len(rec.infos) != 0 {
		t.Errorf("expected no waiting messages, got %v", rec.infos)
	}
	if searcher.filters[0] != "name:web-01" {
		t.Errorf("filter = %q, want name:web-01", searcher.filters[0])
	}
}

func TestPoller_RetriesUntilFound(t *testing.T) {
	const emptyResults = 3

	searcher := &mockSearcher{emptyResults: emptyResults}
	rec := &recorderUI{}
	p := NewPoller(searcher, rec, WithInterval(time.Millisecond))

	if err := p.WaitForClient(context.Background(), "web-01"); err != nil {
		t.Fatalf("WaitForClient() error = %v", err)
	}

	if searcher.calls != emptyResults+1 {
		t.Errorf("search calls = %d, want %d", searcher.calls, emptyResults+1)
	}
	if len(rec.infos) != emptyResults {
		t.Errorf("waiting messages = %d, want %d", len(rec.infos), emptyResults)
	}
}

func TestPoller_SearchErrorAborts(t *testing.T) {
	searcher := &mockSearcher{err: fmt.Errorf("directory unreachable")}
	p := NewPoller(searcher, &recorderUI{}, WithInterval(time.Millisecond))

	if err := p.WaitForClient(context.Background(), "web-01"); err == nil {
		t.Fatal("expected error from failing search, got nil")
	}
	if searcher.calls != 1 {
		t.Errorf("search calls = %d, want 1 (no retry on error)", searcher.calls)
	}
}

func TestPoller_ContextCancellation(t *testing.T) {
	searcher := &mockSearcher{emptyResults: 1 << 30}
	p := NewPoller(searcher, &recorderUI{}, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(25 * time.Millisecond)
		cancel()
	}()

	err := p.WaitForClient(ctx, "web-01")
	if err == nil {
		t.Fatal("expected context error, got nil")
	}
	if ctx.Err() == nil {
		t.Fatal("context should be cancelled")
	}
}
