package session

import (
	"context"
	"testing"
	"time"

	"github.com/paper2gal/paper2gal/internal/chunks"
	"github.com/paper2gal/paper2gal/internal/providers"
	"github.com/paper2gal/paper2gal/internal/script"
)

const goodResponse = `[{"type":"dialogue","speaker":"Nana","text":"Here we go!","emotion":"char_normal"}]`

func testChunks(n int) []chunks.Chunk {
	out := make([]chunks.Chunk, n)
	for i := range out {
		out[i] = chunks.Chunk{Index: i, Text: "chunk body", SourceID: "paper.pdf"}
	}
	return out
}

func newTestSession(t *testing.T, mock *providers.MockClient, n int) *Session {
	t.Helper()
	gen, err := script.NewGenerator(script.GeneratorConfig{Client: mock})
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	s, err := New(Config{Chunks: testChunks(n), Generator: gen})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func waitForState(t *testing.T, s *Session, current int, want PrefetchState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Prefetch(current) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("prefetch never reached state %q (now %q)", want, s.Prefetch(current))
}

func TestNew(t *testing.T) {
	t.Run("requires generator", func(t *testing.T) {
		if _, err := New(Config{Chunks: testChunks(1)}); err == nil {
			t.Error("expected error for missing generator")
		}
	})

	t.Run("requires chunks", func(t *testing.T) {
		gen, _ := script.NewGenerator(script.GeneratorConfig{Client: providers.NewMockClient(goodResponse)})
		if _, err := New(Config{Generator: gen}); err == nil {
			t.Error("expected error for empty chunk list")
		}
	})
}

func TestSession_ScriptFor(t *testing.T) {
	t.Run("synchronous generation without prefetch", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		s := newTestSession(t, mock, 3)

		got, err := s.ScriptFor(context.Background(), 0)
		if err != nil {
			t.Fatalf("ScriptFor() error = %v", err)
		}
		if len(got) != 1 || got[0].Text != "Here we go!" {
			t.Errorf("ScriptFor() = %+v", got)
		}
		if mock.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", mock.RequestCount())
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		s := newTestSession(t, providers.NewMockClient(goodResponse), 2)
		if _, err := s.ScriptFor(context.Background(), 5); err == nil {
			t.Error("expected out-of-range error")
		}
	})

	t.Run("consumes prefetched result without a second generation", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		mock.Latency = 10 * time.Millisecond
		s := newTestSession(t, mock, 3)

		s.NotifyAdvancing(0)
		got, err := s.ScriptFor(context.Background(), 1)
		if err != nil {
			t.Fatalf("ScriptFor() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("ScriptFor() = %+v", got)
		}
		if mock.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1 (prefetch only)", mock.RequestCount())
		}
	})
}

func TestSession_Generated(t *testing.T) {
	t.Run("retains played scripts without regeneration", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		s := newTestSession(t, mock, 3)

		played, err := s.ScriptFor(context.Background(), 0)
		if err != nil {
			t.Fatalf("ScriptFor() error = %v", err)
		}

		got, ok := s.Generated(0)
		if !ok {
			t.Fatal("expected played script to be retained")
		}
		if len(got) != len(played) || got[0].Text != played[0].Text {
			t.Errorf("Generated() = %+v, want the played script %+v", got, played)
		}
		if mock.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1 (no regeneration)", mock.RequestCount())
		}
	})

	t.Run("unplayed chunk reports absence", func(t *testing.T) {
		s := newTestSession(t, providers.NewMockClient(goodResponse), 3)
		if _, ok := s.Generated(1); ok {
			t.Error("expected no retained script for an unplayed chunk")
		}
	})

	t.Run("reset clears the played record", func(t *testing.T) {
		s := newTestSession(t, providers.NewMockClient(goodResponse), 3)
		if _, err := s.ScriptFor(context.Background(), 0); err != nil {
			t.Fatalf("ScriptFor() error = %v", err)
		}

		s.Reset()
		if _, ok := s.Generated(0); ok {
			t.Error("expected reset to drop retained scripts")
		}
	})
}

func TestSession_PrefetchCoordination(t *testing.T) {
	t.Run("ensure is idempotent", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		mock.Latency = 30 * time.Millisecond
		s := newTestSession(t, mock, 3)

		s.NotifyAdvancing(0)
		s.NotifyAdvancing(0)
		s.NotifyAdvancing(0)

		if _, ok := s.Take(1, true); !ok {
			t.Fatal("expected prefetched script")
		}
		if mock.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want exactly 1 background task", mock.RequestCount())
		}
	})

	t.Run("at most one task in flight", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		mock.Latency = 50 * time.Millisecond
		s := newTestSession(t, mock, 5)

		s.NotifyAdvancing(0)
		// A second hint for a different target while the first is running
		// must not launch concurrent work.
		s.NotifyAdvancing(1)

		time.Sleep(20 * time.Millisecond)
		if mock.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", mock.RequestCount())
		}
	})

	t.Run("take without wait returns nothing while running", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		mock.Latency = 100 * time.Millisecond
		s := newTestSession(t, mock, 3)

		s.NotifyAdvancing(0)
		if _, ok := s.Take(1, false); ok {
			t.Error("expected no result while task is running")
		}
		// Still consumable afterwards.
		if _, ok := s.Take(1, true); !ok {
			t.Error("expected result after waiting")
		}
	})

	t.Run("consumption is at-most-once", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		s := newTestSession(t, mock, 3)

		s.NotifyAdvancing(0)
		if _, ok := s.Take(1, true); !ok {
			t.Fatal("expected prefetched script")
		}
		if _, ok := s.Take(1, false); ok {
			t.Error("second take should find nothing")
		}
	})

	t.Run("state transitions idle running ready", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		mock.Latency = 40 * time.Millisecond
		s := newTestSession(t, mock, 3)

		if got := s.Prefetch(0); got != PrefetchIdle {
			t.Errorf("initial state = %q, want idle", got)
		}
		s.NotifyAdvancing(0)
		if got := s.Prefetch(0); got != PrefetchRunning {
			t.Errorf("state after ensure = %q, want running", got)
		}
		waitForState(t, s, 0, PrefetchReady)
	})

	t.Run("last chunk has nothing to prefetch", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		s := newTestSession(t, mock, 2)

		s.NotifyAdvancing(1)
		time.Sleep(10 * time.Millisecond)
		if mock.RequestCount() != 0 {
			t.Errorf("RequestCount = %d, want 0", mock.RequestCount())
		}
	})
}

func TestSession_Reset(t *testing.T) {
	t.Run("stale results are discarded", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		mock.Latency = 30 * time.Millisecond
		s := newTestSession(t, mock, 3)

		s.NotifyAdvancing(0)
		s.Reset()

		// Let the background task finish, then verify its result never
		// becomes visible.
		time.Sleep(100 * time.Millisecond)
		s.CollectIfReady()
		if _, ok := s.Take(1, false); ok {
			t.Error("result from before reset leaked into the session")
		}
		if got := s.Prefetch(0); got != PrefetchIdle {
			t.Errorf("state after reset = %q, want idle", got)
		}
	})

	t.Run("prefetch works again after reset", func(t *testing.T) {
		mock := providers.NewMockClient(goodResponse)
		s := newTestSession(t, mock, 3)

		s.NotifyAdvancing(0)
		s.Reset()
		s.NotifyAdvancing(0)

		if _, ok := s.Take(1, true); !ok {
			t.Error("expected fresh prefetch after reset")
		}
	})
}
