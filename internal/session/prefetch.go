package session

import (
	"context"

	"github.com/paper2gal/paper2gal/internal/script"
)

// PrefetchState describes the speculative generation of the next chunk.
type PrefetchState string

const (
	PrefetchIdle    PrefetchState = "idle"
	PrefetchRunning PrefetchState = "running"
	PrefetchReady   PrefetchState = "ready"
)

// prefetchTask is one background generation. The generation call is a
// blocking network request that cannot be interrupted mid-flight, so
// cancellation is advisory: correctness comes from tagging the task with
// the run token it was started under and discarding results whose token
// no longer matches.
type prefetchTask struct {
	target int
	token  int
	cancel context.CancelFunc
	done   chan struct{}

	// result is written exactly once, before done is closed.
	result script.Script
}

func (t *prefetchTask) isDone() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// ensureNextPrefetch launches background generation for chunkIndex+1.
// Idempotent: a cached result, an active pending task for the same
// target, or any other still-running task all make this a no-op, so at
// most one background generation is ever in flight.
func (s *Session) ensureNextPrefetch(current int) {
	next := current + 1
	if next < 0 || next >= len(s.chunks) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.collectLocked()

	if _, ok := s.cache[next]; ok {
		return
	}
	if s.pending != nil {
		// collectLocked already reaped finished tasks, so anything left
		// here is still running.
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &prefetchTask{
		target: next,
		token:  s.runToken,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	ch := s.chunks[next]

	go func() {
		defer close(t.done)
		t.result = s.generator.Generate(ctx, ch.Text, ch.Index, ch.SectionTitle)
	}()

	s.pending = t
	s.logger.Debug("prefetch started", "chunk_index", next, "run_token", t.token)
}

// CollectIfReady moves a completed prefetch result into the cache without
// blocking. Results from a superseded run token are dropped.
func (s *Session) CollectIfReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectLocked()
}

// collectLocked reaps the pending task if it has finished. Must be called
// with s.mu held.
func (s *Session) collectLocked() {
	t := s.pending
	if t == nil || !t.isDone() {
		return
	}
	s.pending = nil

	if t.token != s.runToken {
		s.logger.Debug("discarding stale prefetch result", "chunk_index", t.target)
		return
	}
	if t.result != nil {
		s.cache[t.target] = t.result
	}
}

// Take returns the Script for chunkIndex if the prefetcher has it,
// removing it from the cache (at-most-once consumption). If the in-flight
// task targets exactly this chunk under the current run, Take either
// blocks for it (wait=true) or reports absence (wait=false).
func (s *Session) Take(chunkIndex int, wait bool) (script.Script, bool) {
	s.mu.Lock()
	s.collectLocked()

	if sc, ok := s.cache[chunkIndex]; ok {
		delete(s.cache, chunkIndex)
		s.mu.Unlock()
		return sc, true
	}

	t := s.pending
	if t == nil || t.target != chunkIndex || t.token != s.runToken {
		s.mu.Unlock()
		return nil, false
	}
	if !wait && !t.isDone() {
		s.mu.Unlock()
		return nil, false
	}
	s.mu.Unlock()

	// Block outside the lock; the task closes done when finished.
	<-t.done

	s.mu.Lock()
	if s.pending == t {
		s.pending = nil
	}
	valid := t.token == s.runToken
	s.mu.Unlock()

	if !valid || t.result == nil {
		return nil, false
	}
	return t.result, true
}

// Prefetch reports the state of speculation for the chunk after current.
func (s *Session) Prefetch(current int) PrefetchState {
	next := current + 1

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectLocked()

	if _, ok := s.cache[next]; ok {
		return PrefetchReady
	}
	if s.pending != nil && s.pending.target == next && s.pending.token == s.runToken {
		return PrefetchRunning
	}
	return PrefetchIdle
}
