package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/paper2gal/paper2gal/internal/chunks"
	"github.com/paper2gal/paper2gal/internal/script"
)

// Session owns one reading run over a chunked document: the chunk list,
// the scripts as they were played, and the speculative prefetch of the
// next chunk's script. There are no process-wide singletons; a Session is
// created when a document is loaded and torn down on reset.
type Session struct {
	id        string
	chunks    []chunks.Chunk
	generator *script.Generator
	logger    *slog.Logger

	mu        sync.Mutex
	cache     map[int]script.Script
	generated map[int]script.Script
	pending   *prefetchTask
	runToken  int
}

// Config configures a new Session.
type Config struct {
	Chunks    []chunks.Chunk
	Generator *script.Generator
	Logger    *slog.Logger
}

// New creates a Session over an ordered chunk list.
func New(cfg Config) (*Session, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if len(cfg.Chunks) == 0 {
		return nil, fmt.Errorf("at least one chunk is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.New().String()
	return &Session{
		id:        id,
		chunks:    cfg.Chunks,
		generator: cfg.Generator,
		logger:    logger.With("session", id),
		cache:     make(map[int]script.Script),
		generated: make(map[int]script.Script),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Chunks returns the session's chunk list. Callers must not mutate it.
func (s *Session) Chunks() []chunks.Chunk {
	return s.chunks
}

// ScriptFor returns the Script for a chunk, consuming a prefetched result
// when one exists (waiting on an in-flight prefetch for this exact chunk
// rather than generating twice) and generating synchronously otherwise.
// The returned script is retained so a later export reproduces exactly
// what was played.
func (s *Session) ScriptFor(ctx context.Context, chunkIndex int) (script.Script, error) {
	if chunkIndex < 0 || chunkIndex >= len(s.chunks) {
		return nil, fmt.Errorf("chunk index %d out of range [0,%d)", chunkIndex, len(s.chunks))
	}

	sc, ok := s.Take(chunkIndex, true)
	if ok {
		s.logger.Debug("using prefetched script", "chunk_index", chunkIndex)
	} else {
		ch := s.chunks[chunkIndex]
		sc = s.generator.Generate(ctx, ch.Text, ch.Index, ch.SectionTitle)
	}

	s.mu.Lock()
	s.generated[chunkIndex] = sc
	s.mu.Unlock()
	return sc, nil
}

// Generated returns the script as it was played for a chunk, if the
// chunk has been played this run.
func (s *Session) Generated(chunkIndex int) (script.Script, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.generated[chunkIndex]
	return sc, ok
}

// NotifyAdvancing hints that playback of chunkIndex has begun, triggering
// prefetch of the following chunk.
func (s *Session) NotifyAdvancing(chunkIndex int) {
	s.ensureNextPrefetch(chunkIndex)
}

// Reset tears the session down: the cache and the played-script record
// are cleared, any in-flight prefetch is cancelled best-effort, and the
// run token is bumped so a late-arriving result from before the reset is
// discarded on arrival.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.cancel()
		s.pending = nil
	}
	s.cache = make(map[int]script.Script)
	s.generated = make(map[int]script.Script)
	s.runToken++

	s.logger.Debug("session reset", "run_token", s.runToken)
}
