package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/paper2gal/paper2gal/internal/chunks"
	"github.com/paper2gal/paper2gal/internal/export"
	"github.com/paper2gal/paper2gal/internal/script"
	"github.com/paper2gal/paper2gal/internal/session"
)

// maxUploadBytes caps multipart uploads at 64 MiB.
const maxUploadBytes = 64 << 20

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}/script", s.handleScript)
	mux.HandleFunc("POST /sessions/{id}/advance", s.handleAdvance)
	mux.HandleFunc("POST /sessions/{id}/reset", s.handleReset)
	mux.HandleFunc("GET /sessions/{id}/export", s.handleExport)
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateSessionResponse describes a freshly loaded document.
type CreateSessionResponse struct {
	SessionID  string `json:"session_id"`
	SourceID   string `json:"source_id"`
	ChunkCount int    `json:"chunk_count"`
}

// handleCreateSession accepts a multipart upload (field "document",
// PDF or markdown), chunks it and opens a session over the result.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing document field: %w", err))
		return
	}
	defer file.Close()

	// The chunk loader works from a path, so spool the upload to a temp
	// file with the original extension preserved.
	ext := filepath.Ext(header.Filename)
	tmp, err := os.CreateTemp("", "paper2gal-upload-*"+ext)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to spool upload: %w", err))
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to spool upload: %w", err))
		return
	}
	tmp.Close()

	chunkList, err := chunks.Load(tmp.Name(), s.loadOpts)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to load document: %w", err))
		return
	}
	// The temp file name leaks through the loader; restore the name the
	// client actually uploaded.
	for i := range chunkList {
		chunkList[i].SourceID = header.Filename
	}

	sess, err := session.New(session.Config{
		Chunks:    chunkList,
		Generator: s.generator,
		Logger:    s.logger,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.putSession(sess)

	s.logger.Info("session created",
		"session", sess.ID(),
		"source", header.Filename,
		"chunks", len(chunkList))

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID:  sess.ID(),
		SourceID:   header.Filename,
		ChunkCount: len(chunkList),
	})
}

// ScriptResponse carries one chunk's script plus prefetch status for
// the chunk after it.
type ScriptResponse struct {
	ChunkIndex int                   `json:"chunk_index"`
	Script     script.Script         `json:"script"`
	Prefetch   session.PrefetchState `json:"prefetch"`
}

// handleScript returns the script for ?chunk=N (default 0), consuming a
// prefetched result when one exists, and kicks off prefetch of N+1.
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	idx := 0
	if v := r.URL.Query().Get("chunk"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid chunk parameter %q", v))
			return
		}
		idx = n
	}

	sc, err := sess.ScriptFor(r.Context(), idx)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.NotifyAdvancing(idx)

	writeJSON(w, http.StatusOK, ScriptResponse{
		ChunkIndex: idx,
		Script:     sc,
		Prefetch:   sess.Prefetch(idx),
	})
}

// AdvanceRequest says which chunk the client just finished playing.
type AdvanceRequest struct {
	ChunkIndex int `json:"chunk_index"`
}

// handleAdvance moves the session to the chunk after the one named in
// the body and returns its script.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	next := req.ChunkIndex + 1
	sc, err := sess.ScriptFor(r.Context(), next)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess.NotifyAdvancing(next)

	writeJSON(w, http.StatusOK, ScriptResponse{
		ChunkIndex: next,
		Script:     sc,
		Prefetch:   sess.Prefetch(next),
	})
}

// handleReset rewinds the session to the first chunk, dropping any
// cached or in-flight scripts.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	sess.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExport streams the full document as the validated export
// artifact. Chunks that were played are exported exactly as played;
// only never-played chunks are generated here.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("session not found"))
		return
	}

	chunkList := sess.Chunks()
	records := make([]export.Record, 0, len(chunkList))
	for _, ch := range chunkList {
		sc, ok := sess.Generated(ch.Index)
		if !ok {
			var err error
			sc, err = sess.ScriptFor(r.Context(), ch.Index)
			if err != nil {
				writeError(w, http.StatusInternalServerError, err)
				return
			}
		}
		records = append(records, export.Record{
			ChunkIndex: ch.Index,
			SourceID:   ch.SourceID,
			Script:     sc,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := export.Write(w, records); err != nil {
		s.logger.Error("export write failed", "session", sess.ID(), "error", err)
	}
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
