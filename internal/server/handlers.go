package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/michaelbrown/codechat/internal/agent"
	"github.com/michaelbrown/codechat/internal/session"
	"github.com/michaelbrown/codechat/internal/storage"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- Chat handler ---

type chatResponse struct {
	Output *string `json:"output"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	// Validated before any session, credential, or model work happens.
	message := r.URL.Query().Get("message")
	if message == "" {
		writeError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	a, sess, err := s.turns.NewTurn()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	start := time.Now()
	output, err := a.Run(r.Context(), message)
	s.recordTurn(sess, a, message, output, err, time.Since(start))

	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var resp chatResponse
	if output != "" {
		resp.Output = &output
	}
	writeJSON(w, http.StatusOK, resp)
}

// recordTurn writes the completed turn to the audit log, if enabled.
func (s *Server) recordTurn(sess session.Session, a *agent.Agent, message, output string, runErr error, elapsed time.Duration) {
	if s.store == nil {
		return
	}

	t := &storage.Turn{
		ID:         sess.ID,
		Message:    message,
		Output:     output,
		ToolCalls:  a.ToolCallCount(),
		Transcript: a.History(),
		DurationMS: elapsed.Milliseconds(),
	}
	if runErr != nil {
		t.Error = runErr.Error()
	}

	// Audit writes never fail the request.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.RecordTurn(ctx, t); err != nil {
		log.Printf("failed to record turn %s: %v", t.ID, err)
	}
}

// --- Turn audit handlers ---

func (s *Server) handleListTurns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "turn audit log is disabled")
		return
	}

	opts := storage.ListOptions{}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}

	turns, err := s.store.ListTurns(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if turns == nil {
		turns = []storage.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (s *Server) handleGetTurn(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "turn audit log is disabled")
		return
	}

	id := chi.URLParam(r, "id")
	turn, err := s.store.GetTurn(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, "turn not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(storage.ExportMarkdown(turn)))
		return
	}

	writeJSON(w, http.StatusOK, turn)
}

// --- Health ---

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
