package storage

import (
	"context"
	"time"

	"github.com/michaelbrown/codechat/internal/llm"
)

// Turn is the audit record of one completed chat turn. It is written after
// the response is sent and is never read back into a later conversation;
// every request still starts from an empty history.
type Turn struct {
	ID         string        `json:"id"` // sandbox session identifier
	Message    string        `json:"message"`
	Output     string        `json:"output"`
	Error      string        `json:"error,omitempty"`
	ToolCalls  int           `json:"tool_calls"`
	Transcript []llm.Message `json:"transcript,omitempty"`
	DurationMS int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ListOptions controls pagination for ListTurns.
type ListOptions struct {
	Limit  int
	Offset int
}

// Store is the persistence interface for the turn audit log.
type Store interface {
	// RecordTurn inserts a completed turn. The ID field must be set by the
	// caller.
	RecordTurn(ctx context.Context, t *Turn) error

	// GetTurn returns a turn by ID, including its transcript.
	GetTurn(ctx context.Context, id string) (*Turn, error)

	// ListTurns returns turns ordered by created_at descending, without
	// transcripts.
	ListTurns(ctx context.Context, opts ListOptions) ([]Turn, error)

	// Close releases resources.
	Close() error
}
