package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsIncoming is a message from the client.
type wsIncoming struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// wsOutgoing is a message to the client.
type wsOutgoing struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Name    string `json:"name,omitempty"`
	Args    any    `json:"args,omitempty"`
}

// handleWebSocket runs independent chat turns over one connection. Each
// incoming message gets a fresh sandbox session, exactly like GET /chat;
// the connection only adds visibility into tool-call round trips.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg wsIncoming
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			log.Printf("websocket read error: %v", err)
			return
		}

		if msg.Type != "message" || msg.Content == "" {
			wsWriteJSON(conn, wsOutgoing{Type: "error", Content: "invalid message"})
			continue
		}

		s.runWebSocketTurn(r.Context(), conn, msg.Content)
	}
}

func (s *Server) runWebSocketTurn(ctx context.Context, conn *websocket.Conn, message string) {
	a, sess, err := s.turns.NewTurn()
	if err != nil {
		wsWriteJSON(conn, wsOutgoing{Type: "error", Content: err.Error()})
		return
	}

	// Serializes writes from the tool callbacks and the final result.
	var wsMu sync.Mutex

	a.OnToolCall = func(name string, args map[string]any) {
		wsMu.Lock()
		wsWriteJSON(conn, wsOutgoing{Type: "tool_call", Name: name, Args: args})
		wsMu.Unlock()
	}
	a.OnToolResult = func(name string, result string) {
		wsMu.Lock()
		wsWriteJSON(conn, wsOutgoing{Type: "tool_result", Name: name, Content: result})
		wsMu.Unlock()
	}

	turnCtx := ctx
	var cancel context.CancelFunc
	if s.cfg.Server.RequestTimeout > 0 {
		turnCtx, cancel = context.WithTimeout(ctx, s.cfg.Server.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	output, err := a.Run(turnCtx, message)
	s.recordTurn(sess, a, message, output, err, time.Since(start))

	wsMu.Lock()
	defer wsMu.Unlock()

	if err != nil {
		wsWriteJSON(conn, wsOutgoing{Type: "error", Content: err.Error()})
		return
	}

	wsWriteJSON(conn, wsOutgoing{Type: "done", Content: output})
}

func wsWriteJSON(conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("websocket write error: %v", err)
	}
}
