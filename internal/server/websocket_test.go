package server

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/michaelbrown/codechat/internal/llm"
)

func wsDial(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketTurn(t *testing.T) {
	fake := &fakeTurnBuilder{
		responses: []llm.Response{
			toolCallResponse("c1", map[string]any{"code": "plot()"}),
			textResponse("Here is the plot"),
		},
		toolResult: "(no output)",
	}
	s := testServer(t, nil, fake)
	conn := wsDial(t, s)

	if err := conn.WriteJSON(wsIncoming{Type: "message", Content: "plot something"}); err != nil {
		t.Fatal(err)
	}

	var types []string
	var final wsOutgoing
	for {
		var out wsOutgoing
		if err := conn.ReadJSON(&out); err != nil {
			t.Fatalf("read: %v", err)
		}
		types = append(types, out.Type)
		if out.Type == "done" || out.Type == "error" {
			final = out
			break
		}
	}

	want := "tool_call,tool_result,done"
	if got := strings.Join(types, ","); got != want {
		t.Errorf("event sequence = %s, want %s", got, want)
	}
	if final.Content != "Here is the plot" {
		t.Errorf("final content = %q", final.Content)
	}
}

func TestWebSocketInvalidMessage(t *testing.T) {
	s := testServer(t, nil, &fakeTurnBuilder{})
	conn := wsDial(t, s)

	if err := conn.WriteJSON(wsIncoming{Type: "message", Content: ""}); err != nil {
		t.Fatal(err)
	}

	var out wsOutgoing
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatal(err)
	}
	if out.Type != "error" {
		t.Errorf("type = %q, want error", out.Type)
	}
}

func TestWebSocketIndependentSessions(t *testing.T) {
	fake := &fakeTurnBuilder{
		// Two turns, one tool call each; responses are consumed per-turn by
		// fresh scripted clients.
		responses:  []llm.Response{toolCallResponse("c1", nil), textResponse("ok")},
		toolResult: "ok",
	}
	s := testServer(t, nil, fake)
	conn := wsDial(t, s)

	for i := 0; i < 2; i++ {
		if err := conn.WriteJSON(wsIncoming{Type: "message", Content: "run"}); err != nil {
			t.Fatal(err)
		}
		for {
			var out wsOutgoing
			if err := conn.ReadJSON(&out); err != nil {
				t.Fatal(err)
			}
			if out.Type == "done" || out.Type == "error" {
				break
			}
		}
	}

	if len(fake.toolInvocations) != 2 {
		t.Fatalf("tool invoked %d times", len(fake.toolInvocations))
	}
	if fake.toolInvocations[0] == fake.toolInvocations[1] {
		t.Errorf("both turns used session %q; sessions must be fresh per turn", fake.toolInvocations[0])
	}
}
