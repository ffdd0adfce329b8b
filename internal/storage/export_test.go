package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/michaelbrown/codechat/internal/llm"
)

func TestExportMarkdown(t *testing.T) {
	turn := &Turn{
		ID:        "turn-1",
		ToolCalls: 1,
		Transcript: []llm.Message{
			llm.SystemMessage("internal"),
			llm.UserMessage("plot something"),
			{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "c1", Name: "execute_python", Args: map[string]any{"code": "plot()"}}}},
			llm.ToolResultMessage("c1", "(no output)"),
			llm.AssistantMessage("Here you go"),
		},
		DurationMS: 100,
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	md := ExportMarkdown(turn)

	for _, want := range []string{"# Turn turn-1", "## User", "plot something", "execute_python", "## Assistant", "Here you go", "Tool Result"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "internal") {
		t.Error("system messages must not be exported")
	}
}

func TestExportMarkdownWithError(t *testing.T) {
	turn := &Turn{ID: "t", Error: "llm call: connection refused"}
	md := ExportMarkdown(turn)
	if !strings.Contains(md, "connection refused") {
		t.Errorf("markdown = %s", md)
	}
}
