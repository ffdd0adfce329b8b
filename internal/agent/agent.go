// Package agent drives one chat turn: it seeds the conversation with the
// user message, calls the chat-completion service with the registered tools,
// and loops over tool-call round trips until the model produces a final
// answer.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/michaelbrown/codechat/internal/llm"
	"github.com/michaelbrown/codechat/internal/tools"
)

// Agent executes the tool-call loop for a single request. It is created
// fresh per turn and owns its history exclusively.
type Agent struct {
	llm      llm.Client
	registry *tools.Registry
	history  []llm.Message
	tools    []llm.ToolDef
	maxIter  int

	OnToolCall   func(name string, args map[string]any)
	OnToolResult func(name string, result string)
}

// New creates an Agent with the given chat client and tool registry.
// maxIterations <= 0 means the loop is bounded only by the model itself;
// a positive value is a safety cap and produces an error when exceeded.
func New(client llm.Client, registry *tools.Registry, maxIterations int) *Agent {
	a := &Agent{
		llm:      client,
		registry: registry,
		maxIter:  maxIterations,
	}
	if registry != nil {
		a.tools = registry.AllTools()
	}
	return a
}

// SetSystemPrompt seeds the history with a system message. Must be called
// before Run.
func (a *Agent) SetSystemPrompt(prompt string) {
	if prompt == "" {
		return
	}
	if len(a.history) > 0 && a.history[0].Role == llm.RoleSystem {
		a.history[0] = llm.SystemMessage(prompt)
		return
	}
	a.history = append([]llm.Message{llm.SystemMessage(prompt)}, a.history...)
}

// Run executes the full turn for one user message and returns the final
// assistant text. An empty return with nil error means the model produced
// no content; the gateway reports that as a null answer.
//
// Tool execution errors become tool-result content so the model can react;
// chat-service errors abort the turn.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	a.history = append(a.history, llm.UserMessage(userMessage))

	for i := 0; a.maxIter <= 0 || i < a.maxIter; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, err := a.llm.ChatCompletion(ctx, a.history, a.tools)
		if err != nil {
			return "", fmt.Errorf("llm call (iteration %d): %w", i+1, err)
		}

		a.history = append(a.history, resp.Message)

		// No tool calls means the model is done.
		if len(resp.Message.ToolCalls) == 0 {
			return resp.Message.Content, nil
		}

		// Execute each requested call in order. No call is issued before
		// the previous result has been appended.
		for _, tc := range resp.Message.ToolCalls {
			if a.OnToolCall != nil {
				a.OnToolCall(tc.Name, tc.Args)
			}

			result := a.executeTool(ctx, tc)

			if a.OnToolResult != nil {
				a.OnToolResult(tc.Name, result)
			}

			a.history = append(a.history, llm.ToolResultMessage(tc.ID, result))
		}
	}

	return "", fmt.Errorf("agent reached max iterations (%d) without a final response", a.maxIter)
}

// executeTool dispatches a tool call to the registry. Errors are rendered
// as result text, not returned.
func (a *Agent) executeTool(ctx context.Context, tc llm.ToolCall) string {
	if a.registry == nil {
		return fmt.Sprintf("error: unknown tool %q", tc.Name)
	}
	result, err := a.registry.CallTool(ctx, tc.Name, tc.Args)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	return result
}

// History returns the turn's conversation history.
func (a *Agent) History() []llm.Message {
	return a.history
}

// ToolCallCount returns how many tool results were recorded this turn.
func (a *Agent) ToolCallCount() int {
	n := 0
	for _, m := range a.history {
		if m.Role == llm.RoleTool {
			n++
		}
	}
	return n
}

// FormatToolCall returns a human-readable string for a tool call.
func FormatToolCall(name string, args map[string]any) string {
	var parts []string
	for k, v := range args {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}
