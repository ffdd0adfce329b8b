// Package tools maps tool names to typed handler functions and their
// declared parameter schemas. The registry is built at request-setup time
// and handed to the orchestrator; there is no runtime reflection over
// plugin objects.
package tools

import (
	"context"
	"fmt"

	"github.com/michaelbrown/codechat/internal/llm"
)

// Handler executes one tool call. The returned string is fed back into the
// conversation as the tool result; a returned error is rendered as an error
// tool result, not surfaced to the gateway.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Registry manages the tools available to the model for one request.
type Registry struct {
	defs     []llm.ToolDef
	handlers map[string]Handler
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register adds a tool definition and its handler. Registering the same
// name twice replaces the previous handler.
func (r *Registry) Register(def llm.ToolDef, h Handler) {
	if _, exists := r.handlers[def.Name]; !exists {
		r.defs = append(r.defs, def)
	} else {
		for i, d := range r.defs {
			if d.Name == def.Name {
				r.defs[i] = def
			}
		}
	}
	r.handlers[def.Name] = h
}

// AllTools returns the registered tool definitions.
func (r *Registry) AllTools() []llm.ToolDef {
	return r.defs
}

// CallTool dispatches a tool call to its handler.
func (r *Registry) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	h, ok := r.handlers[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	return h(ctx, args)
}

// HasTools returns true if any tools are registered.
func (r *Registry) HasTools() bool {
	return len(r.handlers) > 0
}
