package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/syllabot/syllabot/internal/core"
)

// Result is what a tool execution hands back to the orchestrator: text for
// the generation engine plus the source citations behind it. Citations ride
// the return value instead of shared state so concurrent queries cannot see
// each other's sources.
type Result struct {
	Content string
	Sources []core.Citation
}

// Tool is one named capability exposed to the generation engine.
type Tool interface {
	Definition() core.ToolDefinition
	Execute(ctx context.Context, args json.RawMessage) (Result, error)
}

// Registry holds the available tools and routes invocation requests to them.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	name := t.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Definitions returns the machine-readable schemas in registration order.
func (r *Registry) Definitions() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Dispatch validates the tool name and forwards the call. Unknown names and
// execution failures come back as errors for the caller to report into the
// conversation; they are never fatal by themselves.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (Result, error) {
	tool, ok := r.tools[name]
	if !ok {
		return Result{}, fmt.Errorf("tool %q not found", name)
	}
	return tool.Execute(ctx, args)
}
