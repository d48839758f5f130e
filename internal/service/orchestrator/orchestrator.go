package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/internal/tools"
	"github.com/syllabot/syllabot/pkg/log"
	"github.com/syllabot/syllabot/pkg/retry"
)

// ToolDispatcher is the registry boundary the orchestrator drives.
type ToolDispatcher interface {
	Definitions() []core.ToolDefinition
	Dispatch(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

// Orchestrator runs the tool-calling protocol against the generation engine:
// submit the prompt with tool schemas, execute any requested tools, feed the
// results back, and stop at a final text answer. Tool rounds are capped; the
// last engine call carries no tool schemas so the engine has to answer.
type Orchestrator struct {
	engine     core.AIProvider
	dispatcher ToolDispatcher
	maxRounds  int
	maxTokens  int
	retrier    *retry.Retrier
}

type Option func(*Orchestrator)

// WithRetrier enables a bounded retry policy on engine calls. Off by default.
func WithRetrier(r *retry.Retrier) Option {
	return func(o *Orchestrator) { o.retrier = r }
}

// WithContextBudget caps the prompt token count; history is trimmed
// oldest-first to fit. Zero disables trimming.
func WithContextBudget(maxTokens int) Option {
	return func(o *Orchestrator) { o.maxTokens = maxTokens }
}

func New(engine core.AIProvider, dispatcher ToolDispatcher, maxRounds int, opts ...Option) *Orchestrator {
	if maxRounds < 0 {
		maxRounds = 1
	}
	o := &Orchestrator{
		engine:     engine,
		dispatcher: dispatcher,
		maxRounds:  maxRounds,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate answers one query. It returns the final answer text and the
// citations accumulated from every tool execution along the way.
func (o *Orchestrator) Generate(ctx context.Context, query string, history []core.Exchange) (string, []core.Citation, error) {
	logger := log.FromCtx(ctx)

	messages := buildPrompt(history, query, o.maxTokens)
	var citations []core.Citation

	for round := 0; ; round++ {
		var defs []core.ToolDefinition
		if round < o.maxRounds {
			defs = o.dispatcher.Definitions()
		}

		response, err := o.chat(ctx, messages, defs)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", core.ErrGenerationUnavailable, err)
		}

		// Without tool schemas the engine cannot request tools, so this also
		// covers the forced final round.
		if len(response.ToolCalls) == 0 || defs == nil {
			return response.Content, citations, nil
		}

		messages = append(messages, response)

		for _, tc := range response.ToolCalls {
			logger.Info().Str("tool", tc.Name).Msg("executing tool")

			result, err := o.dispatcher.Dispatch(ctx, tc.Name, tc.Arguments)
			content := result.Content
			if err != nil {
				// Reported back into the conversation so the engine can
				// acknowledge the failure instead of the query dying.
				content = fmt.Sprintf("Error executing tool: %v", err)
				logger.Warn().Err(err).Str("tool", tc.Name).Msg("tool execution failed")
			}
			citations = append(citations, result.Sources...)

			messages = append(messages, core.Message{
				Role:       core.RoleTool,
				Content:    content,
				ToolCallID: tc.ID,
			})
		}
	}
}

func (o *Orchestrator) chat(ctx context.Context, messages []core.Message, defs []core.ToolDefinition) (core.Message, error) {
	if o.retrier == nil {
		return o.engine.Chat(ctx, messages, defs)
	}

	var response core.Message
	err := o.retrier.Do(ctx, func() error {
		var chatErr error
		response, chatErr = o.engine.Chat(ctx, messages, defs)
		return chatErr
	})
	return response, err
}
