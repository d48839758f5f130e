package core

import "context"

// AIProvider is the generation-engine boundary. A response either carries a
// final text or one or more tool calls to dispatch.
type AIProvider interface {
	Chat(ctx context.Context, history []Message, tools []ToolDefinition) (Message, error)
}

// SessionStore keeps bounded per-conversation history. An unknown id is not
// an error; History returns an empty slice for it.
type SessionStore interface {
	Create(ctx context.Context) (string, error)
	History(ctx context.Context, sessionID string) ([]Exchange, error)
	Append(ctx context.Context, sessionID, userMessage, assistantMessage string) error
}
