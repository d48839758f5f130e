package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/syllabot/syllabot/internal/core"
)

const anthropicVersion = "2023-06-01"

type Anthropic struct {
	baseProvider
	maxTokens int
}

func NewAnthropic(apiKey, model string, maxTokens int, timeout time.Duration) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider("https://api.anthropic.com", apiKey, model, timeout),
		maxTokens:    maxTokens,
	}
}

type anthropicBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

func (a *Anthropic) Chat(ctx context.Context, history []core.Message, tools []core.ToolDefinition) (core.Message, error) {
	system, messages := buildAnthropicMessages(history)

	payload := map[string]any{
		"model":       a.model,
		"max_tokens":  a.maxTokens,
		"temperature": 0,
		"messages":    messages,
	}
	if system != "" {
		payload["system"] = system
	}
	if len(tools) > 0 {
		wireTools := make([]map[string]any, 0, len(tools))
		for _, t := range tools {
			wireTools = append(wireTools, map[string]any{
				"name":         t.Name,
				"description":  t.Description,
				"input_schema": t.Parameters,
			})
		}
		payload["tools"] = wireTools
		payload["tool_choice"] = map[string]string{"type": "auto"}
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", payload, headers)
	if err != nil {
		return core.Message{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Message{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return core.Message{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Content    []anthropicBlock `json:"content"`
		StopReason string           `json:"stop_reason"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Message{}, fmt.Errorf("decode: %w", err)
	}

	msg := core.Message{Role: core.RoleAssistant}
	var text strings.Builder
	for _, block := range result.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := block.Input
			if len(args) == 0 {
				args = json.RawMessage(`{}`)
			}
			msg.ToolCalls = append(msg.ToolCalls, core.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}
	msg.Content = text.String()
	return msg, nil
}

// buildAnthropicMessages translates engine-neutral history into the messages
// API shape: system turns collapse into the system parameter, assistant tool
// calls become tool_use blocks, and runs of tool results fold into a single
// user message of tool_result blocks.
func buildAnthropicMessages(history []core.Message) (string, []anthropicMessage) {
	var system strings.Builder
	var messages []anthropicMessage

	for i := 0; i < len(history); i++ {
		m := history[i]
		switch m.Role {
		case core.RoleSystem:
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(m.Content)

		case core.RoleAssistant:
			var blocks []anthropicBlock
			if m.Content != "" {
				blocks = append(blocks, anthropicBlock{Type: "text", Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				input := tc.Arguments
				if len(input) == 0 {
					input = json.RawMessage(`{}`)
				}
				blocks = append(blocks, anthropicBlock{
					Type:  "tool_use",
					ID:    tc.ID,
					Name:  tc.Name,
					Input: input,
				})
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropicBlock{Type: "text", Text: ""})
			}
			messages = append(messages, anthropicMessage{Role: "assistant", Content: blocks})

		case core.RoleTool:
			// Fold the whole run of tool results into one user turn.
			var blocks []anthropicBlock
			for ; i < len(history) && history[i].Role == core.RoleTool; i++ {
				blocks = append(blocks, anthropicBlock{
					Type:      "tool_result",
					ToolUseID: history[i].ToolCallID,
					Content:   history[i].Content,
				})
			}
			i--
			messages = append(messages, anthropicMessage{Role: "user", Content: blocks})

		default:
			messages = append(messages, anthropicMessage{
				Role:    "user",
				Content: []anthropicBlock{{Type: "text", Text: m.Content}},
			})
		}
	}

	return system.String(), messages
}
