package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/internal/tools"
	"github.com/syllabot/syllabot/pkg/retry"
)

type engineStep struct {
	response core.Message
	err      error
}

type engineCall struct {
	messages []core.Message
	tools    []core.ToolDefinition
}

// scriptedEngine plays back a fixed sequence of responses and records every
// call so tests can assert on the exact conversation the engine saw.
type scriptedEngine struct {
	steps []engineStep
	calls []engineCall
}

func (e *scriptedEngine) Chat(_ context.Context, history []core.Message, defs []core.ToolDefinition) (core.Message, error) {
	e.calls = append(e.calls, engineCall{
		messages: append([]core.Message(nil), history...),
		tools:    defs,
	})
	step := e.steps[len(e.calls)-1]
	return step.response, step.err
}

type fakeTool struct {
	name   string
	result tools.Result
	err    error
	args   []json.RawMessage
}

func (f *fakeTool) Definition() core.ToolDefinition {
	return core.ToolDefinition{Name: f.name, Parameters: json.RawMessage(`{"type":"object"}`)}
}

func (f *fakeTool) Execute(_ context.Context, args json.RawMessage) (tools.Result, error) {
	f.args = append(f.args, args)
	return f.result, f.err
}

func toolCallResponse(id, name, args string) core.Message {
	return core.Message{
		Role:      core.RoleAssistant,
		ToolCalls: []core.ToolCall{{ID: id, Name: name, Arguments: json.RawMessage(args)}},
	}
}

func TestGenerateDirectAnswer(t *testing.T) {
	engine := &scriptedEngine{steps: []engineStep{
		{response: core.Message{Role: core.RoleAssistant, Content: "Paris."}},
	}}
	o := New(engine, tools.NewRegistry(&fakeTool{name: "search"}), 1)

	answer, citations, err := o.Generate(context.Background(), "Capital of France?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
	assert.Empty(t, citations)

	require.Len(t, engine.calls, 1)
	require.Len(t, engine.calls[0].tools, 1)
	assert.Equal(t, "search", engine.calls[0].tools[0].Name)

	msgs := engine.calls[0].messages
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleSystem, msgs[0].Role)
	assert.Equal(t, "Capital of France?", msgs[1].Content)
}

func TestGenerateToolRoundCollectsCitations(t *testing.T) {
	tool := &fakeTool{
		name: "search_course_content",
		result: tools.Result{
			Content: "[Vector Retrieval - Lesson 1]\nEmbeddings map text into vectors.",
			Sources: []core.Citation{{Text: "Vector Retrieval - Lesson 1", Link: "https://example.com/1"}},
		},
	}
	engine := &scriptedEngine{steps: []engineStep{
		{response: toolCallResponse("call_1", "search_course_content", `{"query":"embeddings"}`)},
		{response: core.Message{Role: core.RoleAssistant, Content: "Embeddings map text into vectors."}},
	}}
	o := New(engine, tools.NewRegistry(tool), 1)

	answer, citations, err := o.Generate(context.Background(), "What are embeddings?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Embeddings map text into vectors.", answer)
	require.Len(t, citations, 1)
	assert.Equal(t, "https://example.com/1", citations[0].Link)

	require.Len(t, engine.calls, 2)
	// One round means the follow-up call carries no tool schemas.
	assert.Nil(t, engine.calls[1].tools)

	msgs := engine.calls[1].messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, core.RoleTool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Contains(t, last.Content, "Embeddings map text")

	require.Len(t, tool.args, 1)
	assert.JSONEq(t, `{"query":"embeddings"}`, string(tool.args[0]))
}

func TestGenerateToolFailureIsReportedBack(t *testing.T) {
	tool := &fakeTool{name: "search_course_content", err: errors.New("index offline")}
	engine := &scriptedEngine{steps: []engineStep{
		{response: toolCallResponse("call_1", "search_course_content", `{"query":"x"}`)},
		{response: core.Message{Role: core.RoleAssistant, Content: "I could not search right now."}},
	}}
	o := New(engine, tools.NewRegistry(tool), 1)

	answer, citations, err := o.Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "I could not search right now.", answer)
	assert.Empty(t, citations)

	msgs := engine.calls[1].messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, "Error executing tool: index offline", last.Content)
}

func TestGenerateUnknownToolIsReportedBack(t *testing.T) {
	engine := &scriptedEngine{steps: []engineStep{
		{response: toolCallResponse("call_1", "does_not_exist", `{}`)},
		{response: core.Message{Role: core.RoleAssistant, Content: "done"}},
	}}
	o := New(engine, tools.NewRegistry(), 1)

	_, _, err := o.Generate(context.Background(), "q", nil)
	require.NoError(t, err)

	last := engine.calls[1].messages[len(engine.calls[1].messages)-1]
	assert.Contains(t, last.Content, "Error executing tool:")
	assert.Contains(t, last.Content, "does_not_exist")
}

func TestGenerateRoundCapForcesAnswer(t *testing.T) {
	tool := &fakeTool{name: "search_course_content", result: tools.Result{Content: "chunk"}}
	engine := &scriptedEngine{steps: []engineStep{
		{response: toolCallResponse("call_1", "search_course_content", `{"query":"a"}`)},
		{response: toolCallResponse("call_2", "search_course_content", `{"query":"b"}`)},
		{response: core.Message{Role: core.RoleAssistant, Content: "final"}},
	}}
	o := New(engine, tools.NewRegistry(tool), 2)

	answer, _, err := o.Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "final", answer)

	require.Len(t, engine.calls, 3)
	assert.NotNil(t, engine.calls[0].tools)
	assert.NotNil(t, engine.calls[1].tools)
	assert.Nil(t, engine.calls[2].tools)
	assert.Len(t, tool.args, 2)
}

func TestGenerateEngineFailure(t *testing.T) {
	engine := &scriptedEngine{steps: []engineStep{
		{err: errors.New("connection refused")},
	}}
	o := New(engine, tools.NewRegistry(), 1)

	_, _, err := o.Generate(context.Background(), "q", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrGenerationUnavailable)
}

func TestGenerateRetriesTransientEngineFailure(t *testing.T) {
	engine := &scriptedEngine{steps: []engineStep{
		{err: errors.New("transient")},
		{response: core.Message{Role: core.RoleAssistant, Content: "ok"}},
	}}
	retrier := retry.NewRetrier(&retry.Config{
		MaxRetries:    1,
		BackoffFactor: 1,
		InitialDelay:  time.Millisecond,
		MaxDelay:      time.Millisecond,
	})
	o := New(engine, tools.NewRegistry(), 1, WithRetrier(retrier))

	answer, _, err := o.Generate(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Len(t, engine.calls, 2)
}

func TestGenerateTrimsHistoryToBudget(t *testing.T) {
	huge := strings.Repeat("filler ", 3000)
	history := []core.Exchange{
		{UserMessage: "OLD-MARKER " + huge, AssistantMessage: huge},
		{UserMessage: "recent question", AssistantMessage: "recent answer"},
	}
	engine := &scriptedEngine{steps: []engineStep{
		{response: core.Message{Role: core.RoleAssistant, Content: "ok"}},
	}}
	o := New(engine, tools.NewRegistry(), 1, WithContextBudget(600))

	_, _, err := o.Generate(context.Background(), "q", history)
	require.NoError(t, err)

	msgs := engine.calls[0].messages
	// system + one retained exchange + query
	require.Len(t, msgs, 4)
	assert.Equal(t, "recent question", msgs[1].Content)
	assert.Equal(t, "recent answer", msgs[2].Content)
	for _, m := range msgs {
		assert.NotContains(t, m.Content, "OLD-MARKER")
	}
}

func TestGenerateKeepsAllHistoryWithoutBudget(t *testing.T) {
	history := []core.Exchange{
		{UserMessage: "q1", AssistantMessage: "a1"},
		{UserMessage: "q2", AssistantMessage: "a2"},
	}
	engine := &scriptedEngine{steps: []engineStep{
		{response: core.Message{Role: core.RoleAssistant, Content: "ok"}},
	}}
	o := New(engine, tools.NewRegistry(), 1)

	_, _, err := o.Generate(context.Background(), "q3", history)
	require.NoError(t, err)

	msgs := engine.calls[0].messages
	require.Len(t, msgs, 6)
	assert.Equal(t, "q1", msgs[1].Content)
	assert.Equal(t, "a2", msgs[4].Content)
	assert.Equal(t, "q3", msgs[5].Content)
}
