package core

import "encoding/json"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolDefinition describes a callable capability exposed to the generation
// engine. Parameters holds a JSON Schema object.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall is a tool-invocation request produced by the generation engine.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is one conversation turn in the engine-neutral shape. Providers
// translate it to their wire format.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Citation is a user-facing reference to retrieved source material.
type Citation struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

// Exchange is one user/assistant pair as kept by the session store.
type Exchange struct {
	UserMessage      string
	AssistantMessage string
}

// Lesson belongs to exactly one course.
type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Course is the unit of ingestion, identified by its title.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Chunk is a bounded span of lesson text, the unit stored in the semantic
// index. Position is the chunk's index within its course.
type Chunk struct {
	Content      string
	CourseTitle  string
	LessonNumber int
	Position     int
}

// SearchResult maps a stored chunk to a relevance score for one query.
type SearchResult struct {
	Content      string
	CourseTitle  string
	LessonNumber int
	LessonLink   string
	Similarity   float32
}

// Answer is the composed result of one query/answer cycle.
type Answer struct {
	Text      string
	Citations []Citation
	SessionID string
}

// CourseStats is a read-only projection over ingested courses.
type CourseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}
