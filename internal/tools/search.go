package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/syllabot/syllabot/internal/core"
)

const searchToolName = "search_course_content"

const searchSchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "What to search for in the course content" },
    "course_name": { "type": "string", "description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')" },
    "lesson_number": { "type": "integer", "description": "Specific lesson number to search within (e.g. 1, 2, 3)" }
  },
  "required": ["query"]
}
`

// Searcher is the semantic-index boundary the search tool needs.
type Searcher interface {
	Search(ctx context.Context, query, courseFilter string, lessonFilter *int, k int) ([]core.SearchResult, error)
}

// SearchTool answers content questions by querying the semantic index with
// optional course/lesson narrowing.
type SearchTool struct {
	index      Searcher
	maxResults int
}

func NewSearchTool(index Searcher, maxResults int) *SearchTool {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &SearchTool{index: index, maxResults: maxResults}
}

func (t *SearchTool) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name:        searchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		Parameters:  json.RawMessage(searchSchema),
	}
}

type searchInput struct {
	Query        string `json:"query"`
	CourseName   string `json:"course_name"`
	LessonNumber *int   `json:"lesson_number"`
}

func (t *SearchTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	var input searchInput
	if err := json.Unmarshal(args, &input); err != nil {
		return Result{}, fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return Result{}, errors.New("query must not be empty")
	}

	results, err := t.index.Search(ctx, input.Query, input.CourseName, input.LessonNumber, t.maxResults)
	if errors.Is(err, core.ErrNoMatchingCourse) {
		// An unresolved filter is an answerable outcome, not a failure.
		return Result{Content: fmt.Sprintf("No course found matching '%s'.", input.CourseName)}, nil
	}
	if err != nil {
		return Result{}, err
	}

	if len(results) == 0 {
		return Result{Content: noContentMessage(input)}, nil
	}

	var sb strings.Builder
	var sources []core.Citation
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		label := fmt.Sprintf("%s - Lesson %d", r.CourseTitle, r.LessonNumber)
		fmt.Fprintf(&sb, "[%s]\n%s", label, r.Content)
		sources = append(sources, core.Citation{Text: label, Link: r.LessonLink})
	}

	return Result{Content: sb.String(), Sources: sources}, nil
}

func noContentMessage(input searchInput) string {
	var scope strings.Builder
	if input.CourseName != "" {
		fmt.Fprintf(&scope, " in course '%s'", input.CourseName)
	}
	if input.LessonNumber != nil {
		fmt.Fprintf(&scope, " in lesson %d", *input.LessonNumber)
	}
	return fmt.Sprintf("No relevant content found%s.", scope.String())
}
