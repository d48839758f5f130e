package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/syllabot/syllabot/internal/core"
)

const outlineToolName = "get_course_outline"

const outlineSchema = `
{
  "type": "object",
  "properties": {
    "course_name": { "type": "string", "description": "Course title (partial matches work)" }
  },
  "required": ["course_name"]
}
`

// CourseResolver maps a requested course name to a known title and serves
// the link stored in the semantic index catalog.
type CourseResolver interface {
	ResolveCourse(ctx context.Context, name string) (string, error)
	CourseLink(ctx context.Context, title string) (string, error)
}

// CourseCatalog serves full course records by exact title.
type CourseCatalog interface {
	Get(ctx context.Context, title string) (core.Course, error)
}

// OutlineTool answers course-structure questions: title, link and the
// ordered lesson list.
type OutlineTool struct {
	resolver CourseResolver
	catalog  CourseCatalog
}

func NewOutlineTool(resolver CourseResolver, catalog CourseCatalog) *OutlineTool {
	return &OutlineTool{resolver: resolver, catalog: catalog}
}

func (t *OutlineTool) Definition() core.ToolDefinition {
	return core.ToolDefinition{
		Name:        outlineToolName,
		Description: "Get the outline of a course: its title, link and complete lesson list",
		Parameters:  json.RawMessage(outlineSchema),
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	var input struct {
		CourseName string `json:"course_name"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return Result{}, fmt.Errorf("invalid arguments: %w", err)
	}

	title, err := t.resolver.ResolveCourse(ctx, input.CourseName)
	if errors.Is(err, core.ErrNoMatchingCourse) {
		return Result{Content: fmt.Sprintf("No course found matching '%s'.", input.CourseName)}, nil
	}
	if err != nil {
		return Result{}, err
	}

	course, err := t.catalog.Get(ctx, title)
	if err != nil {
		return Result{}, fmt.Errorf("load course %q: %w", title, err)
	}

	link := course.Link
	if link == "" {
		// The index catalog keeps its own copy of the link; fall back to it
		// when the course record carries none.
		if indexed, err := t.resolver.CourseLink(ctx, title); err == nil {
			link = indexed
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Course: %s\n", course.Title)
	if link != "" {
		fmt.Fprintf(&sb, "Link: %s\n", link)
	}
	fmt.Fprintf(&sb, "Lessons (%d):\n", len(course.Lessons))
	for _, l := range course.Lessons {
		fmt.Fprintf(&sb, "%d. %s\n", l.Number, l.Title)
	}

	return Result{
		Content: strings.TrimRight(sb.String(), "\n"),
		Sources: []core.Citation{{Text: course.Title, Link: link}},
	}, nil
}
