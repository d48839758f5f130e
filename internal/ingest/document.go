package ingest

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/internal/providers/rag"
)

var lessonMarker = regexp.MustCompile(`^Lesson (\d+):\s*(.*)$`)

// Parser turns course scripts into a Course record plus retrieval chunks.
//
// The expected format is a small header followed by lesson sections:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: Introduction
//	Lesson Link: <url>
//	<lesson text...>
//
// Header lines and lesson markers are all optional. A document without
// lesson markers becomes a single lesson 0 named after the document.
type Parser struct {
	chunker rag.ChunkerConfig
}

func NewParser(chunker rag.ChunkerConfig) *Parser {
	return &Parser{chunker: chunker}
}

// Parse reads one document. Empty or unreadable content yields a course with
// zero chunks; the caller decides whether that is worth a warning.
func (p *Parser) Parse(name string, r io.Reader) (core.Course, []core.Chunk, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return core.Course{}, nil, fmt.Errorf("read %s: %w", name, err)
	}

	course := core.Course{Title: defaultTitle(name)}
	body := parseHeader(lines, &course)

	sections := splitLessons(body, course.Title)
	position := 0
	var chunks []core.Chunk

	for _, sec := range sections {
		course.Lessons = append(course.Lessons, core.Lesson{
			Number: sec.number,
			Title:  sec.title,
			Link:   sec.link,
		})
		for _, piece := range rag.SplitText(strings.Join(sec.content, "\n"), p.chunker) {
			chunks = append(chunks, core.Chunk{
				Content:      piece.Text,
				CourseTitle:  course.Title,
				LessonNumber: sec.number,
				Position:     position,
			})
			position++
		}
	}

	return course, chunks, nil
}

// parseHeader consumes the leading Course Title/Link/Instructor lines and
// returns the remaining body.
func parseHeader(lines []string, course *core.Course) []string {
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
		case strings.HasPrefix(line, "Course Title:"):
			if title := strings.TrimSpace(strings.TrimPrefix(line, "Course Title:")); title != "" {
				course.Title = title
			}
		case strings.HasPrefix(line, "Course Link:"):
			course.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
		case strings.HasPrefix(line, "Course Instructor:"):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
		default:
			return lines[i:]
		}
	}
	return nil
}

type lessonSection struct {
	number  int
	title   string
	link    string
	content []string
}

// splitLessons cuts the body at lesson markers. A body without markers is one
// synthetic lesson 0 so plain documents stay ingestable.
func splitLessons(body []string, courseTitle string) []lessonSection {
	var sections []lessonSection
	current := -1

	for _, line := range body {
		trimmed := strings.TrimSpace(line)

		if m := lessonMarker.FindStringSubmatch(trimmed); m != nil {
			number, _ := strconv.Atoi(m[1])
			sections = append(sections, lessonSection{number: number, title: strings.TrimSpace(m[2])})
			current++
			continue
		}
		if current >= 0 && strings.HasPrefix(trimmed, "Lesson Link:") && sections[current].link == "" && len(sections[current].content) == 0 {
			sections[current].link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
			continue
		}

		if current < 0 {
			if trimmed == "" {
				continue
			}
			sections = append(sections, lessonSection{number: 0, title: courseTitle})
			current = 0
		}
		sections[current].content = append(sections[current].content, line)
	}

	return sections
}

func defaultTitle(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
