package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syllabot/syllabot/internal/core"
)

// Courses stores the structured course catalog: title, link, instructor and
// the ordered lesson list. The semantic index holds the text; this table
// answers outline and analytics queries exactly.
type Courses struct {
	db *sql.DB
}

func NewCourses(db *sql.DB) *Courses {
	return &Courses{db: db}
}

func (c *Courses) Save(ctx context.Context, course core.Course) error {
	lessonsJSON, err := json.Marshal(course.Lessons)
	if err != nil {
		return fmt.Errorf("failed to marshal lessons: %w", err)
	}

	query := `INSERT INTO courses (title, link, instructor, lessons) VALUES (?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET link = excluded.link,
			instructor = excluded.instructor, lessons = excluded.lessons`
	if _, err := c.db.ExecContext(ctx, query,
		course.Title, course.Link, course.Instructor, string(lessonsJSON)); err != nil {
		return fmt.Errorf("failed to save course: %w", err)
	}
	return nil
}

func (c *Courses) Has(ctx context.Context, title string) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE title = ?`, title).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check course: %w", err)
	}
	return true, nil
}

func (c *Courses) Get(ctx context.Context, title string) (core.Course, error) {
	var course core.Course
	var lessonsJSON string

	query := `SELECT title, link, instructor, lessons FROM courses WHERE title = ?`
	err := c.db.QueryRowContext(ctx, query, title).Scan(
		&course.Title, &course.Link, &course.Instructor, &lessonsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Course{}, fmt.Errorf("%w: %q", core.ErrNoMatchingCourse, title)
	}
	if err != nil {
		return core.Course{}, fmt.Errorf("failed to load course: %w", err)
	}

	if err := json.Unmarshal([]byte(lessonsJSON), &course.Lessons); err != nil {
		return core.Course{}, fmt.Errorf("failed to unmarshal lessons: %w", err)
	}
	return course, nil
}

func (c *Courses) Titles(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT title FROM courses ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query course titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}
