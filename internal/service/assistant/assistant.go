package assistant

import (
	"context"
	"fmt"

	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/pkg/log"
)

// Generator produces one answer from a query plus prior exchanges.
type Generator interface {
	Generate(ctx context.Context, query string, history []core.Exchange) (string, []core.Citation, error)
}

// CourseLister serves the ingested course titles for analytics.
type CourseLister interface {
	Titles(ctx context.Context) ([]string, error)
}

// Assistant is the top-level query coordinator: it resolves the session,
// runs the generation protocol and records the exchange.
type Assistant struct {
	generator Generator
	sessions  core.SessionStore
	courses   CourseLister
}

func New(generator Generator, sessions core.SessionStore, courses CourseLister) *Assistant {
	return &Assistant{generator: generator, sessions: sessions, courses: courses}
}

// Answer handles one user query. An empty session id starts a fresh session.
// The exchange is recorded only after generation succeeds, so a failed query
// leaves the session history untouched.
func (a *Assistant) Answer(ctx context.Context, query, sessionID string) (core.Answer, error) {
	logger := log.FromCtx(ctx)

	if sessionID == "" {
		id, err := a.sessions.Create(ctx)
		if err != nil {
			return core.Answer{}, fmt.Errorf("failed to create session: %w", err)
		}
		sessionID = id
	}

	history, err := a.sessions.History(ctx, sessionID)
	if err != nil {
		return core.Answer{}, fmt.Errorf("failed to load history: %w", err)
	}

	text, citations, err := a.generator.Generate(ctx, query, history)
	if err != nil {
		return core.Answer{}, err
	}

	if err := a.sessions.Append(ctx, sessionID, query, text); err != nil {
		// The answer is already produced; losing one history entry is not
		// worth failing the query over.
		logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to record exchange")
	}

	return core.Answer{Text: text, Citations: citations, SessionID: sessionID}, nil
}

// Stats reports the ingested course catalog size and titles.
func (a *Assistant) Stats(ctx context.Context) (core.CourseStats, error) {
	titles, err := a.courses.Titles(ctx)
	if err != nil {
		return core.CourseStats{}, fmt.Errorf("failed to list courses: %w", err)
	}
	return core.CourseStats{TotalCourses: len(titles), CourseTitles: titles}, nil
}
