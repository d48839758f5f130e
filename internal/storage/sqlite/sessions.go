package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/syllabot/syllabot/internal/core"
	"github.com/syllabot/syllabot/pkg/log"
)

// Sessions persists conversation exchanges per session. Each session keeps a
// sliding window of the most recent exchanges, and the total number of
// sessions is capped so long-running deployments do not grow without bound.
type Sessions struct {
	db          *sql.DB
	window      int
	maxSessions int
}

func NewSessions(db *sql.DB, window, maxSessions int) *Sessions {
	if window <= 0 {
		window = 2
	}
	if maxSessions <= 0 {
		maxSessions = 1000
	}
	return &Sessions{db: db, window: window, maxSessions: maxSessions}
}

func (s *Sessions) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO sessions (id) VALUES (?)`, id); err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	if err := s.evictOldest(ctx, tx); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit session: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("session_id", id).Msg("created session")
	return id, nil
}

// evictOldest drops least-recently-active sessions above the cap. The cascade
// on exchanges cleans their history with them.
func (s *Sessions) evictOldest(ctx context.Context, tx *sql.Tx) error {
	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&total); err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	if total <= s.maxSessions {
		return nil
	}

	query := `DELETE FROM sessions WHERE id IN (
		SELECT id FROM sessions ORDER BY last_active ASC, rowid ASC LIMIT ?
	)`
	if _, err := tx.ExecContext(ctx, query, total-s.maxSessions); err != nil {
		return fmt.Errorf("failed to evict sessions: %w", err)
	}

	log.FromCtx(ctx).Debug().Int("evicted", total-s.maxSessions).Msg("evicted oldest sessions")
	return nil
}

func (s *Sessions) History(ctx context.Context, sessionID string) ([]core.Exchange, error) {
	// Fetch the LAST 'window' exchanges by ordering DESC
	query := `SELECT user_message, assistant_message FROM exchanges
		WHERE session_id = ? ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, sessionID, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []core.Exchange
	for rows.Next() {
		var ex core.Exchange
		if err := rows.Scan(&ex.UserMessage, &ex.AssistantMessage); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Back to chronological order for the prompt.
	for i, j := 0, len(exchanges)-1; i < j; i, j = i+1, j-1 {
		exchanges[i], exchanges[j] = exchanges[j], exchanges[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(exchanges)).Msg("loaded session history")
	return exchanges, nil
}

func (s *Sessions) Append(ctx context.Context, sessionID, userMessage, assistantMessage string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	// Appending to an unknown session recreates it rather than failing.
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO sessions (id) VALUES (?)`, sessionID); err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET last_active = CURRENT_TIMESTAMP WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	// Recreation is a second path that grows the sessions table, so the cap
	// has to hold here too, not just in Create.
	if err := s.evictOldest(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exchanges (session_id, user_message, assistant_message) VALUES (?, ?, ?)`,
		sessionID, userMessage, assistantMessage); err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}

	// Keep only the sliding window; older exchanges are gone for good.
	prune := `DELETE FROM exchanges WHERE session_id = ? AND id NOT IN (
		SELECT id FROM exchanges WHERE session_id = ? ORDER BY id DESC LIMIT ?
	)`
	if _, err := tx.ExecContext(ctx, prune, sessionID, sessionID, s.window); err != nil {
		return fmt.Errorf("failed to prune exchanges: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit exchange: %w", err)
	}
	return nil
}
