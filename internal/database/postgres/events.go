package postgres

import (
	"context"
	"fmt"

	"github.com/kozaktomas/face-sentry/internal/emotion"
	"github.com/kozaktomas/face-sentry/internal/history"
)

// EventRepository archives detection events. It satisfies the engine's
// Archiver contract.
type EventRepository struct {
	pool *Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// ArchiveEvent inserts one detection event.
func (r *EventRepository) ArchiveEvent(ctx context.Context, event history.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO detection_events (id, identity, similarity, emotion, motion, cumulative_motion, is_known, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, event.ID, event.Identity, event.Similarity, string(event.Emotion),
		event.Motion, event.CumulativeMotion, event.IsKnown, event.Timestamp)
	if err != nil {
		return fmt.Errorf("archive event: %w", err)
	}
	return nil
}

// Recent returns at most limit events, newest first, optionally
// filtered by identity label.
func (r *EventRepository) Recent(ctx context.Context, limit int, identity string) ([]history.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, identity, similarity, emotion, motion, cumulative_motion, is_known, ts
		FROM detection_events
	`
	args := []any{}
	if identity != "" {
		query += ` WHERE identity = $1`
		args = append(args, identity)
	}
	query += fmt.Sprintf(` ORDER BY ts DESC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []history.Event
	for rows.Next() {
		var e history.Event
		var label string
		if err := rows.Scan(&e.ID, &e.Identity, &e.Similarity, &label,
			&e.Motion, &e.CumulativeMotion, &e.IsKnown, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Emotion = emotion.Label(label)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Prune removes events older than the newest keep entries. The
// archive grows without bound otherwise.
func (r *EventRepository) Prune(ctx context.Context, keep int) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM detection_events
		WHERE id NOT IN (
			SELECT id FROM detection_events ORDER BY ts DESC LIMIT $1
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("prune events: %w", err)
	}
	return nil
}
