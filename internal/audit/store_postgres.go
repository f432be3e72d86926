package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore appends events to the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (occurred_at, user_id, email, action, decision, reason, device, actor_id, request_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.Timestamp, event.UserID, event.Email, event.Action, event.Decision,
		event.Reason, event.Device, event.ActorID, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListByUser returns a user's events oldest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT occurred_at, user_id, email, action, decision, reason, device, actor_id, request_id FROM audit_events WHERE user_id = $1 ORDER BY occurred_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Timestamp, &e.UserID, &e.Email, &e.Action, &e.Decision,
			&e.Reason, &e.Device, &e.ActorID, &e.RequestID); err != nil {
			return nil, fmt.Errorf("list audit events: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
