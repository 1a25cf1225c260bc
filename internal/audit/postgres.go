package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo persists audit events in the audit_events table.
//
// NOTE: expected schema:
//
//	CREATE TABLE audit_events (
//	    id            UUID PRIMARY KEY,
//	    type          TEXT NOT NULL,
//	    actor_user_id UUID NOT NULL,
//	    actor_role    TEXT NOT NULL,
//	    ip_address    TEXT NOT NULL DEFAULT '',
//	    request_id    TEXT NOT NULL DEFAULT '',
//	    bet_id        TEXT NOT NULL DEFAULT '',
//	    message       TEXT NOT NULL DEFAULT '',
//	    metadata      JSONB,
//	    created_at    TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_events
		    (id, type, actor_user_id, actor_role, ip_address, request_id, bet_id, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::jsonb, $10)`,
		e.ID, e.Type, e.ActorUserID, e.ActorRole, e.IPAddress,
		e.RequestID, e.BetID, e.Message, e.Metadata, e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) ListByActor(ctx context.Context, actorUserID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, actor_user_id, actor_role, ip_address,
		       request_id, bet_id, message, COALESCE(metadata::text, ''), created_at
		FROM audit_events
		WHERE actor_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		actorUserID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID, &e.Type, &e.ActorUserID, &e.ActorRole, &e.IPAddress,
			&e.RequestID, &e.BetID, &e.Message, &e.Metadata, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
