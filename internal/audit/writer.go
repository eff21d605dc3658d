package audit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by both pgxpool.Pool and pgx.Tx, so entries can be
// written inside a caller-owned transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Insert appends entries to the audit log. Zero-ID entries are assigned one.
func Insert(ctx context.Context, db DBTX, entries ...Entry) error {
	if db == nil {
		return errors.New("audit: db not initialised")
	}
	for _, e := range entries {
		if e.Action == "" {
			return errors.New("audit: entry requires an action")
		}
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		var at any
		if !e.At.IsZero() {
			at = e.At
		}
		_, err := db.Exec(ctx, `
			INSERT INTO audit_logs (id, action, details, occurred_at, order_id, actor_id)
			VALUES ($1, $2, $3, COALESCE($4, NOW()), $5, $6)`,
			e.ID, string(e.Action), e.Details, at, e.OrderID, e.ActorID)
		if err != nil {
			return err
		}
	}
	return nil
}
