package audit

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed audit repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListEntries(ctx context.Context, action string, limit, offset int) ([]Entry, error) {
	query := `
		SELECT id, action, details, occurred_at, order_id, actor_id
		FROM audit_logs`
	args := []any{}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		query += ` WHERE action = $1`
		args = append(args, trimmed)
	}
	query += ` ORDER BY occurred_at DESC LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			act     string
			orderID *uuid.UUID
			actorID *uuid.UUID
			at      time.Time
		)
		if err := rows.Scan(&e.ID, &act, &e.Details, &at, &orderID, &actorID); err != nil {
			return nil, err
		}
		e.Action = Action(act)
		e.At = at
		e.OrderID = orderID
		e.ActorID = actorID
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
