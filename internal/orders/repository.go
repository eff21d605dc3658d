package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oswork-erp/oswork-erp/internal/audit"
	"github.com/oswork-erp/oswork-erp/internal/periods"
	"github.com/oswork-erp/oswork-erp/internal/platform/db"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

const orderColumns = `
	o.id, o.os_number, o.entry_date, o.customer_name, o.brand_id, b.name,
	o.service_value, o.commission_value, o.status, o.payment_method,
	o.description, o.period_id, o.paid_at, o.created_at`

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(&o.ID, &o.OSNumber, &o.EntryDate, &o.CustomerName, &o.BrandID,
		&o.BrandName, &o.ServiceValue, &o.CommissionValue, &status,
		&o.PaymentMethod, &o.Description, &o.PeriodID, &o.PaidAt, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}

// GetOrder fetches a single order with its brand name joined in.
func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM service_orders o
		JOIN brands b ON b.id = o.brand_id
		WHERE o.id = $1`, id))
}

// ListOrders returns orders newest entry date first, capped at limit.
func (r *Repository) ListOrders(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM service_orders o
		JOIN brands b ON b.id = o.brand_id
		ORDER BY o.entry_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

type txStore struct {
	tx pgx.Tx
}

func (t *txStore) InsertOrder(ctx context.Context, o Order) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO service_orders (id, os_number, entry_date, customer_name, brand_id,
			service_value, commission_value, status, payment_method, description,
			period_id, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID, o.OSNumber, o.EntryDate, o.CustomerName, o.BrandID,
		o.ServiceValue, o.CommissionValue, string(o.Status), o.PaymentMethod,
		o.Description, o.PeriodID, o.PaidAt)
	return mapOSNumberConflict(err)
}

func (t *txStore) UpdateOrder(ctx context.Context, o Order) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE service_orders SET
			os_number = $2, entry_date = $3, customer_name = $4, brand_id = $5,
			service_value = $6, commission_value = $7, status = $8,
			payment_method = $9, description = $10, period_id = $11, paid_at = $12
		WHERE id = $1`,
		o.ID, o.OSNumber, o.EntryDate, o.CustomerName, o.BrandID,
		o.ServiceValue, o.CommissionValue, string(o.Status), o.PaymentMethod,
		o.Description, o.PeriodID, o.PaidAt)
	if err != nil {
		return mapOSNumberConflict(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM service_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txStore) DeleteOrderAudit(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM audit_logs WHERE order_id = $1`, id)
	return err
}

func (t *txStore) InsertAudit(ctx context.Context, entry audit.Entry) error {
	return audit.Insert(ctx, t.tx, entry)
}

func (t *txStore) RecomputePeriodTotals(ctx context.Context, periodID uuid.UUID) error {
	_, err := periods.RecomputeTotalsIn(ctx, t.tx, periodID)
	return err
}

func mapOSNumberConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateOSNumber
	}
	return err
}
