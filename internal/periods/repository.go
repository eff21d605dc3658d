package periods

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oswork-erp/oswork-erp/internal/audit"
	"github.com/oswork-erp/oswork-erp/internal/platform/db"
)

// Repository persists periods in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const periodColumns = `id, start_date, end_date, paid, paid_at, total_orders, total_service_value, total_commission, created_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.StartDate, &p.EndDate, &p.Paid, &p.PaidAt,
		&p.TotalOrders, &p.TotalServiceValue, &p.TotalCommission, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, ErrNotFound
		}
		return Period{}, err
	}
	return p, nil
}

// WithTx executes fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

// GetPeriod fetches a single period by identifier.
func (r *Repository) GetPeriod(ctx context.Context, id uuid.UUID) (Period, error) {
	return scanPeriod(r.pool.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM periods WHERE id = $1`, id))
}

// FindByRange fetches the period with the exact [start, end] boundary.
func (r *Repository) FindByRange(ctx context.Context, start, end time.Time) (Period, error) {
	return scanPeriod(r.pool.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM periods WHERE start_date = $1 AND end_date = $2`, start, end))
}

// ListPeriods returns all periods, newest first.
func (r *Repository) ListPeriods(ctx context.Context) ([]Period, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+periodColumns+` FROM periods ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

type txStore struct {
	tx pgx.Tx
}

func (t *txStore) GetPeriodForUpdate(ctx context.Context, id uuid.UUID) (Period, error) {
	return scanPeriod(t.tx.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM periods WHERE id = $1 FOR UPDATE`, id))
}

func (t *txStore) InsertPeriod(ctx context.Context, p Period) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO periods (id, start_date, end_date, paid, total_orders, total_service_value, total_commission)
		VALUES ($1, $2, $3, $4, 0, 0, 0)`,
		p.ID, p.StartDate, p.EndDate, p.Paid)
	if isUniqueViolation(err) {
		return ErrDuplicateRange
	}
	return err
}

func (t *txStore) MarkPeriodPaid(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE periods SET paid = TRUE, paid_at = $2 WHERE id = $1`, id, at)
	return err
}

func (t *txStore) ListUnpaidOrderIDs(ctx context.Context, periodID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id FROM service_orders WHERE period_id = $1 AND status <> 'PAID'`, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkOrdersPaid flips every non-paid member order in one set-based update
// so concurrent reads never observe a half-paid period.
func (t *txStore) MarkOrdersPaid(ctx context.Context, periodID uuid.UUID, at time.Time) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE service_orders SET status = 'PAID', paid_at = $2
		WHERE period_id = $1 AND status <> 'PAID'`, periodID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *txStore) InsertAuditEntries(ctx context.Context, entries []audit.Entry) error {
	return audit.Insert(ctx, t.tx, entries...)
}

func (t *txStore) UnlinkOrders(ctx context.Context, periodID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE service_orders SET period_id = NULL, status = 'PENDING', paid_at = NULL
		WHERE period_id = $1`, periodID)
	return err
}

func (t *txStore) DeletePeriod(ctx context.Context, id uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM periods WHERE id = $1`, id)
	return err
}

func (t *txStore) RangeConflict(ctx context.Context, start, end time.Time) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM periods WHERE start_date <= $2 AND end_date >= $1
		)`, start, end).Scan(&exists)
	return exists, err
}

func (t *txStore) RecomputeTotals(ctx context.Context, periodID uuid.UUID) (Totals, error) {
	return recomputeTotals(ctx, t.tx, periodID)
}

// recomputeTotals overwrites the period's cached totals with the aggregate
// over currently linked orders. Shared with the order lifecycle, which calls
// it inside its own transactions.
func recomputeTotals(ctx context.Context, db rowQuerier, periodID uuid.UUID) (Totals, error) {
	var totals Totals
	err := db.QueryRow(ctx, `
		UPDATE periods SET
			total_orders = agg.order_count,
			total_service_value = agg.service_total,
			total_commission = agg.commission_total
		FROM (
			SELECT COUNT(*) AS order_count,
			       COALESCE(SUM(service_value), 0) AS service_total,
			       COALESCE(SUM(commission_value), 0) AS commission_total
			FROM service_orders WHERE period_id = $1
		) agg
		WHERE periods.id = $1
		RETURNING agg.order_count, agg.service_total, agg.commission_total`,
		periodID).Scan(&totals.Orders, &totals.ServiceValue, &totals.Commission)
	if errors.Is(err, pgx.ErrNoRows) {
		return Totals{}, ErrNotFound
	}
	return totals, err
}

// RecomputeTotalsIn runs the aggregate refresh against a caller-owned
// transaction or pool.
func RecomputeTotalsIn(ctx context.Context, db pgx.Tx, periodID uuid.UUID) (Totals, error) {
	return recomputeTotals(ctx, db, periodID)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
