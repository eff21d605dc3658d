package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) MonthCommission(ctx context.Context, from, to time.Time) (MonthTotals, error) {
	const q = `
		SELECT
			COALESCE(SUM(commission_value), 0),
			COALESCE(SUM(commission_value) FILTER (WHERE status = 'PAID'), 0),
			COALESCE(SUM(commission_value) FILTER (WHERE status = 'PENDING'), 0)
		FROM service_orders
		WHERE entry_date >= $1 AND entry_date < $2`

	var t MonthTotals
	if err := r.pool.QueryRow(ctx, q, from, to).Scan(&t.Total, &t.Paid, &t.Pending); err != nil {
		return MonthTotals{}, fmt.Errorf("month commission: %w", err)
	}
	return t, nil
}

func (r *PGRepository) TopBrands(ctx context.Context, limit int) ([]RankedEntry, error) {
	const q = `
		SELECT b.name, COALESCE(SUM(o.commission_value), 0) AS total
		FROM service_orders o
		JOIN brands b ON b.id = o.brand_id
		GROUP BY b.name
		ORDER BY total DESC
		LIMIT $1`
	return r.ranking(ctx, q, limit, "top brands")
}

func (r *PGRepository) TopCustomers(ctx context.Context, limit int) ([]RankedEntry, error) {
	const q = `
		SELECT customer_name, COALESCE(SUM(service_value), 0) AS total
		FROM service_orders
		GROUP BY customer_name
		ORDER BY total DESC
		LIMIT $1`
	return r.ranking(ctx, q, limit, "top customers")
}

func (r *PGRepository) ranking(ctx context.Context, query string, limit int, label string) ([]RankedEntry, error) {
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	defer rows.Close()

	entries := make([]RankedEntry, 0, limit)
	for rows.Next() {
		var e RankedEntry
		var v decimal.Decimal
		if err := rows.Scan(&e.Name, &v); err != nil {
			return nil, fmt.Errorf("%s scan: %w", label, err)
		}
		e.Value = v
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s rows: %w", label, err)
	}
	return entries, nil
}
