package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed settings repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `
		SELECT id, commission_rate, company_name, updated_at
		FROM settings LIMIT 1`).
		Scan(&s.ID, &s.CommissionRate, &s.CompanyName, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, err
	}
	return s, nil
}

// Upsert updates the single settings row, creating it on first use.
func (r *repository) Upsert(ctx context.Context, in UpdateInput) (Settings, error) {
	current, err := r.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		current = Settings{ID: uuid.New(), CommissionRate: DefaultCommissionRate}
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO settings (id, commission_rate, company_name)
			VALUES ($1, $2, $3)`,
			current.ID, current.CommissionRate, current.CompanyName); err != nil {
			return Settings{}, err
		}
	} else if err != nil {
		return Settings{}, err
	}

	if in.CommissionRate != nil {
		current.CommissionRate = *in.CommissionRate
	}
	if in.CompanyName != nil {
		current.CompanyName = *in.CompanyName
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE settings SET commission_rate = $2, company_name = $3, updated_at = NOW()
		WHERE id = $1`,
		current.ID, current.CommissionRate, current.CompanyName)
	if err != nil {
		return Settings{}, err
	}
	return r.Get(ctx)
}
