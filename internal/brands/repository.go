package brands

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed brand repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (Brand, error) {
	return scanBrand(r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM brands WHERE id = $1`, id))
}

func (r *repository) GetByName(ctx context.Context, name string) (Brand, error) {
	return scanBrand(r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM brands WHERE name = $1`, name))
}

func (r *repository) Insert(ctx context.Context, b Brand) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO brands (id, name) VALUES ($1, $2)`, b.ID, b.Name)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateName
		}
		return err
	}
	return nil
}

func (r *repository) List(ctx context.Context) ([]Brand, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, created_at FROM brands ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM brands WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBrand(row pgx.Row) (Brand, error) {
	var b Brand
	if err := row.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Brand{}, ErrNotFound
		}
		return Brand{}, err
	}
	return b, nil
}
