package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oswork-erp/oswork-erp/internal/audit"
)

// Store provides persistence for periods. TxStore methods run inside a
// single repeatable-read transaction started by WithTx.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	GetPeriod(ctx context.Context, id uuid.UUID) (Period, error)
	FindByRange(ctx context.Context, start, end time.Time) (Period, error)
	ListPeriods(ctx context.Context) ([]Period, error)
}

// TxStore exposes the transactional operations the period lifecycle needs.
type TxStore interface {
	GetPeriodForUpdate(ctx context.Context, id uuid.UUID) (Period, error)
	InsertPeriod(ctx context.Context, p Period) error
	MarkPeriodPaid(ctx context.Context, id uuid.UUID, at time.Time) error
	ListUnpaidOrderIDs(ctx context.Context, periodID uuid.UUID) ([]uuid.UUID, error)
	MarkOrdersPaid(ctx context.Context, periodID uuid.UUID, at time.Time) (int64, error)
	InsertAuditEntries(ctx context.Context, entries []audit.Entry) error
	UnlinkOrders(ctx context.Context, periodID uuid.UUID) error
	DeletePeriod(ctx context.Context, id uuid.UUID) error
	RangeConflict(ctx context.Context, start, end time.Time) (bool, error)
	RecomputeTotals(ctx context.Context, periodID uuid.UUID) (Totals, error)
}

// Service orchestrates period lifecycle: lazy creation, closing, deletion,
// and aggregate recomputation.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a period service.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns a single period.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Period, error) {
	return s.store.GetPeriod(ctx, id)
}

// List returns all periods, newest first.
func (s *Service) List(ctx context.Context) ([]Period, error) {
	return s.store.ListPeriods(ctx)
}

// EnsureExists resolves the boundary for date and returns the matching
// period row, creating it when absent. Concurrent first touches of the same
// bucket are reconciled through the [start, end] uniqueness constraint: a
// duplicate insert means someone else won, so the row is re-fetched.
func (s *Service) EnsureExists(ctx context.Context, date time.Time, strategy Strategy) (Period, error) {
	b := Resolve(date, strategy)

	period, err := s.store.FindByRange(ctx, b.Start, b.End)
	if err == nil {
		return period, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Period{}, fmt.Errorf("periods: find by range: %w", err)
	}

	fresh := Period{
		ID:        uuid.New(),
		StartDate: b.Start,
		EndDate:   b.End,
		Paid:      false,
	}
	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		return tx.InsertPeriod(ctx, fresh)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateRange) {
			return s.store.FindByRange(ctx, b.Start, b.End)
		}
		return Period{}, fmt.Errorf("periods: insert: %w", err)
	}
	return s.store.FindByRange(ctx, b.Start, b.End)
}

// Create inserts a period with an explicit range, bypassing the resolver.
// The range must not overlap any existing period.
func (s *Service) Create(ctx context.Context, in CreatePeriodInput) (Period, error) {
	if err := in.Validate(); err != nil {
		return Period{}, err
	}
	period := Period{
		ID:        uuid.New(),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		conflict, err := tx.RangeConflict(ctx, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}
		if conflict {
			return ErrOverlap
		}
		return tx.InsertPeriod(ctx, period)
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateRange) {
			return Period{}, ErrOverlap
		}
		return Period{}, err
	}
	return s.store.GetPeriod(ctx, period.ID)
}

// Pay closes a period atomically: the period is marked paid, every member
// order not yet PAID is flipped in one set-based update, and one audit entry
// is written per affected order. A period with no pending orders is still
// closeable. Totals are not recomputed; status changes never affect the
// value sums.
func (s *Service) Pay(ctx context.Context, id uuid.UUID) error {
	now := s.now()
	return s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		period, err := tx.GetPeriodForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if period.Paid {
			return ErrAlreadyPaid
		}
		if err := tx.MarkPeriodPaid(ctx, id, now); err != nil {
			return err
		}

		orderIDs, err := tx.ListUnpaidOrderIDs(ctx, id)
		if err != nil {
			return err
		}
		if len(orderIDs) == 0 {
			return nil
		}
		if _, err := tx.MarkOrdersPaid(ctx, id, now); err != nil {
			return err
		}

		entries := make([]audit.Entry, 0, len(orderIDs))
		for _, orderID := range orderIDs {
			oid := orderID
			entries = append(entries, audit.Entry{
				Action:  audit.ActionStatusChange,
				Details: "Period closed and paid",
				At:      now,
				OrderID: &oid,
			})
		}
		return tx.InsertAuditEntries(ctx, entries)
	})
}

// Delete removes a period regardless of its paid flag. Member orders are
// unlinked and reset to PENDING first so none is orphaned into a deleted
// bucket. This is an administrative override, not a normal-flow action.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if _, err := tx.GetPeriodForUpdate(ctx, id); err != nil {
			return err
		}
		if err := tx.UnlinkOrders(ctx, id); err != nil {
			return err
		}
		return tx.DeletePeriod(ctx, id)
	})
}

// Recompute re-derives the period's cached totals from its member orders.
// Idempotent; calling it twice in a row yields the same result.
func (s *Service) Recompute(ctx context.Context, id uuid.UUID) (Totals, error) {
	var totals Totals
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		var err error
		totals, err = tx.RecomputeTotals(ctx, id)
		return err
	})
	return totals, err
}
