package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oswork-erp/oswork-erp/internal/audit"
	"github.com/oswork-erp/oswork-erp/internal/brands"
	"github.com/oswork-erp/oswork-erp/internal/periods"
)

// Store provides order persistence. TxStore methods run inside one
// repeatable-read transaction started by WithTx; an error from the callback
// rolls back every statement.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	GetOrder(ctx context.Context, id uuid.UUID) (Order, error)
	ListOrders(ctx context.Context, limit int) ([]Order, error)
}

// TxStore exposes the transactional operations the order lifecycle needs.
type TxStore interface {
	InsertOrder(ctx context.Context, o Order) error
	UpdateOrder(ctx context.Context, o Order) error
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	DeleteOrderAudit(ctx context.Context, id uuid.UUID) error
	InsertAudit(ctx context.Context, entry audit.Entry) error
	RecomputePeriodTotals(ctx context.Context, periodID uuid.UUID) error
}

// PeriodDirectory is the slice of the period service the lifecycle consumes.
type PeriodDirectory interface {
	EnsureExists(ctx context.Context, date time.Time, strategy periods.Strategy) (periods.Period, error)
	Get(ctx context.Context, id uuid.UUID) (periods.Period, error)
}

// BrandResolver maps a loose brand reference to a canonical brand.
type BrandResolver interface {
	Resolve(ctx context.Context, ref string) (brands.Brand, error)
}

// RateSource supplies the commission rate in effect right now.
type RateSource interface {
	CommissionRate(ctx context.Context) (decimal.Decimal, error)
}

// Service is the order lifecycle engine.
type Service struct {
	store    Store
	periods  PeriodDirectory
	brands   BrandResolver
	rates    RateSource
	strategy periods.Strategy
	now      func() time.Time
}

// NewService constructs the order lifecycle service.
func NewService(store Store, periodDir PeriodDirectory, brandResolver BrandResolver, rates RateSource) *Service {
	return &Service{
		store:    store,
		periods:  periodDir,
		brands:   brandResolver,
		rates:    rates,
		strategy: periods.StrategyBiweekly,
		now:      time.Now,
	}
}

// WithStrategy overrides the period bucketing strategy.
func (s *Service) WithStrategy(strategy periods.Strategy) {
	if strategy != "" {
		s.strategy = strategy
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.store.GetOrder(ctx, id)
}

// List returns orders newest entry date first, capped for response size.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.store.ListOrders(ctx, 500)
}

// Create registers a new PENDING order in the period its entry date resolves
// into. The commission rate is captured now; later rate changes never touch
// this order unless it is explicitly re-edited.
func (s *Service) Create(ctx context.Context, in CreateOrderInput) (Order, error) {
	if err := in.Validate(); err != nil {
		return Order{}, err
	}

	period, err := s.periods.EnsureExists(ctx, in.EntryDate, s.strategy)
	if err != nil {
		return Order{}, fmt.Errorf("orders: ensure period: %w", err)
	}
	if period.Paid {
		return Order{}, periods.ErrLocked
	}

	brand, err := s.brands.Resolve(ctx, in.BrandRef)
	if err != nil {
		return Order{}, fmt.Errorf("orders: resolve brand: %w", err)
	}

	rate, err := s.rates.CommissionRate(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("orders: fetch rate: %w", err)
	}

	periodID := period.ID
	order := Order{
		ID:              uuid.New(),
		OSNumber:        in.OSNumber,
		EntryDate:       in.EntryDate,
		CustomerName:    in.CustomerName,
		BrandID:         brand.ID,
		ServiceValue:    in.ServiceValue.Round(currencyScale),
		CommissionValue: Commission(in.ServiceValue, rate),
		Status:          StatusPending,
		PaymentMethod:   in.PaymentMethod,
		Description:     in.Description,
		PeriodID:        &periodID,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		oid := order.ID
		if err := tx.InsertAudit(ctx, audit.Entry{
			Action:  audit.ActionCreated,
			Details: fmt.Sprintf("Order created with value %s", order.ServiceValue),
			At:      s.now(),
			OrderID: &oid,
		}); err != nil {
			return err
		}
		return tx.RecomputePeriodTotals(ctx, period.ID)
	})
	if err != nil {
		return Order{}, err
	}
	return s.store.GetOrder(ctx, order.ID)
}

// Update applies a partial patch to an order. Settled orders (order PAID or
// period paid) reject every edit. Moving the entry date re-buckets the order
// and refreshes totals on both periods.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch UpdateOrderInput) (Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.Status == StatusPaid {
		return Order{}, ErrImmutable
	}

	var oldPeriodID *uuid.UUID
	if order.PeriodID != nil {
		current, err := s.periods.Get(ctx, *order.PeriodID)
		if err != nil {
			return Order{}, fmt.Errorf("orders: load period: %w", err)
		}
		if current.Paid {
			return Order{}, ErrImmutable
		}
		pid := current.ID
		oldPeriodID = &pid
	}

	var changed []string

	if patch.EntryDate != nil && !patch.EntryDate.Equal(order.EntryDate) {
		next, err := s.periods.EnsureExists(ctx, *patch.EntryDate, s.strategy)
		if err != nil {
			return Order{}, fmt.Errorf("orders: ensure period: %w", err)
		}
		if next.Paid {
			return Order{}, periods.ErrLocked
		}
		nextID := next.ID
		order.EntryDate = *patch.EntryDate
		order.PeriodID = &nextID
		changed = append(changed, "entryDate")
	}
	if patch.OSNumber != nil && *patch.OSNumber != order.OSNumber {
		order.OSNumber = *patch.OSNumber
		changed = append(changed, "osNumber")
	}
	if patch.CustomerName != nil && *patch.CustomerName != order.CustomerName {
		order.CustomerName = *patch.CustomerName
		changed = append(changed, "customerName")
	}
	if patch.BrandRef != nil {
		brand, err := s.brands.Resolve(ctx, *patch.BrandRef)
		if err != nil {
			return Order{}, fmt.Errorf("orders: resolve brand: %w", err)
		}
		if brand.ID != order.BrandID {
			order.BrandID = brand.ID
			changed = append(changed, "brand")
		}
	}
	if patch.ServiceValue != nil {
		rate, err := s.rates.CommissionRate(ctx)
		if err != nil {
			return Order{}, fmt.Errorf("orders: fetch rate: %w", err)
		}
		order.ServiceValue = patch.ServiceValue.Round(currencyScale)
		order.CommissionValue = Commission(*patch.ServiceValue, rate)
		changed = append(changed, "serviceValue")
	}
	if patch.PaymentMethod != nil {
		order.PaymentMethod = patch.PaymentMethod
		changed = append(changed, "paymentMethod")
	}
	if patch.Description != nil {
		order.Description = patch.Description
		changed = append(changed, "description")
	}
	if patch.Status != nil && *patch.Status != order.Status {
		order.Status = *patch.Status
		switch *patch.Status {
		case StatusPaid:
			at := s.now()
			order.PaidAt = &at
		case StatusPending:
			order.PaidAt = nil
		}
		changed = append(changed, "status")
	}

	details := "Order details updated"
	if len(changed) > 0 {
		details = "Changed: " + strings.Join(changed, ", ")
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := tx.UpdateOrder(ctx, order); err != nil {
			return err
		}
		oid := order.ID
		if err := tx.InsertAudit(ctx, audit.Entry{
			Action:  audit.ActionUpdated,
			Details: details,
			At:      s.now(),
			OrderID: &oid,
		}); err != nil {
			return err
		}
		if oldPeriodID != nil {
			if err := tx.RecomputePeriodTotals(ctx, *oldPeriodID); err != nil {
				return err
			}
		}
		if order.PeriodID != nil && (oldPeriodID == nil || *order.PeriodID != *oldPeriodID) {
			return tx.RecomputePeriodTotals(ctx, *order.PeriodID)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return s.store.GetOrder(ctx, order.ID)
}

// Delete removes an order together with its audit trail and refreshes the
// old period's totals. Settled orders cannot be deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == StatusPaid {
		return ErrImmutable
	}
	if order.PeriodID != nil {
		period, err := s.periods.Get(ctx, *order.PeriodID)
		if err != nil {
			return fmt.Errorf("orders: load period: %w", err)
		}
		if period.Paid {
			return ErrImmutable
		}
	}

	return s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		// Audit rows first; no storage-level cascade is relied on.
		if err := tx.DeleteOrderAudit(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteOrder(ctx, id); err != nil {
			return err
		}
		if order.PeriodID != nil {
			return tx.RecomputePeriodTotals(ctx, *order.PeriodID)
		}
		return nil
	})
}

// Duplicate copies an existing order under a new sequence number. The copy
// is PENDING, dated today so it lands in the current bucket even when the
// source period is settled, and receives a fresh commission at the current
// rate.
func (s *Service) Duplicate(ctx context.Context, id uuid.UUID, osNumber int64) (Order, error) {
	source, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if osNumber <= 0 {
		return Order{}, fmt.Errorf("%w: os number must be positive", ErrInvalidInput)
	}

	entryDate := s.now()
	period, err := s.periods.EnsureExists(ctx, entryDate, s.strategy)
	if err != nil {
		return Order{}, fmt.Errorf("orders: ensure period: %w", err)
	}
	if period.Paid {
		return Order{}, periods.ErrLocked
	}

	rate, err := s.rates.CommissionRate(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("orders: fetch rate: %w", err)
	}

	periodID := period.ID
	dup := Order{
		ID:              uuid.New(),
		OSNumber:        osNumber,
		EntryDate:       entryDate,
		CustomerName:    source.CustomerName,
		BrandID:         source.BrandID,
		ServiceValue:    source.ServiceValue,
		CommissionValue: Commission(source.ServiceValue, rate),
		Status:          StatusPending,
		PaymentMethod:   source.PaymentMethod,
		Description:     source.Description,
		PeriodID:        &periodID,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		if err := tx.InsertOrder(ctx, dup); err != nil {
			return err
		}
		oid := dup.ID
		if err := tx.InsertAudit(ctx, audit.Entry{
			Action:  audit.ActionDuplicated,
			Details: fmt.Sprintf("Duplicated from OS %d", source.OSNumber),
			At:      s.now(),
			OrderID: &oid,
		}); err != nil {
			return err
		}
		return tx.RecomputePeriodTotals(ctx, period.ID)
	})
	if err != nil {
		return Order{}, err
	}
	return s.store.GetOrder(ctx, dup.ID)
}
