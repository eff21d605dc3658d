package periods

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oswork-erp/oswork-erp/internal/audit"
)

type mockOrder struct {
	PeriodID        *uuid.UUID
	Status          string
	ServiceValue    decimal.Decimal
	CommissionValue decimal.Decimal
	PaidAt          *time.Time
}

type mockStore struct {
	periods map[uuid.UUID]*Period
	orders  map[uuid.UUID]*mockOrder
	audits  []audit.Entry

	insertErr  error
	findMisses int
}

func newMockStore() *mockStore {
	return &mockStore{
		periods: make(map[uuid.UUID]*Period),
		orders:  make(map[uuid.UUID]*mockOrder),
	}
}

func (m *mockStore) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return fn(ctx, &mockTx{store: m})
}

func (m *mockStore) GetPeriod(ctx context.Context, id uuid.UUID) (Period, error) {
	p, ok := m.periods[id]
	if !ok {
		return Period{}, ErrNotFound
	}
	return *p, nil
}

func (m *mockStore) FindByRange(ctx context.Context, start, end time.Time) (Period, error) {
	if m.findMisses > 0 {
		m.findMisses--
		return Period{}, ErrNotFound
	}
	for _, p := range m.periods {
		if p.StartDate.Equal(start) && p.EndDate.Equal(end) {
			return *p, nil
		}
	}
	return Period{}, ErrNotFound
}

func (m *mockStore) ListPeriods(ctx context.Context) ([]Period, error) {
	out := make([]Period, 0, len(m.periods))
	for _, p := range m.periods {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockStore) seedPeriod(start, end time.Time, paid bool) uuid.UUID {
	id := uuid.New()
	m.periods[id] = &Period{ID: id, StartDate: start, EndDate: end, Paid: paid}
	return id
}

func (m *mockStore) seedOrder(periodID uuid.UUID, status string, service, commission string) uuid.UUID {
	id := uuid.New()
	pid := periodID
	m.orders[id] = &mockOrder{
		PeriodID:        &pid,
		Status:          status,
		ServiceValue:    decimal.RequireFromString(service),
		CommissionValue: decimal.RequireFromString(commission),
	}
	return id
}

type mockTx struct {
	store *mockStore
}

func (t *mockTx) GetPeriodForUpdate(ctx context.Context, id uuid.UUID) (Period, error) {
	return t.store.GetPeriod(ctx, id)
}

func (t *mockTx) InsertPeriod(ctx context.Context, p Period) error {
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	for _, existing := range t.store.periods {
		if existing.StartDate.Equal(p.StartDate) && existing.EndDate.Equal(p.EndDate) {
			return ErrDuplicateRange
		}
	}
	cp := p
	t.store.periods[p.ID] = &cp
	return nil
}

func (t *mockTx) MarkPeriodPaid(ctx context.Context, id uuid.UUID, at time.Time) error {
	p, ok := t.store.periods[id]
	if !ok {
		return ErrNotFound
	}
	p.Paid = true
	p.PaidAt = &at
	return nil
}

func (t *mockTx) ListUnpaidOrderIDs(ctx context.Context, periodID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, o := range t.store.orders {
		if o.PeriodID != nil && *o.PeriodID == periodID && o.Status != "PAID" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (t *mockTx) MarkOrdersPaid(ctx context.Context, periodID uuid.UUID, at time.Time) (int64, error) {
	var n int64
	for _, o := range t.store.orders {
		if o.PeriodID != nil && *o.PeriodID == periodID && o.Status != "PAID" {
			o.Status = "PAID"
			o.PaidAt = &at
			n++
		}
	}
	return n, nil
}

func (t *mockTx) InsertAuditEntries(ctx context.Context, entries []audit.Entry) error {
	t.store.audits = append(t.store.audits, entries...)
	return nil
}

func (t *mockTx) UnlinkOrders(ctx context.Context, periodID uuid.UUID) error {
	for _, o := range t.store.orders {
		if o.PeriodID != nil && *o.PeriodID == periodID {
			o.PeriodID = nil
			o.Status = "PENDING"
			o.PaidAt = nil
		}
	}
	return nil
}

func (t *mockTx) DeletePeriod(ctx context.Context, id uuid.UUID) error {
	if _, ok := t.store.periods[id]; !ok {
		return ErrNotFound
	}
	delete(t.store.periods, id)
	return nil
}

func (t *mockTx) RangeConflict(ctx context.Context, start, end time.Time) (bool, error) {
	for _, p := range t.store.periods {
		if !p.StartDate.After(end) && !p.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (t *mockTx) RecomputeTotals(ctx context.Context, periodID uuid.UUID) (Totals, error) {
	p, ok := t.store.periods[periodID]
	if !ok {
		return Totals{}, ErrNotFound
	}
	totals := Totals{ServiceValue: decimal.Zero, Commission: decimal.Zero}
	for _, o := range t.store.orders {
		if o.PeriodID != nil && *o.PeriodID == periodID {
			totals.Orders++
			totals.ServiceValue = totals.ServiceValue.Add(o.ServiceValue)
			totals.Commission = totals.Commission.Add(o.CommissionValue)
		}
	}
	p.TotalOrders = totals.Orders
	p.TotalServiceValue = totals.ServiceValue
	p.TotalCommission = totals.Commission
	return totals, nil
}

func TestEnsureExistsCreatesOnFirstTouch(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	ctx := context.Background()

	entry := time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC)
	period, err := svc.EnsureExists(ctx, entry, StrategyBiweekly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC), period.StartDate)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), period.EndDate)
	assert.False(t, period.Paid)

	again, err := svc.EnsureExists(ctx, entry.AddDate(0, 0, 5), StrategyBiweekly)
	require.NoError(t, err)
	assert.Equal(t, period.ID, again.ID)
	assert.Len(t, store.periods, 1)
}

func TestEnsureExistsLosingRaceRefetches(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	ctx := context.Background()

	start := time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)

	// Simulate a concurrent winner: the initial lookup misses, the insert
	// reports a duplicate, and the winner's row appears for the refetch.
	store.seedPeriod(start, end, false)
	store.findMisses = 1
	store.insertErr = fmt.Errorf("wrapped: %w", ErrDuplicateRange)

	period, err := svc.EnsureExists(ctx, time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), StrategyBiweekly)
	require.NoError(t, err)
	assert.Equal(t, start, period.StartDate)
}

func TestCreateRejectsOverlap(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	ctx := context.Background()

	store.seedPeriod(
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		false,
	)

	_, err := svc.Create(ctx, CreatePeriodInput{
		StartDate: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrOverlap)
}

func TestCreateRejectsInvertedRange(t *testing.T) {
	svc := NewService(newMockStore())

	_, err := svc.Create(context.Background(), CreatePeriodInput{
		StartDate: time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPayClosesPeriodAndSettlesOrders(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	ctx := context.Background()

	closedAt := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	svc.WithNow(func() time.Time { return closedAt })

	periodID := store.seedPeriod(
		time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		false,
	)
	store.seedOrder(periodID, "PENDING", "100.00", "10.00")
	store.seedOrder(periodID, "PENDING", "200.00", "20.00")
	store.seedOrder(periodID, "PENDING", "300.00", "30.00")
	store.seedOrder(periodID, "PAID", "400.00", "40.00")
	store.seedOrder(periodID, "PAID", "500.00", "50.00")

	require.NoError(t, svc.Pay(ctx, periodID))

	period := *store.periods[periodID]
	assert.True(t, period.Paid)
	require.NotNil(t, period.PaidAt)
	assert.Equal(t, closedAt, *period.PaidAt)

	for _, o := range store.orders {
		assert.Equal(t, "PAID", o.Status)
	}

	// One status-change entry per order that was flipped, not per member.
	require.Len(t, store.audits, 3)
	for _, entry := range store.audits {
		assert.Equal(t, audit.ActionStatusChange, entry.Action)
		assert.Equal(t, "Period closed and paid", entry.Details)
		assert.Equal(t, closedAt, entry.At)
		assert.NotNil(t, entry.OrderID)
	}
}

func TestPayAlreadyPaid(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	periodID := store.seedPeriod(
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		true,
	)

	err := svc.Pay(context.Background(), periodID)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestPayUnknownPeriod(t *testing.T) {
	svc := NewService(newMockStore())
	err := svc.Pay(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPayEmptyPeriodStillCloses(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	periodID := store.seedPeriod(
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		false,
	)

	require.NoError(t, svc.Pay(context.Background(), periodID))
	assert.True(t, store.periods[periodID].Paid)
	assert.Empty(t, store.audits)
}

func TestDeleteResetsMemberOrders(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	ctx := context.Background()

	periodID := store.seedPeriod(
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		true,
	)
	orderID := store.seedOrder(periodID, "PAID", "100.00", "10.00")

	require.NoError(t, svc.Delete(ctx, periodID))

	assert.NotContains(t, store.periods, periodID)
	freed := store.orders[orderID]
	assert.Nil(t, freed.PeriodID)
	assert.Equal(t, "PENDING", freed.Status)
	assert.Nil(t, freed.PaidAt)
}

func TestDeleteUnknownPeriod(t *testing.T) {
	svc := NewService(newMockStore())
	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	ctx := context.Background()

	periodID := store.seedPeriod(
		time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
		false,
	)
	store.seedOrder(periodID, "PENDING", "150.00", "15.00")
	store.seedOrder(periodID, "PAID", "50.00", "5.00")

	first, err := svc.Recompute(ctx, periodID)
	require.NoError(t, err)
	second, err := svc.Recompute(ctx, periodID)
	require.NoError(t, err)

	assert.Equal(t, 2, first.Orders)
	assert.True(t, first.ServiceValue.Equal(decimal.RequireFromString("200.00")))
	assert.True(t, first.Commission.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, first.Orders, second.Orders)
	assert.True(t, first.ServiceValue.Equal(second.ServiceValue))
	assert.True(t, first.Commission.Equal(second.Commission))
}
