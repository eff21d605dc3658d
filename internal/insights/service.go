package insights

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Repository provides the aggregate queries the dashboard is built from.
type Repository interface {
	MonthCommission(ctx context.Context, from, to time.Time) (MonthTotals, error)
	TopBrands(ctx context.Context, limit int) ([]RankedEntry, error)
	TopCustomers(ctx context.Context, limit int) ([]RankedEntry, error)
}

const rankingLimit = 5

type Service struct {
	repo  Repository
	group singleflight.Group
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// Dashboard assembles the stats payload. Concurrent callers within the
// same minute share a single set of queries.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	key := s.now().UTC().Format("2006-01-02T15:04")
	ch := s.group.DoChan(key, func() (any, error) {
		return s.build(ctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Dashboard{}, res.Err
		}
		return res.Val.(Dashboard), nil
	case <-ctx.Done():
		return Dashboard{}, ctx.Err()
	}
}

func (s *Service) build(ctx context.Context) (Dashboard, error) {
	now := s.now().UTC()
	startOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	startOfNext := startOfCurrent.AddDate(0, 1, 0)
	startOfPrev := startOfCurrent.AddDate(0, -1, 0)

	current, err := s.repo.MonthCommission(ctx, startOfCurrent, startOfNext)
	if err != nil {
		return Dashboard{}, err
	}
	prev, err := s.repo.MonthCommission(ctx, startOfPrev, startOfCurrent)
	if err != nil {
		return Dashboard{}, err
	}
	brands, err := s.repo.TopBrands(ctx, rankingLimit)
	if err != nil {
		return Dashboard{}, err
	}
	customers, err := s.repo.TopCustomers(ctx, rankingLimit)
	if err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	d.MonthlyStats.CurrentMonth.Total = current.Total
	d.MonthlyStats.CurrentMonth.Paid = current.Paid
	d.MonthlyStats.CurrentMonth.Pending = current.Pending
	d.MonthlyStats.PrevMonth.Total = prev.Total
	d.MonthlyStats.Growth = growth(current.Total, prev.Total)
	d.Rankings.TopBrands = brands
	d.Rankings.TopCustomers = customers
	return d, nil
}

func growth(current, prev decimal.Decimal) float64 {
	if prev.IsZero() {
		return 100
	}
	pct, _ := current.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
