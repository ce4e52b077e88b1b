package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boostmysites25/zippty-backend/internal/analytics"
	"github.com/boostmysites25/zippty-backend/internal/config"
	"github.com/boostmysites25/zippty-backend/internal/metrics"
	"github.com/boostmysites25/zippty-backend/internal/repository"

	"golang.org/x/sync/errgroup"
)

// PaymentStatusPaid marks a settled order.
const PaymentStatusPaid = "paid"

var (
	ordersQuery   = analytics.Query{Collection: repository.CollectionOrders}
	productsQuery = analytics.Query{Collection: repository.CollectionProducts}
	usersQuery    = analytics.Query{Collection: repository.CollectionUsers}
	revenueQuery  = analytics.Query{
		Collection: repository.CollectionOrders,
		Match:      map[string]any{"paymentStatus": PaymentStatusPaid},
		Sum:        "totalAmount",
	}
)

// RecentOrderStore lists the newest orders.
type RecentOrderStore interface {
	RecentOrders(ctx context.Context, limit int) ([]repository.OrderView, error)
}

type DashboardService struct {
	comparator *analytics.Comparator
	bucketizer *analytics.Bucketizer
	orders     RecentOrderStore
	cfg        config.DashboardConfig
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewDashboardService(src analytics.Source, orders RecentOrderStore, cfg config.DashboardConfig, m *metrics.Metrics) *DashboardService {
	return &DashboardService{
		comparator: analytics.NewComparator(src),
		bucketizer: analytics.NewBucketizer(src),
		orders:     orders,
		cfg:        cfg,
		metrics:    m,
		now:        time.Now,
	}
}

// Limits returns the page size and horizon settings the service enforces.
func (s *DashboardService) Limits() config.DashboardConfig {
	return s.cfg
}

// SetClock overrides the reference clock.
func (s *DashboardService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

type Snapshot struct {
	Orders   analytics.MetricPair    `json:"orders"`
	Revenue  analytics.MetricPair    `json:"revenue"`
	Products analytics.MetricPair    `json:"products"`
	Users    analytics.MetricPair    `json:"users"`
	Sales    []analytics.SalesBucket `json:"sales"`
}

// BuildSnapshot compares the last window against the one before it for
// orders, revenue, products and users, and adds the monthly sales series.
// All five queries run concurrently; any failure fails the whole snapshot.
func (s *DashboardService) BuildSnapshot(ctx context.Context, horizonMonths int) (snap Snapshot, err error) {
	if err := s.checkHorizon(horizonMonths); err != nil {
		return Snapshot{}, err
	}
	start := time.Now()
	defer func() { s.metrics.RecordSnapshot(time.Since(start), err) }()

	ref := s.now()
	windows := analytics.NewWindowPair(ref, s.cfg.Window())

	g, gctx := errgroup.WithContext(ctx)
	compare := func(dst *analytics.MetricPair, q analytics.Query) {
		g.Go(func() error {
			pair, err := s.comparator.Compare(gctx, q, windows)
			if err != nil {
				return err
			}
			*dst = pair
			return nil
		})
	}
	compare(&snap.Orders, ordersQuery)
	compare(&snap.Revenue, revenueQuery)
	compare(&snap.Products, productsQuery)
	compare(&snap.Users, usersQuery)
	g.Go(func() error {
		sales, err := s.bucketizer.Bucketize(gctx, revenueQuery, horizonMonths, ref)
		if err != nil {
			return err
		}
		snap.Sales = sales
		return nil
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("build dashboard snapshot: %w", err)
	}
	return snap, nil
}

// SalesAnalytics returns the monthly series of settled sales.
func (s *DashboardService) SalesAnalytics(ctx context.Context, horizonMonths int) ([]analytics.SalesBucket, error) {
	if err := s.checkHorizon(horizonMonths); err != nil {
		return nil, err
	}
	return s.bucketizer.Bucketize(ctx, revenueQuery, horizonMonths, s.now())
}

func (s *DashboardService) RecentOrders(ctx context.Context, limit int) ([]repository.OrderView, error) {
	if limit < 1 || limit > s.cfg.MaxRecentOrders {
		return nil, ValidationError(fmt.Sprintf("limit must be between 1 and %d", s.cfg.MaxRecentOrders))
	}
	orders, err := s.orders.RecentOrders(ctx, limit)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []repository.OrderView{}
	}
	return orders, nil
}

func (s *DashboardService) checkHorizon(months int) error {
	if months < 1 || months > s.cfg.MaxSalesMonths {
		return ValidationError(fmt.Sprintf("months must be between 1 and %d", s.cfg.MaxSalesMonths))
	}
	return nil
}
