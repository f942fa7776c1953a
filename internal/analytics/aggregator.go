package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/example/tastesphere/internal/readmodel"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidRange  = errors.New("end date is before start date")
	ErrInvalidSeller = errors.New("seller id is required")
)

// Section names reported in Snapshot.Degraded.
const (
	SectionGrowth       = "growth"
	SectionCustomers    = "customers"
	SectionReviews      = "reviews"
	SectionRatingGrowth = "rating_growth"
	SectionDishes       = "dishes"
)

// Source supplies read-only seller data. Range bounds are inclusive.
type Source interface {
	OrdersBySeller(ctx context.Context, sellerID string, from, to time.Time) ([]readmodel.OrderReadModel, error)
	OrderHistory(ctx context.Context, sellerID string) ([]readmodel.OrderReadModel, error)
	ReviewsBySeller(ctx context.Context, sellerID string, from, to time.Time) ([]readmodel.ReviewReadModel, error)
	DishesBySeller(ctx context.Context, sellerID string) ([]readmodel.DishReadModel, error)
}

// Aggregator loads a seller's data and computes snapshots. It holds no
// mutable state and is safe for concurrent use.
type Aggregator struct {
	source Source
	logger *slog.Logger
}

func NewAggregator(source Source) *Aggregator {
	return &Aggregator{
		source: source,
		logger: slog.Default().With("component", "analytics"),
	}
}

// ComputeSnapshot loads the window, the previous window and the seller's
// history concurrently. Only a failure to load the window's orders is
// returned; other failures leave their section at defaults.
func (a *Aggregator) ComputeSnapshot(ctx context.Context, sellerID string, start, end time.Time) (*Snapshot, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, ErrInvalidSeller
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: %s < %s", ErrInvalidRange, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	prevStart := PreviousStart(start, end)

	in := Input{SellerID: sellerID}
	var (
		mu       sync.Mutex
		degraded []string
	)
	soft := func(section string, load func() error) func() error {
		return func() error {
			if err := load(); err != nil {
				a.logger.Warn("analytics section degraded", "seller_id", sellerID, "section", section, "error", err)
				mu.Lock()
				degraded = append(degraded, section)
				mu.Unlock()
			}
			return nil
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := a.source.OrdersBySeller(gctx, sellerID, start, end)
		if err != nil {
			return fmt.Errorf("load orders for seller %s: %w", sellerID, err)
		}
		in.Orders = orders
		return nil
	})
	g.Go(soft(SectionGrowth, func() (err error) {
		in.PreviousOrders, err = a.source.OrdersBySeller(gctx, sellerID, prevStart, start)
		return err
	}))
	g.Go(soft(SectionCustomers, func() (err error) {
		in.History, err = a.source.OrderHistory(gctx, sellerID)
		return err
	}))
	g.Go(soft(SectionReviews, func() (err error) {
		in.Reviews, err = a.source.ReviewsBySeller(gctx, sellerID, start, end)
		return err
	}))
	g.Go(soft(SectionRatingGrowth, func() (err error) {
		in.PreviousReviews, err = a.source.ReviewsBySeller(gctx, sellerID, prevStart, start)
		return err
	}))
	g.Go(soft(SectionDishes, func() (err error) {
		in.Dishes, err = a.source.DishesBySeller(gctx, sellerID)
		return err
	}))
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := Compute(in, start, end)
	if len(degraded) > 0 {
		slices.Sort(degraded)
		snapshot.Degraded = degraded
	}
	return snapshot, nil
}
