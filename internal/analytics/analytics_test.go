package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/tastesphere/internal/infrastructure/store/mocks"
	"github.com/example/tastesphere/internal/readmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	windowStart = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
)

// fakeSource serves fixed records and records the ranges it was asked for.
type fakeSource struct {
	mu      sync.Mutex
	orders  []readmodel.OrderReadModel
	reviews []readmodel.ReviewReadModel
	dishes  []readmodel.DishReadModel

	OrdersErr  error
	HistoryErr error
	ReviewsErr error
	DishesErr  error

	OrderRanges [][2]time.Time
}

func (f *fakeSource) OrdersBySeller(ctx context.Context, sellerID string, from, to time.Time) ([]readmodel.OrderReadModel, error) {
	f.mu.Lock()
	f.OrderRanges = append(f.OrderRanges, [2]time.Time{from, to})
	f.mu.Unlock()
	if f.OrdersErr != nil && from.Equal(windowStart) {
		return nil, f.OrdersErr
	}
	var out []readmodel.OrderReadModel
	for _, o := range f.orders {
		if o.SellerID == sellerID && inWindow(o.CreatedAt, from, to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeSource) OrderHistory(ctx context.Context, sellerID string) ([]readmodel.OrderReadModel, error) {
	if f.HistoryErr != nil {
		return nil, f.HistoryErr
	}
	return f.orders, nil
}

func (f *fakeSource) ReviewsBySeller(ctx context.Context, sellerID string, from, to time.Time) ([]readmodel.ReviewReadModel, error) {
	if f.ReviewsErr != nil {
		return nil, f.ReviewsErr
	}
	var out []readmodel.ReviewReadModel
	for _, r := range f.reviews {
		if inWindow(r.CreatedAt, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) DishesBySeller(ctx context.Context, sellerID string) ([]readmodel.DishReadModel, error) {
	if f.DishesErr != nil {
		return nil, f.DishesErr
	}
	return f.dishes, nil
}

func completedOrder(id, userID string, amount float64, at time.Time) readmodel.OrderReadModel {
	return readmodel.OrderReadModel{
		ID:            id,
		UserID:        userID,
		SellerID:      "seller-1",
		TotalAmount:   amount,
		Status:        "delivered",
		PaymentStatus: "completed",
		PaymentMethod: "upi",
		CreatedAt:     at,
	}
}

func day(d, hour int) time.Time {
	return time.Date(2024, 6, d, hour, 0, 0, 0, time.UTC)
}

// ============================================
// Validation Tests
// ============================================

func TestComputeSnapshot_InvalidInput(t *testing.T) {
	agg := NewAggregator(&fakeSource{})
	ctx := context.Background()

	_, err := agg.ComputeSnapshot(ctx, "seller-1", windowEnd, windowStart)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = agg.ComputeSnapshot(ctx, "  ", windowStart, windowEnd)
	assert.ErrorIs(t, err, ErrInvalidSeller)
}

// ============================================
// Headline Metric Tests
// ============================================

func TestComputeSnapshot_RevenueGrowthScenario(t *testing.T) {
	source := &fakeSource{orders: []readmodel.OrderReadModel{
		completedOrder("o1", "u1", 100, day(3, 12)),
		completedOrder("o2", "u2", 200, day(10, 19)),
		completedOrder("o3", "u3", 300, day(20, 19)),
		completedOrder("p1", "u1", 150, time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)),
	}}
	agg := NewAggregator(source)

	snap, err := agg.ComputeSnapshot(context.Background(), "seller-1", windowStart, windowEnd)

	require.NoError(t, err)
	assert.Equal(t, 600.0, snap.Overview.TotalRevenue)
	assert.Equal(t, 3, snap.Overview.OrderCount)
	assert.Equal(t, 200.0, snap.Overview.AverageOrderValue)
	assert.Equal(t, 300.0, snap.Growth.Revenue.Growth)
	assert.Equal(t, 150.0, snap.Growth.Revenue.Previous)
	assert.Equal(t, 300.0, snap.Trends.RevenueGrowthRate)
	assert.Empty(t, snap.Degraded)

	assert.Contains(t, source.OrderRanges, [2]time.Time{windowStart, windowEnd})
	assert.Contains(t, source.OrderRanges, [2]time.Time{PreviousStart(windowStart, windowEnd), windowStart})
}

func TestCompute_GrowthIsZeroWhenPreviousIsZero(t *testing.T) {
	in := Input{Orders: []readmodel.OrderReadModel{completedOrder("o1", "u1", 500, day(2, 10))}}

	snap := Compute(in, windowStart, windowEnd)

	assert.Equal(t, 500.0, snap.Overview.TotalRevenue)
	assert.Equal(t, 0.0, snap.Growth.Revenue.Growth)
	assert.Equal(t, 0.0, snap.Growth.Orders.Growth)
}

func TestCompute_EmptyInput(t *testing.T) {
	snap := Compute(Input{SellerID: "seller-1"}, windowStart, windowEnd)

	assert.Equal(t, 0.0, snap.Overview.TotalRevenue)
	assert.Equal(t, 0, snap.Overview.OrderCount)
	assert.Equal(t, 0.0, snap.Overview.AverageOrderValue)
	assert.Equal(t, 0.0, snap.Overview.AverageRating)
	assert.Empty(t, snap.TopDishes)
	assert.Equal(t, CustomerStats{}, snap.Customers)
	assert.Equal(t, 0.0, snap.Performance.AcceptanceRate)
	assert.Equal(t, float64(defaultPrepMinutes), snap.Performance.AveragePrepTimeMinutes)
	assert.Equal(t, "", snap.Trends.TopCategory)
	assert.Empty(t, snap.Distribution.ByStatus)
}

func TestCompute_AverageOrderValueUsesCompletedPaymentsOnly(t *testing.T) {
	pending := completedOrder("o2", "u2", 999, day(4, 10))
	pending.PaymentStatus = "pending"
	in := Input{Orders: []readmodel.OrderReadModel{completedOrder("o1", "u1", 100, day(3, 10)), pending}}

	snap := Compute(in, windowStart, windowEnd)

	assert.Equal(t, 2, snap.Overview.OrderCount)
	assert.Equal(t, 100.0, snap.Overview.TotalRevenue)
	assert.Equal(t, 100.0, snap.Overview.AverageOrderValue)
}

func TestCompute_Rounding(t *testing.T) {
	in := Input{Orders: []readmodel.OrderReadModel{
		completedOrder("o1", "u1", 10.125, day(3, 10)),
		completedOrder("o2", "u2", 20, day(4, 10)),
		completedOrder("o3", "u3", 20, day(5, 10)),
	}}

	snap := Compute(in, windowStart, windowEnd)

	assert.Equal(t, 50.13, snap.Overview.TotalRevenue)
	assert.Equal(t, 16.71, snap.Overview.AverageOrderValue)
}

// ============================================
// Distribution Tests
// ============================================

func TestCompute_Distribution(t *testing.T) {
	cod := completedOrder("o2", "u2", 80, day(3, 19))
	cod.PaymentMethod = "cod"
	cod.PaymentStatus = "pending"
	cod.Status = "preparing"
	in := Input{Orders: []readmodel.OrderReadModel{
		completedOrder("o1", "u1", 100, day(3, 19)),
		cod,
		completedOrder("o3", "u3", 50, day(4, 8)),
	}}

	snap := Compute(in, windowStart, windowEnd)

	assert.Equal(t, map[string]int{"delivered": 2, "preparing": 1}, snap.Distribution.ByStatus)
	assert.Equal(t, PaymentMethodStat{Count: 2, Amount: 150}, snap.Distribution.ByPaymentMethod["upi"])
	assert.Equal(t, PaymentMethodStat{Count: 1, Amount: 0}, snap.Distribution.ByPaymentMethod["cod"])
	assert.Equal(t, 2, snap.Distribution.ByHour[19])
	assert.Equal(t, 1, snap.Distribution.ByHour[8])
}

func TestCompute_PeakHours(t *testing.T) {
	tests := []struct {
		name   string
		hours  []int
		start  int
		end    int
		orders int
		label  string
	}{
		{"single busiest", []int{19, 19, 20, 12}, 19, 20, 3, "19:00-21:00"},
		{"tie goes to earliest", []int{9, 18}, 9, 10, 1, "09:00-11:00"},
		{"wraps midnight", []int{23, 23, 0}, 23, 0, 3, "23:00-01:00"},
		{"no orders", nil, 0, 1, 0, "00:00-02:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in Input
			for i, h := range tt.hours {
				in.Orders = append(in.Orders, completedOrder(string(rune('a'+i)), "u", 10, day(5, h)))
			}

			peak := Compute(in, windowStart, windowEnd).Trends.PeakHours

			assert.Equal(t, tt.start, peak.StartHour)
			assert.Equal(t, tt.end, peak.EndHour)
			assert.Equal(t, tt.orders, peak.Orders)
			assert.Equal(t, tt.label, peak.Label)
		})
	}
}

// ============================================
// Dish / Category Tests
// ============================================

func TestCompute_TopDishesAndCategory(t *testing.T) {
	dishes := []readmodel.DishReadModel{
		{ID: "d1", Name: "Dosa", Category: "breakfast", Status: "active"},
		{ID: "d2", Name: "Idli", Category: "breakfast", Status: "active"},
		{ID: "d3", Name: "Biryani", Category: "mains", Status: "active"},
		{ID: "d4", Name: "Old", Category: "mains", Status: "inactive"},
		{ID: "d5", Name: "Lassi", Category: "drinks", Status: "active"},
		{ID: "d6", Name: "Chai", Category: "drinks", Status: "active"},
		{ID: "d7", Name: "Vada", Category: "snacks", Status: "active"},
	}
	o1 := completedOrder("o1", "u1", 0, day(3, 10))
	o1.Items = []readmodel.OrderItemReadModel{{DishID: "d3", Quantity: 2, Price: 250}, {DishID: "d1", Quantity: 1, Price: 80}}
	o2 := completedOrder("o2", "u2", 0, day(4, 10))
	o2.Items = []readmodel.OrderItemReadModel{{DishID: "d3", Quantity: 1, Price: 250}}
	unpaid := completedOrder("o3", "u3", 0, day(5, 10))
	unpaid.PaymentStatus = "pending"
	unpaid.Items = []readmodel.OrderItemReadModel{{DishID: "d7", Quantity: 5, Price: 30}}

	snap := Compute(Input{Orders: []readmodel.OrderReadModel{o1, o2, unpaid}, Dishes: dishes}, windowStart, windowEnd)

	require.Len(t, snap.TopDishes, 5)
	assert.Equal(t, DishStat{DishID: "d3", Name: "Biryani", Category: "mains", OrderCount: 2, Revenue: 750}, snap.TopDishes[0])
	assert.Equal(t, "d1", snap.TopDishes[1].DishID)
	// zero-order dishes keep catalog order
	assert.Equal(t, []string{"d2", "d5", "d6"}, []string{snap.TopDishes[2].DishID, snap.TopDishes[3].DishID, snap.TopDishes[4].DishID})

	// breakfast and drinks both have 2 active dishes
	assert.Equal(t, "breakfast", snap.Trends.TopCategory)
}

// ============================================
// Customer / Performance Tests
// ============================================

func TestCompute_Customers(t *testing.T) {
	history := []readmodel.OrderReadModel{
		completedOrder("h1", "veteran", 10, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)),
		completedOrder("o1", "veteran", 10, day(3, 10)),
		completedOrder("o2", "newbie", 10, day(4, 10)),
		completedOrder("o3", "regular", 10, day(5, 10)),
		completedOrder("o4", "regular", 10, day(6, 10)),
	}

	snap := Compute(Input{Orders: history[1:], History: history}, windowStart, windowEnd)

	assert.Equal(t, 3, snap.Customers.Unique)
	assert.Equal(t, 2, snap.Customers.New)
	assert.Equal(t, 2, snap.Customers.Repeat)
	assert.Equal(t, 66.7, snap.Customers.RepeatRate)
}

func TestCompute_Performance(t *testing.T) {
	delivered := completedOrder("o1", "u1", 10, day(3, 10))
	deliveredAt := day(3, 10).Add(40 * time.Minute)
	delivered.ActualDeliveryTime = &deliveredAt

	slow := completedOrder("o2", "u2", 10, day(4, 10))
	slowAt := day(4, 10).Add(5 * time.Hour)
	slow.ActualDeliveryTime = &slowAt

	cancelledAfterAccept := completedOrder("o3", "u3", 10, day(5, 10))
	cancelledAfterAccept.Status = "cancelled_by_seller"
	cancelledAfterAccept.Timeline = []readmodel.TimelineEntryReadModel{
		{Status: "pending_seller"}, {Status: "seller_accepted"}, {Status: "cancelled_by_seller"},
	}

	rejected := completedOrder("o4", "u4", 10, day(6, 10))
	rejected.Status = "seller_rejected"
	rejected.Timeline = []readmodel.TimelineEntryReadModel{{Status: "pending_seller"}, {Status: "seller_rejected"}}

	in := Input{
		Orders: []readmodel.OrderReadModel{delivered, slow, cancelledAfterAccept, rejected},
		Reviews: []readmodel.ReviewReadModel{
			{Rating: 5, Status: "active", CreatedAt: day(3, 12)},
			{Rating: 4, Status: "active", CreatedAt: day(4, 12)},
			{Rating: 1, Status: "hidden", CreatedAt: day(4, 12)},
		},
		PreviousReviews: []readmodel.ReviewReadModel{
			{Rating: 3, Status: "active", CreatedAt: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)},
		},
	}

	snap := Compute(in, windowStart, windowEnd)

	assert.Equal(t, 75.0, snap.Performance.AcceptanceRate)
	assert.Equal(t, 50.0, snap.Performance.CancellationRate)
	assert.Equal(t, 80.0, snap.Performance.AveragePrepTimeMinutes) // (40 + 120) / 2
	assert.Equal(t, 4.5, snap.Overview.AverageRating)
	assert.Equal(t, 2, snap.Overview.ReviewCount)
	assert.Equal(t, 1.5, snap.Performance.RatingChange)
	assert.Equal(t, 50.0, snap.Growth.Rating.Growth)
}

// ============================================
// Degradation Tests
// ============================================

func TestComputeSnapshot_OrdersFailureIsAnError(t *testing.T) {
	boom := errors.New("connection refused")
	agg := NewAggregator(&fakeSource{OrdersErr: boom})

	_, err := agg.ComputeSnapshot(context.Background(), "seller-1", windowStart, windowEnd)

	assert.ErrorIs(t, err, boom)
}

func TestComputeSnapshot_OtherFailuresDegrade(t *testing.T) {
	source := &fakeSource{
		orders:     []readmodel.OrderReadModel{completedOrder("o1", "u1", 100, day(3, 10))},
		HistoryErr: errors.New("timeout"),
		ReviewsErr: errors.New("timeout"),
		DishesErr:  errors.New("timeout"),
	}
	agg := NewAggregator(source)

	snap, err := agg.ComputeSnapshot(context.Background(), "seller-1", windowStart, windowEnd)

	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.Overview.TotalRevenue)
	assert.Equal(t, []string{SectionCustomers, SectionDishes, SectionRatingGrowth, SectionReviews}, snap.Degraded)
	assert.Equal(t, 0, snap.Customers.New)
	assert.Empty(t, snap.TopDishes)
}

// ============================================
// ReadStoreSource Tests
// ============================================

func TestReadStoreSource_FiltersBySellerAndRange(t *testing.T) {
	rs := mocks.NewMockReadStore()
	in := completedOrder("o1", "u1", 10, day(3, 10))
	other := completedOrder("o2", "u1", 10, day(3, 10))
	other.SellerID = "seller-2"
	old := completedOrder("o3", "u1", 10, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	rs.SetData(readmodel.CollectionOrders, in.ID, &in)
	rs.SetData(readmodel.CollectionOrders, other.ID, &other)
	rs.SetData(readmodel.CollectionOrders, old.ID, old)
	rs.SetData(readmodel.CollectionDishes, "d1", &readmodel.DishReadModel{ID: "d1", SellerID: "seller-1"})

	source := NewReadStoreSource(rs)
	ctx := context.Background()

	orders, err := source.OrdersBySeller(ctx, "seller-1", windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].ID)

	history, err := source.OrderHistory(ctx, "seller-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	dishes, err := source.DishesBySeller(ctx, "seller-1")
	require.NoError(t, err)
	assert.Len(t, dishes, 1)
}

func TestReadStoreSource_PropagatesErrors(t *testing.T) {
	rs := mocks.NewMockReadStore()
	rs.GetAllErr = map[string]error{readmodel.CollectionReviews: errors.New("read failed")}

	_, err := NewReadStoreSource(rs).ReviewsBySeller(context.Background(), "seller-1", windowStart, windowEnd)

	assert.Error(t, err)
}
