package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/example/tastesphere/internal/domain/order"
	"github.com/example/tastesphere/internal/readmodel"
)

const (
	topDishLimit       = 5
	prepTimeCapMinutes = 120
	defaultPrepMinutes = 25
	reviewStatusActive = "active"
	dishStatusActive   = "active"
	paymentCompleted   = string(order.PaymentCompleted)
)

// Input is everything Compute reads. Orders and reviews outside the window
// they were loaded for are ignored.
type Input struct {
	SellerID        string
	Orders          []readmodel.OrderReadModel
	PreviousOrders  []readmodel.OrderReadModel
	History         []readmodel.OrderReadModel // all-time orders of the seller
	Reviews         []readmodel.ReviewReadModel
	PreviousReviews []readmodel.ReviewReadModel
	Dishes          []readmodel.DishReadModel
}

// PreviousStart returns the start of the window of identical length that
// ends at start.
func PreviousStart(start, end time.Time) time.Time {
	return start.Add(-end.Sub(start))
}

func inWindow(t, start, end time.Time) bool { return !t.Before(start) && !t.After(end) }

func inPrevious(t, prevStart, start time.Time) bool { return !t.Before(prevStart) && t.Before(start) }

// Compute builds the snapshot for [start, end]. It never fails; empty input
// yields zero counts and documented defaults.
func Compute(in Input, start, end time.Time) *Snapshot {
	prevStart := PreviousStart(start, end)

	var current, previous []readmodel.OrderReadModel
	for _, o := range in.Orders {
		if inWindow(o.CreatedAt, start, end) {
			current = append(current, o)
		}
	}
	for _, o := range in.PreviousOrders {
		if inPrevious(o.CreatedAt, prevStart, start) {
			previous = append(previous, o)
		}
	}

	var reviews, prevReviews []readmodel.ReviewReadModel
	for _, r := range in.Reviews {
		if inWindow(r.CreatedAt, start, end) {
			reviews = append(reviews, r)
		}
	}
	for _, r := range in.PreviousReviews {
		if inPrevious(r.CreatedAt, prevStart, start) {
			prevReviews = append(prevReviews, r)
		}
	}

	cur := summarizeOrders(current)
	prev := summarizeOrders(previous)
	curRating, curReviewCount := averageRating(reviews)
	prevRating, _ := averageRating(prevReviews)

	revenueGrowth := growthRate(cur.revenue, prev.revenue)

	return &Snapshot{
		SellerID: in.SellerID,
		Period:   Period{Start: start, End: end, PreviousStart: prevStart},
		Overview: Overview{
			TotalRevenue:      roundMoney(cur.revenue),
			OrderCount:        len(current),
			AverageOrderValue: roundMoney(cur.averageOrderValue()),
			AverageRating:     roundPercent(curRating),
			ReviewCount:       curReviewCount,
		},
		Growth: Growth{
			Revenue: MetricGrowth{
				Current:  roundMoney(cur.revenue),
				Previous: roundMoney(prev.revenue),
				Growth:   roundPercent(revenueGrowth),
			},
			Orders: MetricGrowth{
				Current:  float64(len(current)),
				Previous: float64(len(previous)),
				Growth:   roundPercent(growthRate(float64(len(current)), float64(len(previous)))),
			},
			AverageOrderValue: MetricGrowth{
				Current:  roundMoney(cur.averageOrderValue()),
				Previous: roundMoney(prev.averageOrderValue()),
				Growth:   roundPercent(growthRate(cur.averageOrderValue(), prev.averageOrderValue())),
			},
			Rating: MetricGrowth{
				Current:  roundPercent(curRating),
				Previous: roundPercent(prevRating),
				Growth:   roundPercent(growthRate(curRating, prevRating)),
			},
		},
		Distribution: distribution(current),
		TopDishes:    topDishes(current, in.Dishes),
		Customers:    customers(current, in.History, start, end),
		Performance: Performance{
			AcceptanceRate:         roundPercent(ratio(countAccepted(current), len(current))),
			CancellationRate:       roundPercent(ratio(countCancelled(current), len(current))),
			AveragePrepTimeMinutes: roundPercent(averagePrepMinutes(current)),
			RatingChange:           roundPercent(curRating - prevRating),
		},
		Trends: Trends{
			PeakHours:         peakWindow(current),
			TopCategory:       topCategory(in.Dishes),
			RevenueGrowthRate: roundPercent(revenueGrowth),
		},
	}
}

type orderTotals struct {
	revenue   float64
	completed int
}

func (t orderTotals) averageOrderValue() float64 {
	if t.completed == 0 {
		return 0
	}
	return t.revenue / float64(t.completed)
}

func summarizeOrders(orders []readmodel.OrderReadModel) orderTotals {
	var t orderTotals
	for _, o := range orders {
		if o.PaymentStatus == paymentCompleted {
			t.revenue += o.TotalAmount
			t.completed++
		}
	}
	return t
}

func averageRating(reviews []readmodel.ReviewReadModel) (float64, int) {
	var sum, n int
	for _, r := range reviews {
		if r.Status != reviewStatusActive {
			continue
		}
		sum += r.Rating
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return float64(sum) / float64(n), n
}

func distribution(orders []readmodel.OrderReadModel) Distribution {
	d := Distribution{
		ByStatus:        make(map[string]int),
		ByPaymentMethod: make(map[string]PaymentMethodStat),
	}
	amounts := make(map[string]float64)
	for _, o := range orders {
		d.ByStatus[o.Status]++

		stat := d.ByPaymentMethod[o.PaymentMethod]
		stat.Count++
		d.ByPaymentMethod[o.PaymentMethod] = stat
		if o.PaymentStatus == paymentCompleted {
			amounts[o.PaymentMethod] += o.TotalAmount
		}

		d.ByHour[o.CreatedAt.Hour()]++
	}
	for method, stat := range d.ByPaymentMethod {
		stat.Amount = roundMoney(amounts[method])
		d.ByPaymentMethod[method] = stat
	}
	return d
}

func topDishes(orders []readmodel.OrderReadModel, dishes []readmodel.DishReadModel) []DishStat {
	counts := make(map[string]int)
	revenue := make(map[string]float64)
	for _, o := range orders {
		if o.PaymentStatus != paymentCompleted {
			continue
		}
		seen := make(map[string]bool)
		for _, item := range o.Items {
			revenue[item.DishID] += item.Price * float64(item.Quantity)
			if !seen[item.DishID] {
				seen[item.DishID] = true
				counts[item.DishID]++
			}
		}
	}

	stats := make([]DishStat, 0, len(dishes))
	for _, d := range dishes {
		if d.Status != dishStatusActive {
			continue
		}
		stats = append(stats, DishStat{
			DishID:     d.ID,
			Name:       d.Name,
			Category:   d.Category,
			OrderCount: counts[d.ID],
			Revenue:    roundMoney(revenue[d.ID]),
		})
	}
	slices.SortStableFunc(stats, func(a, b DishStat) int {
		return cmp.Compare(b.OrderCount, a.OrderCount)
	})
	if len(stats) > topDishLimit {
		stats = stats[:topDishLimit]
	}
	return stats
}

func customers(orders, history []readmodel.OrderReadModel, start, end time.Time) CustomerStats {
	firstOrder := make(map[string]time.Time)
	orderCount := make(map[string]int)
	for _, o := range history {
		orderCount[o.UserID]++
		if first, ok := firstOrder[o.UserID]; !ok || o.CreatedAt.Before(first) {
			firstOrder[o.UserID] = o.CreatedAt
		}
	}

	var stats CustomerStats
	seen := make(map[string]bool)
	for _, o := range orders {
		if seen[o.UserID] {
			continue
		}
		seen[o.UserID] = true
		stats.Unique++
		if first, ok := firstOrder[o.UserID]; ok && inWindow(first, start, end) {
			stats.New++
		}
		if orderCount[o.UserID] > 1 {
			stats.Repeat++
		}
	}
	stats.RepeatRate = roundPercent(ratio(stats.Repeat, stats.Unique))
	return stats
}

func countAccepted(orders []readmodel.OrderReadModel) int {
	n := 0
	for _, o := range orders {
		if reachedAcceptance(o) {
			n++
		}
	}
	return n
}

func reachedAcceptance(o readmodel.OrderReadModel) bool {
	if order.Status(o.Status).IsAcceptedOrLater() {
		return true
	}
	for _, entry := range o.Timeline {
		if order.Status(entry.Status).IsAcceptedOrLater() {
			return true
		}
	}
	return false
}

func countCancelled(orders []readmodel.OrderReadModel) int {
	n := 0
	for _, o := range orders {
		if order.Status(o.Status).IsCancelled() {
			n++
		}
	}
	return n
}

func averagePrepMinutes(orders []readmodel.OrderReadModel) float64 {
	var total float64
	n := 0
	for _, o := range orders {
		if o.Status != string(order.StatusDelivered) || o.ActualDeliveryTime == nil {
			continue
		}
		minutes := o.ActualDeliveryTime.Sub(o.CreatedAt).Minutes()
		minutes = max(0, min(minutes, prepTimeCapMinutes))
		total += minutes
		n++
	}
	if n == 0 {
		return defaultPrepMinutes
	}
	return total / float64(n)
}

func peakWindow(orders []readmodel.OrderReadModel) PeakWindow {
	var byHour [24]int
	for _, o := range orders {
		byHour[o.CreatedAt.Hour()]++
	}
	busiest := 0
	for h := 1; h < 24; h++ {
		if byHour[h] > byHour[busiest] {
			busiest = h
		}
	}
	next := (busiest + 1) % 24
	return PeakWindow{
		StartHour: busiest,
		EndHour:   next,
		Orders:    byHour[busiest] + byHour[next],
		Label:     fmt.Sprintf("%02d:00-%02d:00", busiest, (busiest+2)%24),
	}
}

// topCategory picks the category with the most active dishes, breaking
// ties alphabetically.
func topCategory(dishes []readmodel.DishReadModel) string {
	counts := make(map[string]int)
	for _, d := range dishes {
		if d.Status == dishStatusActive && d.Category != "" {
			counts[d.Category]++
		}
	}
	best := ""
	for category, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && category < best) {
			best = category
		}
	}
	return best
}
