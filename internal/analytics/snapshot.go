package analytics

import "time"

// Snapshot is a seller's analytics report for one window, compared with
// the preceding window of identical length. Money values carry 2 decimal
// places; percentages and ratings carry 1.
type Snapshot struct {
	SellerID     string        `json:"seller_id"`
	Period       Period        `json:"period"`
	Overview     Overview      `json:"overview"`
	Growth       Growth        `json:"growth"`
	Distribution Distribution  `json:"distribution"`
	TopDishes    []DishStat    `json:"top_dishes"`
	Customers    CustomerStats `json:"customers"`
	Performance  Performance   `json:"performance"`
	Trends       Trends        `json:"trends"`
	// Degraded names the sections that fell back to defaults because
	// their data could not be loaded.
	Degraded []string `json:"degraded,omitempty"`
}

type Period struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	PreviousStart time.Time `json:"previous_start"`
}

type Overview struct {
	TotalRevenue      float64 `json:"total_revenue"`
	OrderCount        int     `json:"order_count"`
	AverageOrderValue float64 `json:"average_order_value"`
	AverageRating     float64 `json:"average_rating"`
	ReviewCount       int     `json:"review_count"`
}

// MetricGrowth compares a metric with the previous window. Growth is a
// percentage and is 0 when the previous value is 0.
type MetricGrowth struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Growth   float64 `json:"growth"`
}

type Growth struct {
	Revenue           MetricGrowth `json:"revenue"`
	Orders            MetricGrowth `json:"orders"`
	AverageOrderValue MetricGrowth `json:"average_order_value"`
	Rating            MetricGrowth `json:"rating"`
}

type PaymentMethodStat struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type Distribution struct {
	ByStatus        map[string]int               `json:"by_status"`
	ByPaymentMethod map[string]PaymentMethodStat `json:"by_payment_method"`
	ByHour          [24]int                      `json:"by_hour"`
}

type DishStat struct {
	DishID     string  `json:"dish_id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	OrderCount int     `json:"order_count"`
	Revenue    float64 `json:"revenue"`
}

type CustomerStats struct {
	Unique     int     `json:"unique"`
	New        int     `json:"new"`
	Repeat     int     `json:"repeat"`
	RepeatRate float64 `json:"repeat_rate"`
}

type Performance struct {
	AcceptanceRate         float64 `json:"acceptance_rate"`
	CancellationRate       float64 `json:"cancellation_rate"`
	AveragePrepTimeMinutes float64 `json:"average_prep_time_minutes"`
	RatingChange           float64 `json:"rating_change"`
}

// PeakWindow covers StartHour and the hour after it.
type PeakWindow struct {
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Orders    int    `json:"orders"`
	Label     string `json:"label"`
}

type Trends struct {
	PeakHours         PeakWindow `json:"peak_hours"`
	TopCategory       string     `json:"top_category"`
	RevenueGrowthRate float64    `json:"revenue_growth_rate"`
}
