package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/example/tastesphere/internal/recommendation"
)

const (
	defaultListLimit     = 10
	maxListLimit         = 50
	defaultAnalyticsDays = 30
	dateLayout           = "2006-01-02"
)

// intParam reads an integer query parameter in [lo, hi]. Absent means def.
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParam, name)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%w: %s must be between %d and %d", ErrInvalidParam, name, lo, hi)
	}
	return v, nil
}

// TrendingOptions are the parsed query parameters of the trending endpoint.
type TrendingOptions struct {
	MinOrders int
	Limit     int
}

func parseTrendingOptions(r *http.Request) (TrendingOptions, error) {
	var opts TrendingOptions
	var err error
	if opts.MinOrders, err = intParam(r, "min_orders", recommendation.DefaultMinOrders, 1, 10000); err != nil {
		return opts, err
	}
	if opts.Limit, err = intParam(r, "limit", defaultListLimit, 1, maxListLimit); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseLimit(r *http.Request) (int, error) {
	return intParam(r, "limit", defaultListLimit, 1, maxListLimit)
}

// AnalyticsRange is the window requested from the analytics endpoint.
type AnalyticsRange struct {
	Start time.Time
	End   time.Time
}

// parseAnalyticsRange accepts RFC3339 timestamps or YYYY-MM-DD dates. A date
// end covers the whole day. Without parameters the range is the last 30
// days ending now.
func parseAnalyticsRange(r *http.Request, now time.Time) (AnalyticsRange, error) {
	q := r.URL.Query()
	rng := AnalyticsRange{End: now}

	if raw := q.Get("end"); raw != "" {
		end, dateOnly, err := parseTime(raw)
		if err != nil {
			return rng, fmt.Errorf("%w: end: %v", ErrInvalidParam, err)
		}
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		rng.End = end
	}

	rng.Start = rng.End.AddDate(0, 0, -defaultAnalyticsDays)
	if raw := q.Get("start"); raw != "" {
		start, _, err := parseTime(raw)
		if err != nil {
			return rng, fmt.Errorf("%w: start: %v", ErrInvalidParam, err)
		}
		rng.Start = start
	}
	return rng, nil
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("want RFC3339 or %s, got %q", dateLayout, raw)
	}
	return t, true, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %v", ErrInvalidParam, err)
	}
	return nil
}
