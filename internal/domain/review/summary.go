package review

// Summary is the cached rating of a dish.
type Summary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Summarize recomputes a dish rating from its reviews. Only active reviews
// count; an empty set yields the zero Summary.
func Summarize(reviews []Review) Summary {
	var sum, count int
	for _, r := range reviews {
		if r.Status != StatusActive {
			continue
		}
		sum += r.Rating
		count++
	}
	if count == 0 {
		return Summary{}
	}
	return Summary{Average: float64(sum) / float64(count), Count: count}
}
