package recommendation

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Trending weights.
const (
	orderWeight   = 5.0
	reviewWeight  = 3.0
	ratingWeight  = 2.0
	viewWeight    = 0.5
	recencyBoost  = 1.5
	recencyWindow = 30 * 24 * time.Hour

	DefaultMinOrders = 5

	similarityThreshold = 0.3
	maxSimilarUsers     = 10
)

// Item is the catalog view the scorers work on.
type Item struct {
	ID            string    `json:"id"`
	SellerID      string    `json:"seller_id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Cuisine       string    `json:"cuisine"`
	DietaryType   string    `json:"dietary_type"`
	Price         float64   `json:"price"`
	RatingAverage float64   `json:"rating_average"`
	RatingCount   int       `json:"rating_count"`
	ViewCount     int       `json:"view_count"`
	Popularity    int       `json:"popularity"`
	CreatedAt     time.Time `json:"created_at"`
}

// Candidate pairs an item with its activity in the trending window.
type Candidate struct {
	Item          Item
	RecentOrders  int
	RecentReviews int
}

type Scored struct {
	Item  Item    `json:"item"`
	Score float64 `json:"score"`
}

type Preferences struct {
	Cuisines   []string `json:"cuisines"`
	Dietary    string   `json:"dietary"`
	SpiceLevel string   `json:"spice_level"`
}

// Strategy names where a recommendation came from.
type Strategy string

const (
	StrategyPreference    Strategy = "preference"
	StrategyCollaborative Strategy = "collaborative"
	StrategyPopular       Strategy = "popular"
)

type Recommendation struct {
	Item        Item     `json:"item"`
	Score       float64  `json:"score"`
	Strategy    Strategy `json:"strategy"`
	Explanation string   `json:"explanation"`
}

// TrendingScore weighs recent orders and reviews, cached rating and views.
// Items younger than 30 days get a 1.5x boost.
func TrendingScore(item Item, recentOrders, recentReviews int, now time.Time) float64 {
	score := float64(recentOrders)*orderWeight +
		float64(recentReviews)*reviewWeight +
		item.RatingAverage*float64(item.RatingCount)*ratingWeight +
		float64(item.ViewCount)*viewWeight
	if now.Sub(item.CreatedAt) < recencyWindow {
		score *= recencyBoost
	}
	return score
}

// RankTrending drops candidates with fewer than minOrders recent orders,
// sorts the rest by score (ties keep input order) and truncates to limit.
// minOrders <= 0 means DefaultMinOrders; limit <= 0 means no limit.
func RankTrending(candidates []Candidate, minOrders, limit int, now time.Time) []Scored {
	if minOrders <= 0 {
		minOrders = DefaultMinOrders
	}
	ranked := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if c.RecentOrders < minOrders {
			continue
		}
		ranked = append(ranked, Scored{
			Item:  c.Item,
			Score: TrendingScore(c.Item, c.RecentOrders, c.RecentReviews, now),
		})
	}
	slices.SortStableFunc(ranked, func(a, b Scored) int { return cmp.Compare(b.Score, a.Score) })
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ContentAffinity scores how well item matches prefs, in [0, 1].
func ContentAffinity(prefs Preferences, item Item) float64 {
	score := 0.0
	if item.Cuisine != "" && containsFold(prefs.Cuisines, item.Cuisine) {
		score += 0.4
	}
	if prefs.Dietary != "" && strings.EqualFold(prefs.Dietary, item.DietaryType) {
		score += 0.3
	}
	if item.RatingAverage >= 4 {
		score += 0.2
	}
	if item.Popularity > 100 {
		score += 0.1
	}
	return min(score, 1.0)
}

// UserSimilarity is the mean of cuisine overlap (Jaccard), dietary match
// and spice-level match, in [0, 1].
func UserSimilarity(a, b Preferences) float64 {
	var dietary, spice float64
	if a.Dietary != "" && strings.EqualFold(a.Dietary, b.Dietary) {
		dietary = 1
	}
	if a.SpiceLevel != "" && strings.EqualFold(a.SpiceLevel, b.SpiceLevel) {
		spice = 1
	}
	return (jaccard(a.Cuisines, b.Cuisines) + dietary + spice) / 3
}

func jaccard(a, b []string) float64 {
	set := make(map[string]int)
	for _, v := range a {
		set[strings.ToLower(v)] |= 1
	}
	for _, v := range b {
		set[strings.ToLower(v)] |= 2
	}
	if len(set) == 0 {
		return 0
	}
	both := 0
	for _, mask := range set {
		if mask == 3 {
			both++
		}
	}
	return float64(both) / float64(len(set))
}

type Profile struct {
	UserID      string
	Preferences Preferences
	Wishlist    []string
}

type SimilarUser struct {
	Profile    Profile
	Similarity float64
}

// SimilarUsers keeps candidates more than 0.3 similar to target, most
// similar first, at most 10. The target itself is skipped.
func SimilarUsers(target Profile, candidates []Profile) []SimilarUser {
	var similar []SimilarUser
	for _, c := range candidates {
		if c.UserID == target.UserID {
			continue
		}
		if s := UserSimilarity(target.Preferences, c.Preferences); s > similarityThreshold {
			similar = append(similar, SimilarUser{Profile: c, Similarity: s})
		}
	}
	slices.SortStableFunc(similar, func(a, b SimilarUser) int { return cmp.Compare(b.Similarity, a.Similarity) })
	if len(similar) > maxSimilarUsers {
		similar = similar[:maxSimilarUsers]
	}
	return similar
}

// Blend takes up to limit/2 preference results, fills the rest from
// collaborative results and pads from popular ones. Items appear once and
// wishlisted items are skipped.
func Blend(limit int, preference, collaborative, popular []Recommendation, wishlist []string) []Recommendation {
	if limit <= 0 {
		return nil
	}
	seen := make(map[string]bool, limit+len(wishlist))
	for _, id := range wishlist {
		seen[id] = true
	}

	out := make([]Recommendation, 0, limit)
	take := func(from []Recommendation, upTo int) {
		for _, r := range from {
			if len(out) >= upTo {
				return
			}
			if seen[r.Item.ID] {
				continue
			}
			seen[r.Item.ID] = true
			out = append(out, r)
		}
	}
	take(preference, limit/2)
	take(collaborative, limit)
	take(popular, limit)
	return out
}

func containsFold(values []string, v string) bool {
	return slices.ContainsFunc(values, func(s string) bool { return strings.EqualFold(s, v) })
}
