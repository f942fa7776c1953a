package recommendation

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/example/tastesphere/internal/clock"
	"github.com/example/tastesphere/internal/infrastructure/store"
	"github.com/example/tastesphere/internal/readmodel"
)

const DefaultTrendingWindow = 7 * 24 * time.Hour

// Recommender gathers scoring inputs from the read store.
type Recommender struct {
	readStore store.ReadStoreInterface
	clock     clock.Clock
	window    time.Duration
	logger    *slog.Logger
}

func NewRecommender(rs store.ReadStoreInterface, c clock.Clock, trendingWindow time.Duration) *Recommender {
	if c == nil {
		c = clock.System
	}
	if trendingWindow <= 0 {
		trendingWindow = DefaultTrendingWindow
	}
	return &Recommender{
		readStore: rs,
		clock:     c,
		window:    trendingWindow,
		logger:    slog.Default().With("component", "recommender"),
	}
}

// Trending ranks active dishes by activity in the trending window.
func (r *Recommender) Trending(ctx context.Context, minOrders, limit int) ([]Scored, error) {
	now := r.clock.Now()
	since := now.Add(-r.window)

	dishes, err := r.activeDishes(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := readmodel.Collect[readmodel.OrderReadModel](ctx, r.readStore, readmodel.CollectionOrders, nil)
	if err != nil {
		return nil, err
	}
	reviews, err := readmodel.Collect[readmodel.ReviewReadModel](ctx, r.readStore, readmodel.CollectionReviews, nil)
	if err != nil {
		return nil, err
	}

	recentOrders := make(map[string]int)
	for _, o := range orders {
		if o.CreatedAt.Before(since) || o.CreatedAt.After(now) {
			continue
		}
		seen := make(map[string]bool)
		for _, item := range o.Items {
			if !seen[item.DishID] {
				seen[item.DishID] = true
				recentOrders[item.DishID]++
			}
		}
	}
	recentReviews := make(map[string]int)
	for _, rv := range reviews {
		if rv.Status == "active" && !rv.CreatedAt.Before(since) && !rv.CreatedAt.After(now) {
			recentReviews[rv.DishID]++
		}
	}

	candidates := make([]Candidate, 0, len(dishes))
	for _, d := range dishes {
		candidates = append(candidates, Candidate{
			Item:          d,
			RecentOrders:  recentOrders[d.ID],
			RecentReviews: recentReviews[d.ID],
		})
	}
	return RankTrending(candidates, minOrders, limit, now), nil
}

// ForUser blends preference matches, dishes wishlisted by similar users and
// popular dishes. Users without a profile only get popular dishes.
func (r *Recommender) ForUser(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	dishes, err := r.activeDishes(ctx)
	if err != nil {
		return nil, err
	}
	users, err := readmodel.Collect[readmodel.UserReadModel](ctx, r.readStore, readmodel.CollectionUsers, nil)
	if err != nil {
		return nil, err
	}

	var (
		target Profile
		found  bool
	)
	profiles := make([]Profile, 0, len(users))
	for _, u := range users {
		p := toProfile(u)
		profiles = append(profiles, p)
		if u.ID == userID {
			target, found = p, true
		}
	}

	popular := popularRecommendations(dishes)
	if !found {
		r.logger.Debug("no profile, falling back to popular dishes", "user_id", userID)
		return Blend(limit, nil, nil, popular, nil), nil
	}

	return Blend(limit,
		preferenceRecommendations(target.Preferences, dishes),
		collaborativeRecommendations(target, profiles, dishes),
		popular,
		target.Wishlist,
	), nil
}

func preferenceRecommendations(prefs Preferences, dishes []Item) []Recommendation {
	var recs []Recommendation
	for _, d := range dishes {
		if score := ContentAffinity(prefs, d); score > 0 {
			recs = append(recs, Recommendation{
				Item:        d,
				Score:       score,
				Strategy:    StrategyPreference,
				Explanation: "matches your preferences",
			})
		}
	}
	slices.SortStableFunc(recs, func(a, b Recommendation) int { return cmp.Compare(b.Score, a.Score) })
	return recs
}

func collaborativeRecommendations(target Profile, profiles []Profile, dishes []Item) []Recommendation {
	byID := make(map[string]Item, len(dishes))
	for _, d := range dishes {
		byID[d.ID] = d
	}
	var recs []Recommendation
	for _, su := range SimilarUsers(target, profiles) {
		for _, dishID := range su.Profile.Wishlist {
			d, ok := byID[dishID]
			if !ok {
				continue
			}
			recs = append(recs, Recommendation{
				Item:        d,
				Score:       su.Similarity,
				Strategy:    StrategyCollaborative,
				Explanation: fmt.Sprintf("liked by diners with %.0f%% similar taste", su.Similarity*100),
			})
		}
	}
	return recs
}

func popularRecommendations(dishes []Item) []Recommendation {
	recs := make([]Recommendation, 0, len(dishes))
	for _, d := range dishes {
		recs = append(recs, Recommendation{
			Item:        d,
			Score:       float64(d.Popularity),
			Strategy:    StrategyPopular,
			Explanation: "popular right now",
		})
	}
	slices.SortStableFunc(recs, func(a, b Recommendation) int { return cmp.Compare(b.Score, a.Score) })
	return recs
}

func (r *Recommender) activeDishes(ctx context.Context) ([]Item, error) {
	dishes, err := readmodel.Collect[readmodel.DishReadModel](ctx, r.readStore, readmodel.CollectionDishes, nil)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(dishes))
	for _, d := range dishes {
		if d.Status == "active" {
			items = append(items, toItem(d))
		}
	}
	return items, nil
}

func toItem(d readmodel.DishReadModel) Item {
	return Item{
		ID:            d.ID,
		SellerID:      d.SellerID,
		Name:          d.Name,
		Category:      d.Category,
		Cuisine:       d.Cuisine,
		DietaryType:   d.DietaryType,
		Price:         d.Price,
		RatingAverage: d.Rating.Average,
		RatingCount:   d.Rating.Count,
		ViewCount:     d.ViewCount,
		Popularity:    d.Popularity,
		CreatedAt:     d.CreatedAt,
	}
}

func toProfile(u readmodel.UserReadModel) Profile {
	return Profile{
		UserID: u.ID,
		Preferences: Preferences{
			Cuisines:   u.Preferences.Cuisines,
			Dietary:    u.Preferences.Dietary,
			SpiceLevel: u.Preferences.SpiceLevel,
		},
		Wishlist: u.Wishlist,
	}
}
