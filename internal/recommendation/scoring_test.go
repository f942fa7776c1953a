package recommendation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func oldItem(id string) Item {
	return Item{ID: id, CreatedAt: now.AddDate(0, -3, 0)}
}

func rec(id string) Recommendation {
	return Recommendation{Item: Item{ID: id}}
}

func ids(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Item.ID)
	}
	return out
}

// ============================================
// Trending Tests
// ============================================

func TestTrendingScore(t *testing.T) {
	item := Item{RatingAverage: 4, RatingCount: 10, ViewCount: 20, CreatedAt: now.AddDate(0, -2, 0)}

	// 6*5 + 2*3 + 4*10*2 + 20*0.5
	assert.Equal(t, 126.0, TrendingScore(item, 6, 2, now))

	item.CreatedAt = now.AddDate(0, 0, -10)
	assert.Equal(t, 189.0, TrendingScore(item, 6, 2, now))
}

func TestTrendingScore_RecencyBoundary(t *testing.T) {
	item := Item{CreatedAt: now.Add(-30 * 24 * time.Hour)}
	assert.Equal(t, 25.0, TrendingScore(item, 5, 0, now))

	item.CreatedAt = item.CreatedAt.Add(time.Second)
	assert.Equal(t, 37.5, TrendingScore(item, 5, 0, now))
}

func TestRankTrending_ExcludesBelowMinOrders(t *testing.T) {
	hugelyRated := oldItem("rated")
	hugelyRated.RatingAverage = 5
	hugelyRated.RatingCount = 1000

	ranked := RankTrending([]Candidate{
		{Item: hugelyRated, RecentOrders: 4},
		{Item: oldItem("steady"), RecentOrders: 5},
	}, 5, 10, now)

	require.Len(t, ranked, 1)
	assert.Equal(t, "steady", ranked[0].Item.ID)
}

func TestRankTrending_DefaultsAndOrdering(t *testing.T) {
	candidates := []Candidate{
		{Item: oldItem("a"), RecentOrders: 5},
		{Item: oldItem("b"), RecentOrders: 8},
		{Item: oldItem("c"), RecentOrders: 5},
		{Item: oldItem("d"), RecentOrders: 4},
	}

	ranked := RankTrending(candidates, 0, 0, now)
	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].Item.ID)
	// equal scores keep input order
	assert.Equal(t, "a", ranked[1].Item.ID)
	assert.Equal(t, "c", ranked[2].Item.ID)

	assert.Len(t, RankTrending(candidates, 0, 2, now), 2)
}

// ============================================
// Content Affinity Tests
// ============================================

func TestContentAffinity(t *testing.T) {
	prefs := Preferences{Cuisines: []string{"indian", "thai"}, Dietary: "veg"}

	tests := []struct {
		name string
		item Item
		want float64
	}{
		{"no match", Item{Cuisine: "mexican", DietaryType: "non-veg"}, 0},
		{"cuisine only", Item{Cuisine: "Indian"}, 0.4},
		{"cuisine and dietary", Item{Cuisine: "thai", DietaryType: "veg"}, 0.7},
		{"everything", Item{Cuisine: "thai", DietaryType: "veg", RatingAverage: 4.5, Popularity: 150}, 1.0},
		{"quality only", Item{RatingAverage: 4, Popularity: 101}, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ContentAffinity(prefs, tt.item), 1e-9)
		})
	}
}

// ============================================
// Similarity Tests
// ============================================

func TestUserSimilarity_DifferentSpiceOnly(t *testing.T) {
	a := Preferences{Cuisines: []string{"indian", "thai"}, Dietary: "veg", SpiceLevel: "hot"}
	b := Preferences{Cuisines: []string{"thai", "indian"}, Dietary: "veg", SpiceLevel: "mild"}

	s := UserSimilarity(a, b)

	assert.Greater(t, s, 0.6)
	assert.Less(t, s, 1.0)
	assert.Greater(t, s, similarityThreshold)
	assert.InDelta(t, 2.0/3.0, s, 1e-9)
}

func TestUserSimilarity_Bounds(t *testing.T) {
	same := Preferences{Cuisines: []string{"italian"}, Dietary: "vegan", SpiceLevel: "mild"}
	assert.InDelta(t, 1.0, UserSimilarity(same, same), 1e-9)
	assert.Equal(t, 0.0, UserSimilarity(Preferences{}, Preferences{}))

	partial := Preferences{Cuisines: []string{"italian", "chinese"}}
	assert.InDelta(t, 0.5/3, UserSimilarity(same, partial), 1e-9)
}

func TestSimilarUsers(t *testing.T) {
	target := Profile{UserID: "me", Preferences: Preferences{Cuisines: []string{"indian"}, Dietary: "veg", SpiceLevel: "hot"}}
	candidates := []Profile{
		target,
		{UserID: "twin", Preferences: target.Preferences},
		{UserID: "close", Preferences: Preferences{Cuisines: []string{"indian"}, Dietary: "veg"}},
		{UserID: "far", Preferences: Preferences{Cuisines: []string{"french"}, Dietary: "vegan"}},
	}

	similar := SimilarUsers(target, candidates)

	require.Len(t, similar, 2)
	assert.Equal(t, "twin", similar[0].Profile.UserID)
	assert.Equal(t, "close", similar[1].Profile.UserID)
}

func TestSimilarUsers_CapsAtTen(t *testing.T) {
	target := Profile{UserID: "me", Preferences: Preferences{Dietary: "veg", SpiceLevel: "mild"}}
	var candidates []Profile
	for i := 0; i < 15; i++ {
		candidates = append(candidates, Profile{UserID: string(rune('a' + i)), Preferences: target.Preferences})
	}

	assert.Len(t, SimilarUsers(target, candidates), 10)
}

// ============================================
// Blend Tests
// ============================================

func TestBlend(t *testing.T) {
	preference := []Recommendation{rec("p1"), rec("p2"), rec("p3")}
	collaborative := []Recommendation{rec("p1"), rec("c1"), rec("wish")}
	popular := []Recommendation{rec("pop1"), rec("c1"), rec("pop2"), rec("pop3")}

	got := Blend(6, preference, collaborative, popular, []string{"wish"})

	assert.Equal(t, []string{"p1", "p2", "p3", "c1", "pop1", "pop2"}, ids(got))
}

func TestBlend_PreferenceCappedAtHalf(t *testing.T) {
	preference := []Recommendation{rec("p1"), rec("p2"), rec("p3"), rec("p4")}

	got := Blend(4, preference, nil, []Recommendation{rec("pop1"), rec("pop2"), rec("pop3")}, nil)

	assert.Equal(t, []string{"p1", "p2", "pop1", "pop2"}, ids(got))
}

func TestBlend_ZeroLimit(t *testing.T) {
	assert.Empty(t, Blend(0, []Recommendation{rec("p1")}, nil, nil, nil))
}
