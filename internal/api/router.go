package api

import (
	"log/slog"
	"net/http"

	"github.com/example/tastesphere/internal/api/middleware"
	"github.com/example/tastesphere/internal/auth"
)

// RouterConfig carries the router's collaborators.
type RouterConfig struct {
	Tokens *auth.TokenService
	// TrustUserHeader accepts X-User-ID from a front proxy when no token is sent.
	TrustUserHeader bool
	Logger          *slog.Logger
}

func NewRouter(handlers *Handlers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireIdentity(h) }
	seller := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(auth.RoleSeller, auth.RoleAdmin)(h)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Dishes
	mux.HandleFunc("GET /dishes", handlers.ListDishes)
	mux.Handle("POST /dishes", seller(handlers.CreateDish))
	mux.HandleFunc("GET /dishes/trending", handlers.GetTrending)
	mux.HandleFunc("GET /dishes/{id}", handlers.GetDish)
	mux.Handle("PUT /dishes/{id}", seller(handlers.UpdateDish))
	mux.Handle("POST /dishes/{id}/status", seller(handlers.SetDishStatus))
	mux.HandleFunc("GET /dishes/{id}/reviews", handlers.GetDishReviews)

	// Cart
	mux.Handle("GET /cart", authed(handlers.GetCart))
	mux.Handle("DELETE /cart", authed(handlers.ClearCart))
	mux.Handle("POST /cart/items", authed(handlers.AddToCart))
	mux.Handle("DELETE /cart/items/{dishId}", authed(handlers.RemoveFromCart))

	// Orders
	mux.Handle("POST /orders", authed(handlers.PlaceOrder))
	mux.Handle("GET /orders", authed(handlers.GetOrders))
	mux.Handle("GET /orders/{id}", authed(handlers.GetOrder))
	mux.Handle("POST /orders/{id}/status", authed(handlers.ChangeOrderStatus))
	mux.Handle("POST /orders/{id}/cancel", authed(handlers.CancelOrder))
	mux.Handle("POST /orders/{id}/payment", authed(handlers.RecordPayment))
	mux.Handle("POST /orders/{id}/rating", authed(handlers.RateOrder))

	// Reviews
	mux.Handle("POST /reviews", authed(handlers.CreateReview))
	mux.Handle("PUT /reviews/{id}", authed(handlers.UpdateReview))
	mux.Handle("POST /reviews/{id}/status", authed(handlers.ChangeReviewStatus))

	// Users
	mux.Handle("POST /users", authed(handlers.RegisterUser))
	mux.Handle("GET /users/me", authed(handlers.GetMe))
	mux.Handle("PUT /users/me", authed(handlers.UpdateProfile))
	mux.Handle("PUT /users/me/preferences", authed(handlers.UpdatePreferences))
	mux.Handle("POST /users/me/wishlist", authed(handlers.AddToWishlist))
	mux.Handle("DELETE /users/me/wishlist/{dishId}", authed(handlers.RemoveFromWishlist))
	mux.Handle("GET /users/me/recommendations", authed(handlers.GetRecommendations))
	mux.HandleFunc("GET /users/me/history", handlers.GetHistory)

	// Sellers
	mux.Handle("GET /sellers/me/orders", seller(handlers.GetSellerOrders))
	mux.Handle("GET /sellers/me/analytics", seller(handlers.GetSellerAnalytics))

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var handler http.Handler = mux
	handler = middleware.Identify(cfg.Tokens, cfg.TrustUserHeader)(handler)
	handler = middleware.Recover(handler)
	handler = middleware.RequestLogger(logger)(handler)
	return handler
}
