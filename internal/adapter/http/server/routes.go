package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Temutjin2k/rideshare-ledger/docs"
	"github.com/Temutjin2k/rideshare-ledger/internal/adapter/http/middleware"
)

// setupRoutes - setups http routes
func setupRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	// System Health
	mux.HandleFunc("GET /health", routes.health.HealthCheck)

	setupSwaggerRoutes(mux)
	setupMetricsRoute(mux)

	setupAuthRoutes(mux, routes)
	setupLedgerRoutes(mux, routes, m)
	setupRideRoutes(mux, routes, m)
	setupRewardRoutes(mux, routes, m)
	setupAdminRoutes(mux, routes, m)
}

func setupAuthRoutes(mux *http.ServeMux, routes *handlers) {
	mux.HandleFunc("POST /auth/token", routes.auth.IssueToken) // Issue an access token
}

// setupLedgerRoutes setups routes for the token ledger
func setupLedgerRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /tokens/buy", m.RequireCaller(routes.ledger.BuyTokens))  // Mint tokens to the caller
	mux.Handle("POST /tokens/pay", m.RequireCaller(routes.ledger.PayForRide)) // Pay a driver
	mux.HandleFunc("GET /balances/{user_id}", routes.ledger.GetBalance)       // Balance of any identity
}

// setupRideRoutes setups routes for the ride marketplace
func setupRideRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /rides", m.RequireCaller(routes.ride.PostRide))                     // Post a new ride
	mux.HandleFunc("GET /rides", routes.ride.ListRides)                                  // All rides
	mux.HandleFunc("GET /rides/search", routes.ride.SearchRides)                         // Search rides
	mux.HandleFunc("GET /rides/{ride_id}", routes.ride.GetRide)                          // One ride
	mux.Handle("POST /rides/{ride_id}/join", m.RequireCaller(routes.ride.RequestToJoin)) // Join as rider
	mux.Handle("POST /rides/{ride_id}/accept", m.RequireCaller(routes.ride.AcceptRider)) // Owner accepts a rider
	mux.Handle("POST /rides/{ride_id}/driver", m.RequireCaller(routes.ride.DriverJoin))  // Join as driver
	mux.Handle("DELETE /rides/{ride_id}", m.RequireCaller(routes.ride.DeleteRide))       // Owner deletes the ride
	mux.Handle("POST /rides/{ride_id}/cancel", m.RequireCaller(routes.ride.CancelRide))  // Owner cancels the ride
	mux.HandleFunc("GET /notifications/{user_id}", routes.ride.GetNotifications)         // Notification log
	mux.HandleFunc("GET /ws/notifications/{user_id}", routes.stream.HandleNotifications) // WebSocket notification stream
}

// setupRewardRoutes setups routes for the driver reward engine
func setupRewardRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /drivers/{driver_id}/rewards", m.RequireCaller(routes.reward.CheckDriverRewards)) // Check and pay rewards
}

// setupAdminRoutes setups routes for snapshot management
func setupAdminRoutes(mux *http.ServeMux, routes *handlers, m *middleware.Middleware) {
	mux.Handle("POST /admin/snapshot", m.RequireAdmin(routes.admin.SaveSnapshot)) // Persist all sections
	mux.Handle("GET /admin/snapshot", m.RequireAdmin(routes.admin.ListSnapshots)) // Describe stored sections
}

// setupSwaggerRoutes configures Swagger UI endpoints
func setupSwaggerRoutes(mux *http.ServeMux) {
	swaggerURL := httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName())
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler(swaggerURL))
}

// setupMetricsRoute configures the Prometheus metrics endpoint
func setupMetricsRoute(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
