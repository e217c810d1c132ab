package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitvote/internal/auth"
	"github.com/mmynk/splitvote/internal/config"
	"github.com/mmynk/splitvote/internal/ledger"
	"github.com/mmynk/splitvote/internal/metrics"
	"github.com/mmynk/splitvote/internal/middleware"
	"github.com/mmynk/splitvote/internal/service"
	"github.com/mmynk/splitvote/internal/storage"
	"github.com/mmynk/splitvote/internal/websocket"
	"github.com/mmynk/splitvote/pkg/api/apiconnect"
)

type server struct {
	hub     *websocket.Hub
	handler http.Handler
}

// newServer wires storage, the ledger, the websocket hub and the RPC services
// into one HTTP handler. Background work stops when ctx is done.
func newServer(ctx context.Context, cfg config.Config, store storage.Store, logger *slog.Logger) *server {
	hub := websocket.NewHub(logger)

	opts := ledger.Options{
		StoreTimeout:     cfg.StoreTimeout,
		JoinCodeLength:   cfg.JoinCodeLength,
		JoinCodeAttempts: cfg.JoinCodeAttempts,
		Logger:           logger,
	}
	if cfg.RequireCreatorApproval {
		opts.Policy = ledger.CreatorOnly
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, logger)
	limiter.StartCleanup(ctx, time.Minute)

	interceptors := connect.WithInterceptors(
		middleware.OptionalAuth(jwtManager),
		middleware.LoggingInterceptor(logger),
		middleware.MetricsInterceptor(),
		limiter.Interceptor(),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewUserServiceHandler(
		service.NewUserService(ledger.NewIdentity(store, opts), jwtManager, logger), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(
		service.NewGroupService(ledger.NewRegistry(store, hub, opts), logger), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(
		service.NewExpenseService(ledger.NewLedger(store, hub, opts), logger), interceptors))

	mux.Handle("GET /ws", websocket.HandleWebSocket(hub, cfg.AllowedOrigins))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})

	// h2c serves HTTP/2 without TLS for Connect clients.
	handler := h2c.NewHandler(corsMiddleware(mux), &http2.Server{})
	return &server{hub: hub, handler: handler}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
