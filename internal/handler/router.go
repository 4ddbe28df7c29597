package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mangadock/mangadock/internal/metrics"
	"github.com/mangadock/mangadock/internal/middleware"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder

	Index     *Handler
	Health    *HealthHandler
	Exporter  *MetricsHandler
	Tokens    *TokenHandler
	Favorites *FavoritesHandler
	Finished  *FinishedHandler
	Users     *UserHandler
	Proxy     *ProxyHandler

	Auth      middleware.AuthConfig
	RateLimit middleware.RateLimitConfig
	CORS      middleware.CORSConfig
	Security  middleware.SecurityConfig

	MaxRequestBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
// Every reading-state route sits behind the request gate; only
// /get_token and the probes are reachable without a token. Password
// attempts and image fetches are rate limited per client IP.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Exporter != nil {
		r.Get("/metrics", cfg.Exporter.Metrics)
	}
	r.Get("/", cfg.Index.Index)

	tokenLimit := cfg.RateLimit
	tokenLimit.Scope = "get_token"
	tokenLimit.OnLimited = nil
	r.With(middleware.RateLimitIP(tokenLimit)).Post("/get_token", cfg.Tokens.Issue)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth))

		r.Post("/verify_token", cfg.Tokens.Verify)

		r.Post("/create_user", cfg.Users.Create)
		r.Post("/list_users", cfg.Users.List)

		r.Post("/add_fav", cfg.Favorites.Add)
		r.Post("/remove_fav", cfg.Favorites.Remove)
		r.Post("/get_favorites", cfg.Favorites.List)

		r.Post("/add_finished", cfg.Finished.Mark)
		r.Post("/get_finished", cfg.Finished.Get)

		proxyLimit := cfg.RateLimit
		proxyLimit.Scope = "proxy"
		if proxyLimit.OnLimited == nil && cfg.Metrics != nil {
			proxyLimit.OnLimited = func(*http.Request) { cfg.Metrics.IncProxyRequest("limited") }
		}
		r.With(middleware.RateLimitIP(proxyLimit)).Post("/proxy", cfg.Proxy.Fetch)
	})

	r.NotFound(cfg.Index.NotFound)
	r.MethodNotAllowed(cfg.Index.MethodNotAllowed)

	return r
}
