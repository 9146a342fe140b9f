package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/ledwall-go/internal/server/httpserver/handler"
	"github.com/yndnr/ledwall-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler carries the services behind the API.
	Handler handler.Config

	// Metrics receives request metrics and serves /metrics. Nil disables both.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = CORS off).
	CORSAllowedOrigins []string

	// RateLimit is the per-IP request rate (requests/second). Zero disables it.
	RateLimit float64

	// RateBurst is the per-IP burst size.
	RateBurst int
}

// DefaultRouterConfig returns default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit: 50,
		RateBurst: 100,
	}
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Handler.Logger == nil {
		cfg.Handler.Logger = cfg.Logger
	}
	h := handler.New(cfg.Handler)

	// Order: Recover -> RequestID -> Metrics -> AccessLog -> RateLimit -> Handler
	base := []Middleware{Recover(cfg.Logger), RequestID(cfg.Logger)}
	if cfg.Metrics != nil {
		base = append(base, Metrics(cfg.Metrics))
	}

	api := append(append([]Middleware{}, base...), AccessLog(cfg.Logger))
	if cfg.RateLimit > 0 {
		api = append(api, RateLimit(NewRateLimiterRegistry(cfg.RateLimit, cfg.RateBurst)))
	}

	healthHandler := Chain(h, base...)
	apiHandler := Chain(h, api...)

	// The top-level mux mirrors the handler routes so r.Pattern is set
	// before the metrics middleware runs.
	mux := http.NewServeMux()

	// Health endpoints
	mux.Handle("GET /health", healthHandler)
	mux.Handle("GET /ready", healthHandler)
	mux.Handle("GET /ping/{id}", healthHandler)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(cfg.Logger)))
	}

	// Slot endpoints
	mux.Handle("GET /v1/slots", apiHandler)
	mux.Handle("GET /v1/slots/{index}", apiHandler)
	mux.Handle("PUT /v1/slots/{index}", apiHandler)
	mux.Handle("POST /v1/slots/{index}", apiHandler)
	mux.Handle("DELETE /v1/slots/{index}", apiHandler)
	mux.Handle("POST /v1/slots/export", apiHandler)
	mux.Handle("POST /v1/slots/import", apiHandler)

	// Display endpoints
	mux.Handle("GET /v1/mode", apiHandler)
	mux.Handle("POST /v1/mode/black", apiHandler)
	mux.Handle("POST /v1/mode/live", apiHandler)
	mux.Handle("POST /v1/mode/round-robin", apiHandler)
	mux.Handle("POST /v1/mode/slot/{index}", apiHandler)
	mux.Handle("POST /v1/state", apiHandler)
	mux.Handle("POST /v1/live", apiHandler)
	mux.Handle("GET /v1/preview", apiHandler)

	// CORS wraps the mux so preflight requests are answered before routing.
	if len(cfg.CORSAllowedOrigins) > 0 {
		return CORS(cfg.CORSAllowedOrigins)(mux)
	}
	return mux
}
