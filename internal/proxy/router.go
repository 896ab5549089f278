package proxy

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/reddynasty/booking-widget/internal/http/middleware"
	"github.com/reddynasty/booking-widget/pkg/logging"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	Handler            *Handler
	Logger             *logging.Logger
	CORSAllowedOrigins string // comma separated, "*" for any
	MetricsHandler     http.Handler
}

// NewRouter creates the chi router with all proxy routes configured.
func NewRouter(cfg *RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	if origins := splitOrigins(cfg.CORSAllowedOrigins); len(origins) > 0 {
		r.Use(httpmiddleware.CORS(origins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	h := cfg.Handler
	r.Group(func(widget chi.Router) {
		// The passthrough fronts a metered third-party API.
		widget.Use(httpmiddleware.RateLimit(10, 30))
		widget.Get("/cf", h.CFGet)
		widget.Post("/cf", h.CFPost)
		widget.Post("/payment-order", h.PaymentOrder)
		widget.Post("/payment-confirm", h.PaymentConfirm)
	})
	r.Get("/config", h.Config)
	r.Get("/health", h.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
