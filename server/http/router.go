package serverhttp

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"quote-service/internal/config"
	"quote-service/internal/metrics"
	"quote-service/internal/middleware"
	quoteHnd "quote-service/internal/quote/handler"
	"quote-service/server/http/handlers"
)

func NewRouter(cfg config.Config, qh *quoteHnd.Handler, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// служебные эндпоинты без лимитов
	r.Get("/health", handlers.Health(time.Now(), qh))
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) << 20))
		r.Mount("/", qh.Routes())
	})

	return r
}
