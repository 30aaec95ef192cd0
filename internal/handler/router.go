package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mavskr/newspipe/internal/middleware"
)

// RouterConfig はルータ構築に必要な依存と設定。
type RouterConfig struct {
	NewsHandler   *NewsHandler
	CronHandler   *CronHandler
	CronSecret    string
	RateLimiter   *middleware.RateLimiter
	CORSOrigin    string
	MetricsGather prometheus.Gatherer
	Logger        *slog.Logger
}

// NewRouter はAPIルータを構築する。
// cron系エンドポイントはBearer認証、公開APIはレート制限の背後に置かれる。
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigin))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.MetricsGather, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(cfg.RateLimiter.Handler)
			r.Get("/news", cfg.NewsHandler.List)
			r.Get("/news/{id}", cfg.NewsHandler.Get)
		})

		r.Route("/cron", func(r chi.Router) {
			r.Use(middleware.CronAuth(cfg.CronSecret, cfg.Logger))
			r.Get("/crawl-news", cfg.CronHandler.CrawlNews)
			r.Post("/crawl-news", cfg.CronHandler.CrawlNews)
			r.Get("/translate-news", cfg.CronHandler.TranslateNews)
		})
	})

	return r
}
