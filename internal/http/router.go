// http — служебный HTTP коллектора: liveness, статус последнего прогона и метрики.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/fb-collector/internal/http/middleware"
)

// HealthChecker сообщает об ошибке последнего прогона; nil — здоров.
type HealthChecker interface {
	Healthy() error
}

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger *slog.Logger
	Health HealthChecker
	// Gatherer — источник метрик для /metrics; nil — prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	r.Use(
		middleware.Recover(),
		middleware.RequestID(), // до логирования
		middleware.Logging(opts.Logger),
	)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/healthz", healthz(opts.Health))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// healthz отвечает 503, если последний прогон завершился ошибкой.
func healthz(hc HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if hc != nil {
			if err := hc.Healthy(); err != nil {
				http.Error(w, "last run failed", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
