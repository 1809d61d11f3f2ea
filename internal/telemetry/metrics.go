package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RendersTotal считает завершённые рендеры по статусу и формату.
	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contracta_renders_total",
		Help: "Total render jobs finished, by status and format",
	}, []string{"status", "format"})

	// RenderDuration измеряет длительность рендера.
	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contracta_render_duration_seconds",
		Help:    "Render duration in seconds, by format",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})

	// UnresolvedTokens распределение числа токенов, оставшихся после слияния.
	UnresolvedTokens = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contracta_unresolved_tokens",
		Help:    "Template tokens left unresolved after a merge",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	})

	// PreviewsTotal считает синхронные предпросмотры.
	PreviewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contracta_previews_total",
		Help: "Total synchronous contract previews",
	})

	// HTTPRequestsTotal считает HTTP-запросы API.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contracta_api_http_requests_total",
		Help: "Total HTTP requests handled by contracta-api, by method and status",
	}, []string{"method", "status"})

	// SweptJobsTotal считает удалённые sweeper'ом задания.
	SweptJobsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contracta_sweeper_deleted_jobs_total",
		Help: "Total finished render jobs deleted by the sweeper",
	})
)

// ObserveRender записывает метрики завершённого рендера.
func ObserveRender(status, format string, d time.Duration, unresolved int) {
	RendersTotal.WithLabelValues(status, format).Inc()
	RenderDuration.WithLabelValues(format).Observe(d.Seconds())
	UnresolvedTokens.Observe(float64(unresolved))
}
