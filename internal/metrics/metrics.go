package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clockmap_requests_total",
		Help: "Total API requests by route",
	}, []string{"route"})
	PinResolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clockmap_pin_resolve_total",
		Help: "Place name resolutions by outcome (country, city, miss)",
	}, []string{"outcome"})
	RenderTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clockmap_render_total",
		Help: "Total dotted map renders (cache misses that reached the renderer)",
	})
	RenderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "clockmap_render_duration_ms",
		Help:    "Map render duration in milliseconds",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
	})
	RenderCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clockmap_render_cache_hits_total",
		Help: "Render cache hits by layer (lru, redis)",
	}, []string{"layer"})
	RenderCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clockmap_render_cache_misses_total",
		Help: "Render cache misses across all layers",
	})
	TickEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clockmap_tick_events_total",
		Help: "Clock events emitted by reason (time_tick, time_changed) and delivery",
	}, []string{"reason", "delivery"})
	TickListeners = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "clockmap_tick_listeners",
		Help: "Active clock event listeners (0 or 1)",
	})
	ClockListOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clockmap_clocklist_ops_total",
		Help: "Clock list store operations by op and status",
	}, []string{"op", "status"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(PinResolveTotal)
	prometheus.MustRegister(RenderTotal)
	prometheus.MustRegister(RenderDurationMs)
	prometheus.MustRegister(RenderCacheHitsTotal)
	prometheus.MustRegister(RenderCacheMissesTotal)
	prometheus.MustRegister(TickEventsTotal)
	prometheus.MustRegister(TickListeners)
	prometheus.MustRegister(ClockListOpsTotal)
}

// 文档注释：返回 Prometheus 指标监听器，在 {API_BASE}/metrics 挂载
func Handler() http.Handler { return promhttp.Handler() }
