package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quote_service"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2.5, 10),
	}, []string{"route"})

	resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolutions_total",
		Help:      "Document tokens/lines resolved, by pass and match kind",
	}, []string{"pass", "match"})
	searches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Catalog searches served",
	})
	quotesGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_generated_total",
		Help:      "Quotes generated from carts",
	})
	catalogReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_reloads_total",
		Help:      "Catalog reload attempts by result",
	}, []string{"result"})

	catalogProducts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_products",
		Help:      "Products in the active catalog",
	})
	sessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Live quoting sessions",
	})
)

// Register регистрирует метрики в глобальном реестре (идемпотентно).
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration,
			resolutions, searches, quotesGenerated, catalogReloads,
			catalogProducts, sessionsActive)
	})
}

// Handler отдаёт /metrics.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}

func ObserveRequest(method, route string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func IncResolution(pass, match string) { resolutions.WithLabelValues(pass, match).Inc() }
func IncSearch()                       { searches.Inc() }
func IncQuoteGenerated()               { quotesGenerated.Inc() }
func IncCatalogReload(ok bool) {
	if ok {
		catalogReloads.WithLabelValues("ok").Inc()
		return
	}
	catalogReloads.WithLabelValues("error").Inc()
}

func SetCatalogProducts(n int) { catalogProducts.Set(float64(n)) }
func SetSessionsActive(n int)  { sessionsActive.Set(float64(n)) }
