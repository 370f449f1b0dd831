package router

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"mart_inventory/internal/handlers"
	"mart_inventory/internal/middleware"
	"mart_inventory/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the sync API routes.
type Options struct {
	AllowedOrigins       []string
	SharedSecret         []byte
	TransactionReadLimit int
	// Registerer receives the request metrics; nil means the default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Setup initializes the routing for the application. db may be nil while the
// database is still connecting; the data routes then answer 503.
func Setup(engine *gin.Engine, db *sql.DB, opts Options) {
	syncService := services.NewSyncService(db, opts.TransactionReadLimit)
	syncHandler := handlers.NewSyncHandler(syncService)

	engine.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	reg, gatherer := opts.Registerer, opts.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metrics := newRequestMetrics(reg)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	api.Use(metrics.middleware())
	api.GET("/health", syncHandler.HealthCheck)

	data := api.Group("")
	data.Use(middleware.SyncAuthMiddleware(opts.SharedSecret))
	{
		data.GET("/get-all", syncHandler.GetAll)
		data.POST("/sync", syncHandler.Sync)
	}
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	return config
}

type requestMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newRequestMetrics(reg prometheus.Registerer) *requestMetrics {
	m := &requestMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mart",
			Subsystem: "sync_api",
			Name:      "requests_total",
			Help:      "Sync API requests by route and status code.",
		}, []string{"route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mart",
			Subsystem: "sync_api",
			Name:      "request_duration_seconds",
			Help:      "Sync API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
	// Re-registration (tests build many routers) reuses the existing collectors.
	m.requests = registerOrReuse(reg, m.requests)
	m.duration = registerOrReuse(reg, m.duration)
	return m
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *requestMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
