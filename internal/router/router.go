package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pinewood/booking-api/internal/config"
	"github.com/pinewood/booking-api/internal/handler"
	availabilityHandler "github.com/pinewood/booking-api/internal/handler/availability"
	bookingHandler "github.com/pinewood/booking-api/internal/handler/booking"
	catalogHandler "github.com/pinewood/booking-api/internal/handler/catalog"
	"github.com/pinewood/booking-api/internal/middleware"
)

type Router struct {
	engine  *gin.Engine
	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func initRouterMetrics() *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests by route, method and status",
		}, []string{"method", "route", "status"}),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal)
	return m
}

func (m *routerMetrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.requestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// NewRouter assembles the gin engine: global middleware, the public
// booking surface under /api/v1, and the admin surface under
// /api/v1/admin behind authentication.
func NewRouter(
	cfg *config.Config,
	adminAuth *middleware.AdminAuth,
	healthH *handler.HealthHandler,
	bookingH *bookingHandler.Handler,
	availabilityH *availabilityHandler.Handler,
	catalogH *catalogHandler.Handler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	metrics := initRouterMetrics()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger())
	engine.Use(middleware.Recovery())
	engine.Use(metrics.middleware())

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		engine.Use(limiter.Middleware())
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	healthH.RegisterRoutes(api)
	bookingH.RegisterRoutes(api)
	catalogH.RegisterRoutes(api)

	admin := api.Group("/admin", adminAuth.Middleware())
	bookingH.RegisterAdminRoutes(admin)
	availabilityH.RegisterRoutes(admin)
	catalogH.RegisterAdminRoutes(admin)

	return &Router{engine: engine, metrics: metrics}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
