package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	repoOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "amilimetros",
		Name:      "repo_operations_total",
		Help:      "Repository calls by repository, operation and result.",
	}, []string{"repo", "op", "result"})

	streamSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "amilimetros",
		Name:      "stream_subscribers",
		Help:      "Subscribers currently attached to live query feeds.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "amilimetros",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "amilimetros",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func ObserveRepo(repo, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	repoOps.WithLabelValues(repo, op, result).Inc()
}

// Subscribers matches the watch.Hub observer signature.
func Subscribers(delta int) {
	streamSubscribers.Add(float64(delta))
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
