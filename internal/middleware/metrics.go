package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bodasuite_http_requests_total",
		Help: "HTTP requests served, labeled by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// Metrics counts every served request. Routes are labeled by their
// registered path pattern, not the raw URL, to keep cardinality bounded.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			httpRequests.WithLabelValues(
				c.Request().Method,
				route,
				strconv.Itoa(c.Response().Status),
			).Inc()
			return err
		}
	}
}
