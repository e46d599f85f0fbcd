// Package metrics は Prometheus のメトリクス定義と HTTP 計測ミドルウェアを提供します。
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 認証フローの結果ラベルです。
const (
	ResultSuccess         = "success"
	ResultUsernameTaken   = "username_taken"
	ResultInvalidPassword = "invalid_password"
	ResultUnknownUser     = "unknown_user"
	ResultNoSession       = "no_session"
	ResultError           = "error"
)

var (
	// Registrations は POST /api/auth/register の結果を数えます。
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Number of registration attempts by result.",
	}, []string{"result"})

	// Logins は POST /api/auth/login の結果を数えます。
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Number of login attempts by result.",
	}, []string{"result"})

	// Logouts は GET /api/auth/logout の結果を数えます。
	Logouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logouts_total",
		Help: "Number of logout requests by result.",
	}, []string{"result"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Middleware はルート単位でリクエスト時間を計測します。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler は /metrics 用のハンドラーです。
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
