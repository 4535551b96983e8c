package httpx

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/orderstore/internal/ports"
	"github.com/Gunvolt24/orderstore/pkg/ctxmeta"
	"github.com/Gunvolt24/orderstore/pkg/metrics"
)

// unmatchedRoute — метка route для запросов мимо маршрутов (ограничивает кардинальность).
const unmatchedRoute = "unmatched"

// RequestLogger — middleware: строка лога и HTTP-метрики на каждый запрос.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		// не логируем /metrics, /ping
		switch route {
		case "/metrics", "/ping":
			return
		}

		ctx := c.Request.Context()
		rid, _ := ctxmeta.RequestIDFromContext(ctx)

		log.Infof(
			ctx,
			"request id=%s method=%s path=%s status=%d ip=%s duration=%s size=%d",
			rid,
			c.Request.Method,
			c.Request.URL.Path,
			status,
			c.ClientIP(),
			elapsed,
			c.Writer.Size(),
		)
	}
}
