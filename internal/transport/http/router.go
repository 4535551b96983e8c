package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/orderstore/pkg/httpx"
)

// NewRouter — gin.Engine со всеми маршрутами заказов и служебными эндпоинтами.
// otelName пустой — без трейсинга HTTP.
func NewRouter(h *Handler, otelName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if otelName != "" {
		r.Use(otelgin.Middleware(otelName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", h.health)

	orders := r.Group("/order")
	orders.POST("", h.createOrder)
	orders.GET("/list", h.listOrders)
	orders.GET("/:orderId", h.getOrder)
	orders.PUT("/:orderId", h.updateOrder)
	orders.DELETE("/:orderId", h.deleteOrder)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		if allowed := httpx.AllowedMethods(r.Routes(), c.Request.URL.Path); len(allowed) > 0 {
			c.Header("Allow", strings.Join(allowed, ", "))
		}
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	return r
}
