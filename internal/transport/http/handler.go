package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/orderstore/internal/domain"
	"github.com/Gunvolt24/orderstore/internal/mapper"
	"github.com/Gunvolt24/orderstore/internal/ports"
	"github.com/Gunvolt24/orderstore/pkg/ctxmeta"
	"github.com/Gunvolt24/orderstore/pkg/httpx"
	"github.com/Gunvolt24/orderstore/pkg/validate"
)

// maxBodyBytes — предел размера тела POST/PUT.
const maxBodyBytes = 1 << 20

const (
	msgNotFound = "order not found"
	msgInternal = "internal server error"
)

// Handler — HTTP-обработчики заказов поверх ports.OrderService.
type Handler struct {
	service ports.OrderService
	log     ports.Logger
	timeout time.Duration
}

// NewHandler — timeout <= 0 означает «без собственного дедлайна».
func NewHandler(service ports.OrderService, log ports.Logger, timeout time.Duration) *Handler {
	return &Handler{service: service, log: log, timeout: timeout}
}

// requestContext — контекст запроса с таймаутом обработчика и order_id для логов.
func (h *Handler) requestContext(c *gin.Context, orderID string) (context.Context, context.CancelFunc) {
	ctx := ctxmeta.WithOrderID(c.Request.Context(), orderID)
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Handler) createOrder(c *gin.Context) {
	req, ok := h.decodeBody(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c, req.BusinessOrderID)
	defer cancel()

	order, err := h.service.CreateOrder(ctx, req)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "order created", "order": order})
}

func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := httpx.PathParam(c, "orderId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty order id"})
		return
	}
	ctx, cancel := h.requestContext(c, orderID)
	defer cancel()

	order, err := h.service.GetOrder(ctx, orderID)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	ctx, cancel := h.requestContext(c, "")
	defer cancel()

	orders, err := h.service.ListOrders(ctx)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(orders), "orders": orders})
}

func (h *Handler) updateOrder(c *gin.Context) {
	orderID, ok := httpx.PathParam(c, "orderId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty order id"})
		return
	}
	req, ok := h.decodeBody(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c, orderID)
	defer cancel()

	order, err := h.service.UpdateOrder(ctx, orderID, req)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order updated", "order": order})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	orderID, ok := httpx.PathParam(c, "orderId")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty order id"})
		return
	}
	ctx, cancel := h.requestContext(c, orderID)
	defer cancel()

	deleted, err := h.service.DeleteOrder(ctx, orderID)
	if err != nil {
		h.writeError(ctx, c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": msgNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order deleted"})
}

// health — 503, если хранилище недоступно.
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := h.requestContext(c, "")
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		h.log.Warnf(ctx, "health check failed err=%v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "UNAVAILABLE"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// decodeBody — строгий разбор тела; при ошибке ответ уже записан.
func (h *Handler) decodeBody(c *gin.Context) (*mapper.OrderRequest, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return nil, false
	}

	req, err := validate.DecodeOrderRequest(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json", "details": err.Error()})
		return nil, false
	}
	return req, true
}

// writeError — ошибка сервиса -> HTTP-статус. Детали отдаём только для ошибок клиента.
func (h *Handler) writeError(ctx context.Context, c *gin.Context, err error) {
	switch {
	case errors.Is(err, validate.ErrInvalidOrder), domain.IsMalformed(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order", "details": err.Error()})
	case domain.IsDuplicate(err):
		c.JSON(http.StatusConflict, gin.H{"error": "order already exists"})
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Errorf(ctx, "request timed out err=%v", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		h.log.Errorf(ctx, "request failed err=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}
