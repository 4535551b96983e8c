//go:build !integration

package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/orderstore/internal/mapper"
	"github.com/Gunvolt24/orderstore/internal/testutil"
)

// --- Бенчмарки ---

// Базовый бенч: GetOrder — сравниваем LEAN vs FULL пайплайн
func BenchmarkHTTP_GetOrder(b *testing.B) {
	resp := mapper.ToExternal(testutil.MakeOrder(testutil.WithItems(5)))
	h := NewHandler(svcStub{one: resp}, nopLogger{}, 2*time.Second)

	lean := makeLeanRouter(h)
	full := makeFullRouter(h)

	b.Run("lean/no-mw", func(b *testing.B) {
		benchServe(b, lean, http.MethodGet, "/order/"+resp.OrderID, "", http.StatusOK)
	})
	b.Run("full/prod-mw", func(b *testing.B) {
		benchServe(b, full, http.MethodGet, "/order/"+resp.OrderID, "", http.StatusOK)
	})
}

// Потолок без маршалинга: тот же заказ, но заранее закодированный JSON.
// Показывает, сколько «ест» encoding/json в хендлере.
func BenchmarkHTTP_GetOrder_PreMarshaledBytes(b *testing.B) {
	resp := mapper.ToExternal(testutil.MakeOrder(testutil.WithItems(5)))
	raw, _ := json.Marshal(resp)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/order/:orderId", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", raw)
	})

	benchServe(b, r, http.MethodGet, "/order/"+resp.OrderID, "", http.StatusOK)
}

// Листинг: 10/100/1000 — рост аллокаций и времени с размером ответа
func BenchmarkHTTP_ListOrders(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run("N="+strconv.Itoa(n), func(b *testing.B) {
			list := make([]*mapper.OrderResponse, 0, n)
			for i := 0; i < n; i++ {
				list = append(list, mapper.ToExternal(testutil.MakeOrder(testutil.WithItems(3))))
			}
			h := NewHandler(svcStub{list: list}, nopLogger{}, 2*time.Second)

			benchServe(b, makeLeanRouter(h), http.MethodGet, "/order/list", "", http.StatusOK)
		})
	}
}

// Создание: строгий разбор тела + маппинг ответа
func BenchmarkHTTP_CreateOrder(b *testing.B) {
	req := testutil.MakeRequest(testutil.WithRequestItems(5))
	body, _ := json.Marshal(req)
	resp := mapper.ToExternal(testutil.MakeOrder(testutil.WithItems(5)))
	h := NewHandler(svcStub{one: resp}, nopLogger{}, 2*time.Second)

	benchServe(b, makeLeanRouter(h), http.MethodPost, "/order", string(body), http.StatusCreated)
}

// Ошибочный путь (404): "цена" роутера и 404-хендлера
func BenchmarkHTTP_404(b *testing.B) {
	h := NewHandler(svcStub{}, nopLogger{}, 2*time.Second)
	benchServe(b, makeFullRouter(h), http.MethodGet, "/nope", "", http.StatusNotFound)
}

// --- nopLogger — логгер, который не делает ничего. ---

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// --- Стаб сервиса: заранее подготовленные ответы (без аллокаций на каждом вызове) ---

type svcStub struct {
	one  *mapper.OrderResponse
	list []*mapper.OrderResponse
}

func (s svcStub) CreateOrder(context.Context, *mapper.OrderRequest) (*mapper.OrderResponse, error) {
	return s.one, nil
}
func (s svcStub) GetOrder(context.Context, string) (*mapper.OrderResponse, error) { return s.one, nil }
func (s svcStub) ListOrders(context.Context) ([]*mapper.OrderResponse, error)      { return s.list, nil }
func (s svcStub) UpdateOrder(context.Context, string, *mapper.OrderRequest) (*mapper.OrderResponse, error) {
	return s.one, nil
}
func (s svcStub) DeleteOrder(context.Context, string) (bool, error) { return true, nil }
func (s svcStub) Ping(context.Context) error                        { return nil }

// --- функции-помощники ---

func makeLeanRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New() // без Recovery/otel/logger — получаем меньшую аллокацию
	r.POST("/order", h.createOrder)
	r.GET("/order/list", h.listOrders)
	r.GET("/order/:orderId", h.getOrder)
	return r
}

func makeFullRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	// prod пайплайн из NewRouter
	return NewRouter(h, "")
}

func benchServe(b *testing.B, r *gin.Engine, method, path, body string, wantCode int) {
	b.Helper()
	b.ReportAllocs()
	b.ResetTimer()

	// Параллельный режим ближе к реальности без TCP
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			var reqBody io.Reader = http.NoBody
			if body != "" {
				reqBody = strings.NewReader(body)
			}
			req, _ := http.NewRequest(method, path, reqBody)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			// вычитываем тело
			_, _ = io.Copy(io.Discard, w.Body)
			if w.Code != wantCode {
				b.Fatalf("status=%d", w.Code)
			}
		}
	})
}
