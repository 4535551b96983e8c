package testutil

import (
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/Gunvolt24/orderstore/internal/domain"
	"github.com/Gunvolt24/orderstore/internal/mapper"
)

// UniqSuffix — короткий случайный суффикс для бизнес-ключей.
func UniqSuffix() string { return gofakeit.LetterN(10) }

// OrderOption — модификатор внутреннего заказа.
type OrderOption func(*domain.Order)

// RequestOption — модификатор внешнего запроса.
type RequestOption func(*mapper.OrderRequest)

func randomDate() time.Time {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return gofakeit.DateRange(start, start.AddDate(5, 0, 0)).UTC().Truncate(time.Millisecond)
}

func randomMoney() decimal.Decimal {
	return decimal.NewFromFloat(gofakeit.Price(1, 1000)).Round(2)
}

// MakeOrder — валидный внутренний заказ с уникальным бизнес-ключом и одной позицией.
func MakeOrder(opts ...OrderOption) *domain.Order {
	o := &domain.Order{
		OrderID:      "ord-" + UniqSuffix(),
		Value:        randomMoney(),
		CreationDate: randomDate(),
		Items:        makeItems(1),
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

func makeItems(n int) []domain.Item {
	items := make([]domain.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.Item{
			ProductID: int64(gofakeit.Number(1, 1_000_000)),
			Quantity:  gofakeit.Number(1, 10),
			Price:     randomMoney(),
		})
	}
	return items
}

// WithItems — n случайных позиций (0 — заказ без позиций).
func WithItems(n int) OrderOption {
	return func(o *domain.Order) { o.Items = makeItems(n) }
}

// WithOrderID — фиксированный бизнес-ключ.
func WithOrderID(id string) OrderOption {
	return func(o *domain.Order) { o.OrderID = id }
}

// MakeRequest — валидный внешний запрос (то, что присылают HTTP и Kafka).
func MakeRequest(opts ...RequestOption) *mapper.OrderRequest {
	order := MakeOrder()
	req := &mapper.OrderRequest{
		BusinessOrderID:   order.OrderID,
		TotalValue:        order.Value,
		CreationTimestamp: order.CreationDate.Format(time.RFC3339Nano),
		Items:             make([]mapper.ItemRequest, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		req.Items = append(req.Items, mapper.ItemRequest{
			ExternalProductID: mapper.ProductRef(strconv.FormatInt(item.ProductID, 10)),
			Quantity:          item.Quantity,
			UnitPrice:         item.Price,
		})
	}
	for _, fn := range opts {
		fn(req)
	}
	return req
}

// WithRequestID — фиксированный businessOrderId.
func WithRequestID(id string) RequestOption {
	return func(r *mapper.OrderRequest) { r.BusinessOrderID = id }
}

// WithRequestItems — n позиций с последовательными id товаров (100, 101, ...).
func WithRequestItems(n int) RequestOption {
	return func(r *mapper.OrderRequest) {
		r.Items = make([]mapper.ItemRequest, 0, n)
		for i := 0; i < n; i++ {
			r.Items = append(r.Items, mapper.ItemRequest{
				ExternalProductID: mapper.ProductRef(fmt.Sprint(100 + i)),
				Quantity:          i + 1,
				UnitPrice:         decimal.NewFromInt(int64(10 * (i + 1))),
			})
		}
	}
}
