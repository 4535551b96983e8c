// Пакет mapper — чистая трансляция между внешним представлением заказа
// и внутренним (domain.Order). Без I/O и побочных эффектов.
package mapper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Gunvolt24/orderstore/internal/domain"
	"github.com/samber/lo"
)

// CanonicalLayout — формат creationDate в ответах (ISO-8601, UTC, миллисекунды).
const CanonicalLayout = "2006-01-02T15:04:05.000Z"

// timestampLayouts — допустимые форматы creationTimestamp, по порядку попыток.
// Форматы без смещения читаются как UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

var errEmptyValue = errors.New("value is empty")

// ToInternal — запрос -> внутренний заказ.
// Ошибки разбора id товара и даты возвращаются как *domain.MalformedFieldError.
func ToInternal(req *OrderRequest) (*domain.Order, error) {
	if req == nil {
		return nil, &domain.MalformedFieldError{Field: "order", Err: errEmptyValue}
	}

	creationDate, err := NormalizeTimestamp(req.CreationTimestamp)
	if err != nil {
		return nil, &domain.MalformedFieldError{Field: "creationTimestamp", Value: req.CreationTimestamp, Err: err}
	}

	items := make([]domain.Item, 0, len(req.Items))
	for i, item := range req.Items {
		productID, err := ParseProductID(string(item.ExternalProductID))
		if err != nil {
			return nil, &domain.MalformedFieldError{
				Field: fmt.Sprintf("items[%d].externalProductId", i),
				Value: string(item.ExternalProductID),
				Err:   err,
			}
		}
		items = append(items, domain.Item{
			ProductID: productID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		})
	}

	return &domain.Order{
		OrderID:      req.BusinessOrderID,
		Value:        req.TotalValue,
		CreationDate: creationDate,
		Items:        items,
	}, nil
}

// ToExternal — внутренний заказ -> ответ. Данные уже сохранены, поэтому без проверок.
func ToExternal(order *domain.Order) *OrderResponse {
	if order == nil {
		return nil
	}
	return &OrderResponse{
		OrderID:      order.OrderID,
		Value:        order.Value.InexactFloat64(),
		CreationDate: FormatTimestamp(order.CreationDate),
		Items: lo.Map(order.Items, func(item domain.Item, _ int) ItemResponse {
			return ItemResponse{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price.InexactFloat64(),
			}
		}),
	}
}

// ToExternalList — сохраняет порядок; для пустого входа возвращает пустой (не nil) срез.
func ToExternalList(orders []*domain.Order) []*OrderResponse {
	return lo.Map(orders, func(order *domain.Order, _ int) *OrderResponse {
		return ToExternal(order)
	})
}

// ParseProductID — строгий разбор целого (base 10). "77abc" — ошибка, а не 77.
func ParseProductID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errEmptyValue
	}
	return strconv.ParseInt(s, 10, 64)
}

// NormalizeTimestamp — разбор даты/времени в UTC с точностью до миллисекунд.
func NormalizeTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errEmptyValue
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date-time format %q", s)
}

// FormatTimestamp — каноническое представление creationDate.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(CanonicalLayout)
}
