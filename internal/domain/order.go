package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order — заказ во внутреннем (хранимом) представлении: заголовок + позиции.
type Order struct {
	// SurrogateID — ключ строки orders, назначается хранилищем.
	// Связывает заголовок с позициями и не покидает слой хранения/домена.
	SurrogateID int64

	OrderID      string          // бизнес-ключ, уникален
	Value        decimal.Decimal // итоговая сумма
	CreationDate time.Time       // UTC, точность до миллисекунд

	// CreatedAt — момент вставки заголовка (задаёт порядок листинга).
	CreatedAt time.Time

	Items []Item
}

// Item — позиция заказа (строка order_items).
type Item struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal // цена за единицу
}

// Clone — глубокая копия заказа (срез позиций не разделяется).
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cloned := *o
	if o.Items != nil {
		cloned.Items = append([]Item(nil), o.Items...)
	}
	return &cloned
}
