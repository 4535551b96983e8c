package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderRequest — внешнее представление заказа (тело POST/PUT и сообщение Kafka).
type OrderRequest struct {
	BusinessOrderID   string          `json:"businessOrderId"`
	TotalValue        decimal.Decimal `json:"totalValue"`
	CreationTimestamp string          `json:"creationTimestamp"`
	Items             []ItemRequest   `json:"items"`
}

// ItemRequest — внешняя позиция заказа.
type ItemRequest struct {
	ExternalProductID ProductRef      `json:"externalProductId"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
}

// OrderResponse — ответ наружу; creationDate всегда в каноническом UTC-виде.
type OrderResponse struct {
	OrderID      string         `json:"orderId"`
	Value        float64        `json:"value"`
	CreationDate string         `json:"creationDate"`
	Items        []ItemResponse `json:"items"`
}

// ItemResponse — позиция в ответе.
type ItemResponse struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// ProductRef — внешний идентификатор товара в исходном виде.
// Клиенты присылают его и строкой ("77"), и числом (77); приводим к тексту,
// разбор в целое — задача ToInternal.
type ProductRef string

func (p *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductRef(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("externalProductId must be a string or a number: %w", err)
	}
	*p = ProductRef(n.String())
	return nil
}
