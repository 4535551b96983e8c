package ports

import (
	"context"

	"github.com/Gunvolt24/orderstore/internal/mapper"
)

// OrderService — операции над заказами для транспортного слоя.
type OrderService interface {
	CreateOrder(ctx context.Context, req *mapper.OrderRequest) (*mapper.OrderResponse, error)
	GetOrder(ctx context.Context, orderID string) (*mapper.OrderResponse, error)
	ListOrders(ctx context.Context) ([]*mapper.OrderResponse, error)
	UpdateOrder(ctx context.Context, orderID string, req *mapper.OrderRequest) (*mapper.OrderResponse, error)
	DeleteOrder(ctx context.Context, orderID string) (bool, error)
	Ping(ctx context.Context) error
}
