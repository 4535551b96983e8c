package ports

import (
	"context"

	"github.com/Gunvolt24/orderstore/internal/mapper"
)

// OrderValidator — проверка входящего заказа до маппинга.
type OrderValidator interface {
	ValidateCreate(ctx context.Context, req *mapper.OrderRequest) error
	ValidateUpdate(ctx context.Context, req *mapper.OrderRequest) error
}
