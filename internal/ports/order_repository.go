package ports

import (
	"context"

	"github.com/Gunvolt24/orderstore/internal/domain"
)

// OrderRepository — хранилище заказов (заголовок + позиции).
// Отсутствие заказа — не ошибка: (nil, nil) для чтения/обновления, false для удаления.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	Update(ctx context.Context, orderID string, order *domain.Order) (*domain.Order, error)
	Delete(ctx context.Context, orderID string) (bool, error)
	LastN(ctx context.Context, n int) ([]*domain.Order, error)
	Ping(ctx context.Context) error
}
