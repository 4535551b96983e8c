package ports

import (
	"context"

	"github.com/Gunvolt24/orderstore/internal/domain"
)

// OrderCache — интерфейс кэша заказов.
// Требования к реализации: потокобезопасность; доступ по ключу не хуже O(1); возврат копий сущности.
type OrderCache interface {
	// Get — вернуть заказ по бизнес-ключу; (order, true) при попадании, (nil, false) при промахе/истечении.
	Get(ctx context.Context, orderID string) (*domain.Order, bool)

	// Generation — поколение ключа; снимается до чтения/записи заказа в хранилище.
	Generation(ctx context.Context, orderID string) uint64

	// SetIfGeneration — сохранить заказ, если после Generation ключ не удаляли.
	// (false, nil) — значение устарело и отброшено.
	SetIfGeneration(ctx context.Context, order *domain.Order, gen uint64) (bool, error)

	// Delete — убрать запись и сменить поколение ключа (после обновления/удаления заказа).
	Delete(ctx context.Context, orderID string)

	// WarmUp — массовая загрузка кэша (например, при старте).
	// Реализация должна поддерживать отмену контекста.
	WarmUp(ctx context.Context, orders []*domain.Order) error
}
