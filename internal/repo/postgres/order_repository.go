package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Gunvolt24/orderstore/internal/domain"
	"github.com/Gunvolt24/orderstore/internal/ports"
	"github.com/Gunvolt24/orderstore/pkg/metrics"
)

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// errOrderNotFound — внутренний сигнал для отката транзакции обновления.
var errOrderNotFound = errors.New("order not found")

// selectOrders — заголовок и позиции одним запросом (LEFT JOIN): один снимок данных,
// заголовок не может сочетаться с набором позиций из другой транзакции.
const selectOrders = `
	SELECT o.id, o.order_id, o.value, o.creation_date, o.created_at,
		i.id, i.product_id, i.quantity, i.price
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.id
`

// OrderRepository — реализация репозитория заказов на Postgres (pgx).
type OrderRepository struct {
	db DB
}

// NewOrderRepository - конструктор OrderRepository.
func NewOrderRepository(db DB) *OrderRepository { return &OrderRepository{db: db} }

// Create — транзакционно сохраняет заголовок и все позиции.
// Конфликт бизнес-ключа -> domain.ErrDuplicateOrder, прочие сбои -> domain.ErrPersistence.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (_ *domain.Order, err error) {
	defer track("create", time.Now(), &err, nil)

	if order == nil {
		return nil, fmt.Errorf("%w: order is nil", domain.ErrPersistence)
	}

	created, err := withTx(ctx, r.db, func(tx pgx.Tx) (*domain.Order, error) {
		saved := order.Clone()
		if err := tx.QueryRow(ctx, `
			INSERT INTO orders (order_id, value, creation_date)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, order.OrderID, order.Value, order.CreationDate).Scan(&saved.SurrogateID, &saved.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: order_id=%q", domain.ErrDuplicateOrder, order.OrderID)
			}
			return nil, fmt.Errorf("insert order: %w", err)
		}

		if err := insertItems(ctx, tx, saved.SurrogateID, saved.Items); err != nil {
			return nil, err
		}
		return saved, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create order %q: %w", domain.ErrPersistence, order.OrderID, err)
	}

	normalize(created)
	return created, nil
}

// GetByOrderID — заказ по бизнес-ключу. Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByOrderID(ctx context.Context, orderID string) (_ *domain.Order, err error) {
	var found *domain.Order
	defer track("get", time.Now(), &err, func() bool { return found == nil })

	orders, err := r.query(ctx, selectOrders+`
		WHERE o.order_id = $1
		ORDER BY i.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: select order %q: %w", domain.ErrPersistence, orderID, err)
	}
	if len(orders) == 0 {
		return nil, nil
	}
	found = orders[0]
	return found, nil
}

// List — все заказы, новые первыми (по моменту вставки); позиции в порядке вставки.
// Пустое хранилище -> пустой (не nil) срез.
func (r *OrderRepository) List(ctx context.Context) (_ []*domain.Order, err error) {
	defer track("list", time.Now(), &err, nil)

	orders, err := r.query(ctx, selectOrders+`
		ORDER BY o.created_at DESC, o.id DESC, i.id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %w", domain.ErrPersistence, err)
	}
	return orders, nil
}

// Update — заменяет value, creation_date и весь набор позиций (не слияние).
// Если заказа нет, транзакция откатывается и возвращается (nil, nil).
func (r *OrderRepository) Update(ctx context.Context, orderID string, order *domain.Order) (_ *domain.Order, err error) {
	notFound := false
	defer track("update", time.Now(), &err, func() bool { return notFound })

	if order == nil {
		return nil, fmt.Errorf("%w: order is nil", domain.ErrPersistence)
	}

	updated, err := withTx(ctx, r.db, func(tx pgx.Tx) (*domain.Order, error) {
		saved := order.Clone()
		saved.OrderID = orderID

		// 1) заголовок; RETURNING id — поиск суррогатного ключа в том же запросе.
		err := tx.QueryRow(ctx, `
			UPDATE orders
			SET value = $2, creation_date = $3, updated_at = now()
			WHERE order_id = $1
			RETURNING id, created_at
		`, orderID, order.Value, order.CreationDate).Scan(&saved.SurrogateID, &saved.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errOrderNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("update order: %w", err)
		}

		// 2) позиции — replace: удаляем и вставляем список заново.
		if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, saved.SurrogateID); err != nil {
			return nil, fmt.Errorf("delete items: %w", err)
		}
		if err := insertItems(ctx, tx, saved.SurrogateID, saved.Items); err != nil {
			return nil, err
		}
		return saved, nil
	})
	if errors.Is(err, errOrderNotFound) {
		notFound = true
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update order %q: %w", domain.ErrPersistence, orderID, err)
	}

	normalize(updated)
	return updated, nil
}

// Delete — удаляет заказ; позиции уходят каскадом (FK ON DELETE CASCADE).
func (r *OrderRepository) Delete(ctx context.Context, orderID string) (_ bool, err error) {
	deleted := false
	defer track("delete", time.Now(), &err, func() bool { return !deleted })

	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return false, fmt.Errorf("%w: delete order %q: %w", domain.ErrPersistence, orderID, err)
	}
	deleted = tag.RowsAffected() > 0
	return deleted, nil
}

// LastN — последние N заказов (для прогрева кэша).
func (r *OrderRepository) LastN(ctx context.Context, n int) (_ []*domain.Order, err error) {
	if n <= 0 {
		return []*domain.Order{}, nil
	}
	defer track("last_n", time.Now(), &err, nil)

	orders, err := r.query(ctx, `
		WITH recent AS (
			SELECT id FROM orders ORDER BY created_at DESC, id DESC LIMIT $1
		)`+selectOrders+`
		JOIN recent r ON r.id = o.id
		ORDER BY o.created_at DESC, o.id DESC, i.id
	`, n)
	if err != nil {
		return nil, fmt.Errorf("%w: select last orders: %w", domain.ErrPersistence, err)
	}
	return orders, nil
}

// Ping — доступность хранилища (для /health).
func (r *OrderRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// query — выполняет JOIN-запрос и группирует строки по заказу, сохраняя порядок выборки.
func (r *OrderRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	bySurrogate := make(map[int64]*domain.Order)

	for rows.Next() {
		var (
			header    domain.Order
			itemID    *int64
			productID *int64
			quantity  *int
			price     decimal.NullDecimal
		)
		if err := rows.Scan(
			&header.SurrogateID, &header.OrderID, &header.Value, &header.CreationDate, &header.CreatedAt,
			&itemID, &productID, &quantity, &price,
		); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		order, ok := bySurrogate[header.SurrogateID]
		if !ok {
			order = &header
			order.Items = []domain.Item{}
			normalize(order)
			bySurrogate[header.SurrogateID] = order
			orders = append(orders, order)
		}

		// LEFT JOIN: у заказа без позиций колонки i.* равны NULL.
		if itemID == nil {
			continue
		}
		item := domain.Item{Price: price.Decimal}
		if productID != nil {
			item.ProductID = *productID
		}
		if quantity != nil {
			item.Quantity = *quantity
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return orders, nil
}

// insertItems — построчная вставка позиций; первая же ошибка прерывает транзакцию.
func insertItems(ctx context.Context, tx pgx.Tx, surrogateID int64, items []domain.Item) error {
	for i, item := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
		`, surrogateID, item.ProductID, item.Quantity, item.Price); err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	return nil
}

// normalize — даты из БД приходят в локальной зоне соединения; наружу отдаём UTC.
func normalize(order *domain.Order) {
	order.CreationDate = order.CreationDate.UTC()
	order.CreatedAt = order.CreatedAt.UTC()
	if order.Items == nil {
		order.Items = []domain.Item{}
	}
}

// track — метрики операции. notFound вызывается только при успешном исходе.
func track(op string, start time.Time, errp *error, notFound func() bool) {
	metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	result := "ok"
	switch {
	case errors.Is(*errp, domain.ErrDuplicateOrder):
		result = "conflict"
	case *errp != nil:
		result = "error"
	case notFound != nil && notFound():
		result = "not_found"
	}
	metrics.StoreOps.WithLabelValues(op, result).Inc()
}
