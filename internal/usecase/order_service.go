package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/orderstore/internal/domain"
	"github.com/Gunvolt24/orderstore/internal/mapper"
	"github.com/Gunvolt24/orderstore/internal/ports"
	"github.com/Gunvolt24/orderstore/pkg/validate"
)

// Проверка, что OrderService удовлетворяет интерфейсу OrderService.
var _ ports.OrderService = (*OrderService)(nil)

// OrderService — прикладная логика работы с заказами (без знаний о транспорте).
// Порядок для записи: валидация -> маппинг -> хранилище -> маппинг ответа.
type OrderService struct {
	repo      ports.OrderRepository
	cache     ports.OrderCache
	log       ports.Logger
	validator ports.OrderValidator
}

// NewOrderService — DI-конструктор.
func NewOrderService(
	repo ports.OrderRepository,
	cache ports.OrderCache,
	log ports.Logger,
	validator ports.OrderValidator,
) *OrderService {
	return &OrderService{
		repo:      repo,
		cache:     cache,
		log:       log,
		validator: validator,
	}
}

// CreateOrder — создать заказ. Ошибки: validate.ErrInvalidOrder, domain.ErrMalformedField,
// domain.ErrDuplicateOrder, domain.ErrPersistence.
func (s *OrderService) CreateOrder(ctx context.Context, req *mapper.OrderRequest) (*mapper.OrderResponse, error) {
	if err := s.validator.ValidateCreate(ctx, req); err != nil {
		s.log.Warnf(ctx, "validation failed err=%v", err)
		return nil, err
	}
	order, err := mapper.ToInternal(req)
	if err != nil {
		s.log.Warnf(ctx, "mapping failed order_id=%s err=%v", req.BusinessOrderID, err)
		return nil, err
	}

	// Начатую запись доводим до конца, даже если клиент ушёл.
	writeCtx := context.WithoutCancel(ctx)
	gen := s.cache.Generation(writeCtx, order.OrderID)

	created, err := s.repo.Create(writeCtx, order)
	if err != nil {
		if domain.IsDuplicate(err) {
			s.log.Warnf(ctx, "duplicate order_id=%s", order.OrderID)
		} else {
			s.log.Errorf(ctx, "repo.Create failed order_id=%s err=%v", order.OrderID, err)
		}
		return nil, err
	}

	s.fillCache(writeCtx, created, gen)

	s.log.Infof(ctx, "order created order_id=%s items=%d", created.OrderID, len(created.Items))
	return mapper.ToExternal(created), nil
}

// GetOrder — получить заказ: сначала из кэша, при промахе — из БД с записью в кэш.
// Возвращает (nil, nil), если записи нет. Поколение ключа снимается до чтения из БД:
// если заказ успели обновить или удалить, прочитанный снимок в кэш не попадёт.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*mapper.OrderResponse, error) {
	if order, found := s.cache.Get(ctx, orderID); found {
		s.log.Infof(ctx, "cache hit for order=%s", orderID)
		return mapper.ToExternal(order), nil
	}
	s.log.Infof(ctx, "cache miss for order=%s", orderID)

	start := time.Now()
	gen := s.cache.Generation(ctx, orderID)
	order, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByOrderID failed order_id=%s err=%v", orderID, err)
		return nil, err
	}
	if order == nil {
		return nil, nil
	}

	s.fillCache(ctx, order, gen)

	s.log.Infof(ctx, "db fetch order_id=%s took=%s", orderID, time.Since(start))
	return mapper.ToExternal(order), nil
}

// fillCache — ошибка кэша не влияет на результат операции.
func (s *OrderService) fillCache(ctx context.Context, order *domain.Order, gen uint64) {
	stored, err := s.cache.SetIfGeneration(ctx, order, gen)
	switch {
	case err != nil:
		s.log.Warnf(ctx, "cache.SetIfGeneration failed order_id=%s err=%v", order.OrderID, err)
	case !stored:
		s.log.Infof(ctx, "cache fill skipped order_id=%s: changed concurrently", order.OrderID)
	}
}

// ListOrders — все заказы, новые первыми. Всегда из БД: кэш не знает полного набора.
func (s *OrderService) ListOrders(ctx context.Context) ([]*mapper.OrderResponse, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		s.log.Errorf(ctx, "repo.List failed err=%v", err)
		return nil, err
	}
	return mapper.ToExternalList(orders), nil
}

// UpdateOrder — заменить заказ orderID. businessOrderId из тела не используется:
// ключ берётся из пути. (nil, nil) — заказа нет.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, req *mapper.OrderRequest) (*mapper.OrderResponse, error) {
	if err := s.validator.ValidateUpdate(ctx, req); err != nil {
		s.log.Warnf(ctx, "validation failed order_id=%s err=%v", orderID, err)
		return nil, err
	}
	order, err := mapper.ToInternal(req)
	if err != nil {
		s.log.Warnf(ctx, "mapping failed order_id=%s err=%v", orderID, err)
		return nil, err
	}

	writeCtx := context.WithoutCancel(ctx)

	updated, err := s.repo.Update(writeCtx, orderID, order)
	if err != nil {
		s.log.Errorf(ctx, "repo.Update failed order_id=%s err=%v", orderID, err)
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	s.cache.Delete(writeCtx, orderID)
	s.log.Infof(ctx, "order updated order_id=%s items=%d", orderID, len(updated.Items))
	return mapper.ToExternal(updated), nil
}

// DeleteOrder — false, если удалять было нечего.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) (bool, error) {
	writeCtx := context.WithoutCancel(ctx)

	deleted, err := s.repo.Delete(writeCtx, orderID)
	if err != nil {
		s.log.Errorf(ctx, "repo.Delete failed order_id=%s err=%v", orderID, err)
		return false, err
	}
	s.cache.Delete(writeCtx, orderID)

	if deleted {
		s.log.Infof(ctx, "order deleted order_id=%s", orderID)
	}
	return deleted, nil
}

// SaveFromMessage — сохранить заказ, пришедший из Kafka (raw JSON).
//  1. строгий парсинг JSON (DisallowUnknownFields);
//  2. валидация, маппинг и создание — как у CreateOrder.
func (s *OrderService) SaveFromMessage(ctx context.Context, raw []byte) error {
	req, err := validate.DecodeOrderRequest(raw)
	if err != nil {
		s.log.Warnf(ctx, "invalid message err=%v", err)
		return err
	}
	if _, err := s.CreateOrder(ctx, req); err != nil {
		return fmt.Errorf("save order %s: %w", req.BusinessOrderID, err)
	}
	return nil
}

// WarmUpCache — прогрев кэша последними N заказами из БД.
// Если n <= 0, прогрев не выполняется (но это не ошибка).
func (s *OrderService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	list, err := s.repo.LastN(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "repo.LastN failed n=%d err=%v", n, err)
		return err
	}
	if warmUpErr := s.cache.WarmUp(ctx, list); warmUpErr != nil {
		s.log.Warnf(ctx, "cache.WarmUp failed err=%v", warmUpErr)
	}
	s.log.Infof(ctx, "cache warmed with %d orders in %s", len(list), time.Since(start))
	return nil
}

// Ping — доступность хранилища.
func (s *OrderService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
