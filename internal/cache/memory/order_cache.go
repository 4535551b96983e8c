// Пакет memory — in-memory кэш заказов (LRU + TTL) перед хранилищем.
package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/Gunvolt24/orderstore/internal/domain"
	"github.com/Gunvolt24/orderstore/internal/ports"
	"github.com/Gunvolt24/orderstore/pkg/metrics"
)

var _ ports.OrderCache = (*LRUCacheTTL)(nil)

// genStripes — число счётчиков поколений (степень двойки); ключи распределяются по хешу.
const genStripes = 256

type entry struct {
	id        string
	order     *domain.Order
	expiresAt time.Time
}

// LRUCacheTTL — потокобезопасный LRU с TTL; ключ — бизнес-ключ заказа.
// ttl <= 0 — записи не истекают. Наружу всегда отдаются копии.
//
// Delete увеличивает поколение ключа. Заполнение после чтения из БД идёт через
// SetIfGeneration: снимок, прочитанный до удаления/обновления, в кэш уже не попадёт.
type LRUCacheTTL struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[string]*list.Element
	gens  [genStripes]uint64

	mu sync.Mutex
}

// NewLRUCacheTTL — capacity < 1 приводится к 1.
func NewLRUCacheTTL(capacity int, ttl time.Duration) *LRUCacheTTL {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCacheTTL{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

func (c *LRUCacheTTL) Get(_ context.Context, orderID string) (*domain.Order, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[orderID]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		return nil, false
	}
	c.ll.MoveToFront(elem)

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return ent.order.Clone(), true
}

// Set — безусловная запись (прогрев при старте). Чтения, конкурирующие с записью
// в хранилище, должны использовать SetIfGeneration.
func (c *LRUCacheTTL) Set(_ context.Context, order *domain.Order) error {
	if order == nil || order.OrderID == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(order, time.Now())
	return nil
}

// Generation — текущее поколение ключа; снимать до чтения заказа из хранилища.
func (c *LRUCacheTTL) Generation(_ context.Context, orderID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[stripe(orderID)]
}

// SetIfGeneration — записывает заказ, только если с момента Generation ключ не удаляли.
// false — запись отброшена как устаревшая.
func (c *LRUCacheTTL) SetIfGeneration(_ context.Context, order *domain.Order, gen uint64) (bool, error) {
	if order == nil || order.OrderID == "" {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[stripe(order.OrderID)] != gen {
		metrics.CacheOps.WithLabelValues("stale").Inc()
		return false, nil
	}
	c.store(order, time.Now())
	return true, nil
}

// store — вызывается под c.mu.
func (c *LRUCacheTTL) store(order *domain.Order, now time.Time) {
	if elem, ok := c.index[order.OrderID]; ok {
		ent := elem.Value.(*entry)
		ent.order = order.Clone()
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return
	}

	c.pruneExpiredFromBack(now)

	c.index[order.OrderID] = c.ll.PushFront(&entry{
		id:        order.OrderID,
		order:     order.Clone(),
		expiresAt: c.expiryFrom(now),
	})
	metrics.CacheSize.Set(float64(len(c.index)))

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
}

// Delete — отсутствие ключа не ошибка; поколение увеличивается в любом случае.
func (c *LRUCacheTTL) Delete(_ context.Context, orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[stripe(orderID)]++
	if elem, ok := c.index[orderID]; ok {
		c.removeElement(elem)
		metrics.CacheOps.WithLabelValues("deleted").Inc()
	}
}

// WarmUp — загрузка пачки заказов; прерывается при отмене контекста.
// Порядок входа: первые элементы считаются самыми свежими.
func (c *LRUCacheTTL) WarmUp(ctx context.Context, orders []*domain.Order) error {
	for i := len(orders) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Set(ctx, orders[i]); err != nil {
			return err
		}
	}
	return nil
}

func stripe(orderID string) uint64 {
	return xxhash.Sum64String(orderID) & (genStripes - 1)
}

// Len — текущее число записей (включая ещё не вычищенные истёкшие).
func (c *LRUCacheTTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
