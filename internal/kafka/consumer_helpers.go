package kafka

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/orderstore/internal/domain"
	"github.com/Gunvolt24/orderstore/pkg/metrics"
	"github.com/Gunvolt24/orderstore/pkg/validate"
)

// Причины отказа (метка reason метрики KafkaMessagesFailed).
const (
	reasonInvalid   = "invalid"
	reasonMalformed = "malformed"
	reasonDuplicate = "duplicate"
	reasonTransient = "transient"
)

// handleMessage обрабатывает одно сообщение и определяет нужно ли коммитить оффсет.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	ctxTimeout, cancel := context.WithTimeout(ctx, c.processTimeout)
	err := c.service.SaveFromMessage(ctxTimeout, msg.Value)
	cancel()

	if err == nil {
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	}

	reason, permanent := classify(err)
	metrics.KafkaMessagesFailed.WithLabelValues(topic, reason).Inc()
	if permanent {
		// Повтор не поможет: коммитим, чтобы не застрять на сообщении
		c.log.Warnf(ctx, "skip message offset=%d reason=%s: %v", msg.Offset, reason, err)
		return true
	}
	// БД/сеть/таймаут: НЕ коммитим, Run повторит это же сообщение
	c.log.Warnf(ctx, "process failed offset=%d: %v (will retry)", msg.Offset, err)
	return false
}

// classify — метка причины и признак постоянной ошибки.
func classify(err error) (reason string, permanent bool) {
	switch {
	case errors.Is(err, validate.ErrInvalidJSON), errors.Is(err, validate.ErrInvalidOrder):
		return reasonInvalid, true
	case domain.IsMalformed(err):
		return reasonMalformed, true
	case domain.IsDuplicate(err):
		// Повторная доставка уже сохранённого заказа
		return reasonDuplicate, true
	default:
		return reasonTransient, false
	}
}

// commit — ошибка коммита не останавливает цикл: сообщение придёт снова после ребаланса,
// а повтор сохранения закончится дубликатом и будет закоммичен.
func (c *Consumer) commit(ctx context.Context, msg *kafka.Message) {
	if err := c.reader.CommitMessages(ctx, *msg); err != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, err)
	}
}
