package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/orderstore/internal/ports"
	"github.com/Gunvolt24/orderstore/pkg/metrics"
)

//go:generate mockgen -source=consumer.go -destination=mocks/mock_consumer.go -package=mocks

var _ ports.MessageConsumer = (*Consumer)(nil)

// reader — то, что консьюмер использует от kafka.Reader.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// messageSaver — usecase, который разбирает JSON заказа, валидирует его и создаёт запись.
type messageSaver interface {
	SaveFromMessage(ctx context.Context, raw []byte) error
}

// Consumer — приём заказов из топика с ручным коммитом оффсетов.
type Consumer struct {
	reader  reader
	service messageSaver
	log     ports.Logger

	processTimeout time.Duration // лимит на обработку одного сообщения
	fetchRetry     *retryPolicy  // задержки между неудачными FetchMessage
	processRetry   *retryPolicy  // задержки между повторами одного и того же сообщения

	closeOnce sync.Once
}

// NewConsumer — reader создаётся сразу; незаданные таймауты заменяются значениями по умолчанию.
func NewConsumer(cfg *ConsumerConfig, service messageSaver, log ports.Logger) *Consumer {
	retryInitial := orDefault(cfg.RetryInitial, time.Second)
	retryMax := orDefault(cfg.RetryMax, 30*time.Second)
	seed := time.Now().UnixNano()

	return &Consumer{
		reader:         kafka.NewReader(cfg.ReaderConfig()),
		service:        service,
		log:            log,
		processTimeout: orDefault(cfg.ProcessTimeout, 5*time.Second),
		fetchRetry:     newRetryPolicy(retryInitial, retryMax, seed),
		processRetry:   newRetryPolicy(min(retryInitial, 500*time.Millisecond), retryMax, seed+1),
	}
}

// Run читает топик до отмены ctx. Гарантия at-least-once:
// оффсет коммитится после успешного сохранения или после постоянной ошибки
// (битый JSON, невалидный заказ, дубликат). Временная ошибка повторяет то же сообщение
// с backoff; следующее сообщение не читается, пока текущее не закоммичено.
// Коммит в Kafka кумулятивен, поэтому пропуск вперёд потерял бы сообщение.
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := c.fetchRetry.next()
			c.log.Warnf(ctx, "fetch failed topic=%s: %v (will retry in %s)", rc.Topic, err, wait)
			if !sleepCtx(ctx, wait) {
				return ctx.Err()
			}
			continue
		}

		c.fetchRetry.reset()
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if err := c.process(ctx, rc.Topic, &msg); err != nil {
			return err
		}
	}
}

// process — обрабатывает msg до коммита; ошибка только при отмене ctx
// (оффсет не закоммичен, сообщение придёт снова после перезапуска).
func (c *Consumer) process(ctx context.Context, topic string, msg *kafka.Message) error {
	c.processRetry.reset()
	for {
		if c.handleMessage(ctx, topic, msg) {
			c.commit(ctx, msg)
			return nil
		}
		wait := c.processRetry.next()
		if !sleepCtx(ctx, wait) {
			c.log.Warnf(ctx, "stop retrying offset=%d: %v", msg.Offset, ctx.Err())
			return ctx.Err()
		}
	}
}

// Close закрывает reader; повторные вызовы ничего не делают.
func (c *Consumer) Close() (err error) {
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
