package ports

import "context"

// MessageConsumer — фоновый приёмник заказов (Kafka).
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
