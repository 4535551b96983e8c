//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// UniqueTopicAndGroup — уникальные topic/group для одного теста.
func UniqueTopicAndGroup(base string) (topic, group string) {
	suffix := strings.ToLower(UniqSuffix())
	return base + "-" + suffix, base + "-group-" + suffix
}

// EnsureTopic — создаёт топик (существующий — не ошибка) и ждёт его в метаданных.
func EnsureTopic(ctx context.Context, broker, topic string) error {
	addr := strings.TrimPrefix(strings.TrimSpace(strings.Split(broker, ",")[0]), "PLAINTEXT://")

	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	ctrl, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("controller: %w", err)
	}
	admin, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer admin.Close()

	err = admin.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("create topic: %w", err)
	}

	for deadline := time.Now().Add(10 * time.Second); ; {
		parts, err := conn.ReadPartitions(topic)
		if err == nil && len(parts) > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("topic %q not ready: %v", topic, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// ProduceJSON — публикует значения как JSON-сообщения (ключ — порядковый номер).
func ProduceJSON(ctx context.Context, brokers []string, topic string, values ...any) error {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireAll,
	}
	defer w.Close()

	msgs := make([]kafka.Message, 0, len(values))
	for i, v := range values {
		var payload []byte
		switch raw := v.(type) {
		case []byte:
			payload = raw
		case string:
			payload = []byte(raw)
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("marshal message %d: %w", i, err)
			}
			payload = b
		}
		msgs = append(msgs, kafka.Message{Key: []byte(strconv.Itoa(i)), Value: payload})
	}
	return w.WriteMessages(ctx, msgs...)
}
