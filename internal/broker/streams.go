// Package broker публикует доменные события в Redis Streams и читает их
// через группу потребителей.
package broker

import (
	"context"
	"fmt"
	"time"

	"user-account-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Поля записи в стриме.
const (
	fieldKey   = "key"
	fieldTopic = "topic"
	fieldValue = "value"
)

// StreamBroker пишет сообщения в Redis Streams, один стрим на топик.
type StreamBroker struct {
	client  redis.UniversalClient
	timeout time.Duration
	maxLen  int64
}

// NewStreamBroker создает брокер. timeout ограничивает одну публикацию,
// maxLen (если > 0) задает приблизительную длину стрима.
func NewStreamBroker(client redis.UniversalClient, timeout time.Duration, maxLen int64) *StreamBroker {
	return &StreamBroker{
		client:  client,
		timeout: timeout,
		maxLen:  maxLen,
	}
}

// Send добавляет сообщение в стрим topic. Повторов нет, ошибку обрабатывает вызывающий.
func (b *StreamBroker) Send(ctx context.Context, topic string, key, value []byte) error {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	args := &redis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			fieldKey:   string(key),
			fieldTopic: topic,
			fieldValue: string(value),
		},
	}
	if b.maxLen > 0 {
		args.MaxLen = b.maxLen
		args.Approx = true
	}

	if err := b.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("%w: xadd %s: %w", domain.ErrBrokerUnavailable, topic, err)
	}

	return nil
}
