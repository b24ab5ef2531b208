package broker

import (
	"context"
	"fmt"

	"user-account-service/internal/domain"
)

// EventPublisher обрабатывает доменные события и отправляет их в брокер.
// Ключом сообщения служит идентификатор события.
type EventPublisher struct {
	broker domain.MessageBroker
}

func NewEventPublisher(broker domain.MessageBroker) *EventPublisher {
	return &EventPublisher{broker: broker}
}

func (p *EventPublisher) Handle(ctx context.Context, event domain.Event) error {
	value, err := EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.ID, err)
	}

	return p.broker.Send(ctx, event.Kind.Topic(), []byte(event.ID.String()), value)
}
