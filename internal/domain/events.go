package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventKind задает тип доменного события пользователя.
type EventKind string

const (
	EventUserCreated      EventKind = "UserCreated"
	EventUsernameChanged  EventKind = "UsernameChanged"
	EventUserSubscribed   EventKind = "UserSubscribed"
	EventUserUnsubscribed EventKind = "UserUnsubscribed"
	EventUserRestored     EventKind = "UserRestored"
	EventUserDeleted      EventKind = "UserDeleted"
)

var eventTopics = map[EventKind]string{
	EventUserCreated:      "user-created",
	EventUsernameChanged:  "user-username-changed",
	EventUserSubscribed:   "user-subscribed",
	EventUserUnsubscribed: "user-unsubscribed",
	EventUserRestored:     "user-restored",
	EventUserDeleted:      "user-deleted",
}

// EventKinds возвращает все известные типы событий в стабильном порядке.
func EventKinds() []EventKind {
	return []EventKind{
		EventUserCreated,
		EventUsernameChanged,
		EventUserSubscribed,
		EventUserUnsubscribed,
		EventUserRestored,
		EventUserDeleted,
	}
}

// Topic возвращает имя топика брокера для типа события.
func (k EventKind) Topic() string {
	return eventTopics[k]
}

// Valid сообщает, известен ли тип события.
func (k EventKind) Valid() bool {
	_, ok := eventTopics[k]
	return ok
}

// Event описывает неизменяемую запись о смене состояния пользователя.
// Поля, не относящиеся к типу события, остаются нулевыми.
type Event struct {
	ID           uuid.UUID
	Kind         EventKind
	OccurredAt   time.Time
	UserOID      uuid.UUID
	Username     string
	Email        string
	UTCOffset    UTCOffset
	IsSubscribed bool
	OldUsername  string
	NewUsername  string
}

func newEvent(kind EventKind, u *User, at time.Time) Event {
	return Event{
		ID:           uuid.New(),
		Kind:         kind,
		OccurredAt:   at,
		UserOID:      u.OID,
		Username:     u.Username.String(),
		Email:        u.Email.String(),
		UTCOffset:    u.UTCOffset,
		IsSubscribed: u.IsSubscribed,
	}
}

// EventPublisher рассылает события зарегистрированным обработчикам.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// MessageBroker описывает долговременный упорядоченный журнал сообщений.
// Ошибки транспорта оборачивают ErrBrokerUnavailable.
type MessageBroker interface {
	Send(ctx context.Context, topic string, key, value []byte) error
}
