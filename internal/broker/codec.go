package broker

import (
	"encoding/json"
	"fmt"
	"time"

	"user-account-service/internal/domain"

	"github.com/google/uuid"
)

// EventMessage задает JSON-представление события в брокере.
type EventMessage struct {
	EventID      string    `json:"event_id"`
	Kind         string    `json:"kind"`
	OccurredAt   time.Time `json:"occurred_at"`
	UserOID      string    `json:"user_oid"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	UTCOffset    string    `json:"utc_offset"`
	IsSubscribed bool      `json:"is_subscribed"`
	OldUsername  string    `json:"old_username,omitempty"`
	NewUsername  string    `json:"new_username,omitempty"`
}

// EncodeEvent сериализует доменное событие.
func EncodeEvent(e domain.Event) ([]byte, error) {
	return json.Marshal(EventMessage{
		EventID:      e.ID.String(),
		Kind:         string(e.Kind),
		OccurredAt:   e.OccurredAt.UTC(),
		UserOID:      e.UserOID.String(),
		Username:     e.Username,
		Email:        e.Email,
		UTCOffset:    e.UTCOffset.String(),
		IsSubscribed: e.IsSubscribed,
		OldUsername:  e.OldUsername,
		NewUsername:  e.NewUsername,
	})
}

// DecodeEvent восстанавливает доменное событие из сообщения.
func DecodeEvent(data []byte) (domain.Event, error) {
	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return domain.Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	kind := domain.EventKind(msg.Kind)
	if !kind.Valid() {
		return domain.Event{}, fmt.Errorf("unknown event kind %q", msg.Kind)
	}

	id, err := uuid.Parse(msg.EventID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("invalid event id: %w", err)
	}

	oid, err := uuid.Parse(msg.UserOID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("invalid user oid: %w", err)
	}

	var offset domain.UTCOffset
	if msg.UTCOffset != "" {
		if offset, err = domain.ParseUTCOffset(msg.UTCOffset); err != nil {
			return domain.Event{}, err
		}
	}

	return domain.Event{
		ID:           id,
		Kind:         kind,
		OccurredAt:   msg.OccurredAt,
		UserOID:      oid,
		Username:     msg.Username,
		Email:        msg.Email,
		UTCOffset:    offset,
		IsSubscribed: msg.IsSubscribed,
		OldUsername:  msg.OldUsername,
		NewUsername:  msg.NewUsername,
	}, nil
}
