package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User представляет сущность пользователя в системе.
// Состояние меняется только через методы сущности, каждое изменение
// записывает доменное событие во внутренний буфер.
type User struct {
	OID          uuid.UUID
	Email        Email
	Username     Username
	UTCOffset    UTCOffset
	IsSubscribed bool
	IsDeleted    bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	events []Event
}

func now() time.Time {
	// Postgres хранит микросекунды, округляем сразу, чтобы значения совпадали после чтения.
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NewUser создает нового пользователя и записывает событие создания.
// Для подписанного пользователя дополнительно записывается событие подписки.
func NewUser(username Username, email Email, offset UTCOffset, isSubscribed bool) *User {
	at := now()
	u := &User{
		OID:          uuid.New(),
		Email:        email,
		Username:     username,
		UTCOffset:    offset,
		IsSubscribed: isSubscribed,
		CreatedAt:    at,
		UpdatedAt:    at,
	}

	u.record(EventUserCreated, at)
	if isSubscribed {
		u.record(EventUserSubscribed, at)
	}

	return u
}

// Rehydrate восстанавливает пользователя из хранилища без событий.
func Rehydrate(
	oid uuid.UUID,
	username Username,
	email Email,
	offset UTCOffset,
	isSubscribed, isDeleted bool,
	deletedAt *time.Time,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		OID:          oid,
		Email:        email,
		Username:     username,
		UTCOffset:    offset,
		IsSubscribed: isSubscribed,
		IsDeleted:    isDeleted,
		DeletedAt:    deletedAt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// ChangeUsername меняет имя пользователя.
func (u *User) ChangeUsername(username Username) error {
	if u.IsDeleted {
		return ErrUserDeleted
	}

	old := u.Username
	at := now()
	u.Username = username
	u.UpdatedAt = at

	e := newEvent(EventUsernameChanged, u, at)
	e.OldUsername = old.String()
	e.NewUsername = username.String()
	u.events = append(u.events, e)

	return nil
}

// Subscribe включает ежедневные напоминания. Всегда записывает ровно одно событие.
func (u *User) Subscribe() error {
	if u.IsDeleted {
		return ErrUserDeleted
	}

	at := now()
	u.IsSubscribed = true
	u.UpdatedAt = at
	u.record(EventUserSubscribed, at)

	return nil
}

// Unsubscribe выключает ежедневные напоминания. Всегда записывает ровно одно событие.
func (u *User) Unsubscribe() error {
	if u.IsDeleted {
		return ErrUserDeleted
	}

	at := now()
	u.IsSubscribed = false
	u.UpdatedAt = at
	u.record(EventUserUnsubscribed, at)

	return nil
}

// Delete помечает пользователя удаленным. Остальные поля не меняются,
// поэтому последующий Restore возвращает их в прежнее состояние.
func (u *User) Delete() error {
	if u.IsDeleted {
		return ErrUserDeleted
	}

	at := now()
	u.IsDeleted = true
	u.DeletedAt = &at
	u.record(EventUserDeleted, at)

	return nil
}

// Restore снимает пометку удаления.
func (u *User) Restore() error {
	if !u.IsDeleted {
		return ErrUserNotDeleted
	}

	u.IsDeleted = false
	u.DeletedAt = nil
	u.record(EventUserRestored, now())

	return nil
}

// PullEvents отдает накопленные события и очищает буфер.
func (u *User) PullEvents() []Event {
	events := u.events
	u.events = nil
	return events
}

func (u *User) record(kind EventKind, at time.Time) {
	u.events = append(u.events, newEvent(kind, u, at))
}

// UserFilter задает параметры выборки списка пользователей.
type UserFilter struct {
	Limit        int
	Offset       int
	IsSubscribed *bool
}

const (
	DefaultUsersLimit = 20
	MaxUsersLimit     = 100
)

// Validate проверяет параметры пагинации, нулевой лимит заменяется значением по умолчанию.
func (f UserFilter) Validate() (UserFilter, error) {
	if f.Limit == 0 {
		f.Limit = DefaultUsersLimit
	}
	if f.Limit < 1 || f.Limit > MaxUsersLimit || f.Offset < 0 {
		return f, ErrInvalidPagination
	}
	return f, nil
}

// UserRepository определяет контракт для работы с хранилищем пользователей.
// Ошибки инфраструктуры оборачивают ErrRepository.
type UserRepository interface {
	// GetByOID возвращает пользователя, в том числе удаленного.
	GetByOID(ctx context.Context, oid uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email Email) (*User, error)
	GetByUsername(ctx context.Context, username Username) (*User, error)
	GetAll(ctx context.Context, filter UserFilter) ([]*User, int, error)
	GetAllSubscribed(ctx context.Context) ([]*User, error)
	Add(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, user *User) error
	Restore(ctx context.Context, user *User) error
	CheckExists(ctx context.Context, email Email, username Username) (bool, error)
	GetExistingUsernames(ctx context.Context, usernames ...Username) ([]Username, error)
}
