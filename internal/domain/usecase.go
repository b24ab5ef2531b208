package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserUseCase определяет бизнес-логику для работы с пользователями.
type UserUseCase interface {
	CreateUser(ctx context.Context, username, email, utcOffset string, isSubscribed bool) (*User, error)
	GetUser(ctx context.Context, oid uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*User, int, error)
	ChangeUsername(ctx context.Context, oid uuid.UUID, username string) (*User, error)
	Subscribe(ctx context.Context, oid uuid.UUID) (*User, error)
	Unsubscribe(ctx context.Context, oid uuid.UUID) (*User, error)
	DeleteUser(ctx context.Context, oid uuid.UUID) error
	RestoreUser(ctx context.Context, oid uuid.UUID) (*User, error)
}

// AuthUseCase определяет вход по одноразовому коду.
type AuthUseCase interface {
	Login(ctx context.Context, email string) error
	ConfirmLogin(ctx context.Context, email, code string) (*User, Tokens, error)
	RefreshLogin(ctx context.Context, refreshToken string) (*User, Tokens, error)
}
