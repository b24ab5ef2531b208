package usecase

import (
	"context"
	"errors"
	"fmt"

	"user-account-service/internal/domain"

	"github.com/google/uuid"
)

type GetUserByID struct {
	UserOID uuid.UUID
}

type GetUserByUsername struct {
	Username string
}

type GetUsers struct {
	Filter domain.UserFilter
}

// UsersPage содержит страницу списка пользователей и общее число записей.
type UsersPage struct {
	Users []*domain.User
	Total int
}

type GetTokens struct {
	UserOID uuid.UUID
}

// GetUserByRefreshToken находит владельца refresh-токена.
type GetUserByRefreshToken struct {
	RefreshToken string
}

// UserQueries обрабатывает запросы чтения. Запросы не публикуют событий.
type UserQueries struct {
	users  domain.UserRepository
	tokens domain.TokenIssuer
}

func NewUserQueries(users domain.UserRepository, tokens domain.TokenIssuer) *UserQueries {
	return &UserQueries{
		users:  users,
		tokens: tokens,
	}
}

// GetUserByID возвращает пользователя. Удаленный пользователь считается ненайденным.
func (h *UserQueries) GetUserByID(ctx context.Context, q GetUserByID) (*domain.User, error) {
	user, err := h.users.GetByOID(ctx, q.UserOID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (h *UserQueries) GetUserByUsername(ctx context.Context, q GetUserByUsername) (*domain.User, error) {
	username, err := domain.NewUsername(q.Username)
	if err != nil {
		return nil, err
	}
	return h.users.GetByUsername(ctx, username)
}

func (h *UserQueries) GetUsers(ctx context.Context, q GetUsers) (UsersPage, error) {
	filter, err := q.Filter.Validate()
	if err != nil {
		return UsersPage{}, err
	}

	users, total, err := h.users.GetAll(ctx, filter)
	if err != nil {
		return UsersPage{}, err
	}

	return UsersPage{Users: users, Total: total}, nil
}

func (h *UserQueries) GetTokens(_ context.Context, q GetTokens) (domain.Tokens, error) {
	tokens, err := h.tokens.Issue(q.UserOID)
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("%w: %w", domain.ErrTokenIssue, err)
	}
	return tokens, nil
}

// GetUserByRefreshToken проверяет токен и возвращает его владельца.
// Токен удаленного пользователя недействителен.
func (h *UserQueries) GetUserByRefreshToken(ctx context.Context, q GetUserByRefreshToken) (*domain.User, error) {
	oid, err := h.tokens.VerifyRefresh(q.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := h.GetUserByID(ctx, GetUserByID{UserOID: oid})
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: user %s is gone", domain.ErrInvalidToken, oid)
	}
	return user, err
}
