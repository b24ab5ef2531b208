package usecase

import (
	"context"

	"user-account-service/internal/domain"
	"user-account-service/internal/mediator"

	"github.com/google/uuid"
)

// UserUseCase реализует бизнес-логику для работы с пользователями поверх медиатора.
type UserUseCase struct {
	mediator *mediator.Mediator
}

// NewUserUseCase создает новый экземпляр UserUseCase.
func NewUserUseCase(m *mediator.Mediator) domain.UserUseCase {
	return &UserUseCase{mediator: m}
}

// CreateUser регистрирует пользователя.
func (uc *UserUseCase) CreateUser(ctx context.Context, username, email, utcOffset string, isSubscribed bool) (*domain.User, error) {
	return mediator.Send[*domain.User](ctx, uc.mediator, CreateUser{
		Username:     username,
		Email:        email,
		UTCOffset:    utcOffset,
		IsSubscribed: isSubscribed,
	})
}

// GetUser возвращает неудаленного пользователя по OID.
func (uc *UserUseCase) GetUser(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	return mediator.Ask[*domain.User](ctx, uc.mediator, GetUserByID{UserOID: oid})
}

func (uc *UserUseCase) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return mediator.Ask[*domain.User](ctx, uc.mediator, GetUserByUsername{Username: username})
}

// ListUsers возвращает страницу пользователей и их общее число.
func (uc *UserUseCase) ListUsers(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	page, err := mediator.Ask[UsersPage](ctx, uc.mediator, GetUsers{Filter: filter})
	if err != nil {
		return nil, 0, err
	}
	return page.Users, page.Total, nil
}

func (uc *UserUseCase) ChangeUsername(ctx context.Context, oid uuid.UUID, username string) (*domain.User, error) {
	return mediator.Send[*domain.User](ctx, uc.mediator, ChangeUsername{UserOID: oid, NewUsername: username})
}

func (uc *UserUseCase) Subscribe(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	return mediator.Send[*domain.User](ctx, uc.mediator, Subscribe{UserOID: oid})
}

func (uc *UserUseCase) Unsubscribe(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	return mediator.Send[*domain.User](ctx, uc.mediator, Unsubscribe{UserOID: oid})
}

// DeleteUser мягко удаляет пользователя.
func (uc *UserUseCase) DeleteUser(ctx context.Context, oid uuid.UUID) error {
	_, err := mediator.Send[*domain.User](ctx, uc.mediator, DeleteUser{UserOID: oid})
	return err
}

// RestoreUser восстанавливает удаленного пользователя.
func (uc *UserUseCase) RestoreUser(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	return mediator.Send[*domain.User](ctx, uc.mediator, RestoreUser{UserOID: oid})
}

// AuthUseCase реализует вход по одноразовому коду.
type AuthUseCase struct {
	mediator *mediator.Mediator
}

func NewAuthUseCase(m *mediator.Mediator) domain.AuthUseCase {
	return &AuthUseCase{mediator: m}
}

func (uc *AuthUseCase) Login(ctx context.Context, email string) error {
	_, err := mediator.Send[struct{}](ctx, uc.mediator, Login{Email: email})
	return err
}

// ConfirmLogin проверяет код и выпускает токены для пользователя.
func (uc *AuthUseCase) ConfirmLogin(ctx context.Context, email, code string) (*domain.User, domain.Tokens, error) {
	user, err := mediator.Send[*domain.User](ctx, uc.mediator, ConfirmLogin{Email: email, Code: code})
	if err != nil {
		return nil, domain.Tokens{}, err
	}

	tokens, err := mediator.Ask[domain.Tokens](ctx, uc.mediator, GetTokens{UserOID: user.OID})
	if err != nil {
		return nil, domain.Tokens{}, err
	}

	return user, tokens, nil
}

// RefreshLogin выпускает новую пару токенов по действующему refresh-токену.
func (uc *AuthUseCase) RefreshLogin(ctx context.Context, refreshToken string) (*domain.User, domain.Tokens, error) {
	user, err := mediator.Ask[*domain.User](ctx, uc.mediator, GetUserByRefreshToken{RefreshToken: refreshToken})
	if err != nil {
		return nil, domain.Tokens{}, err
	}

	tokens, err := mediator.Ask[domain.Tokens](ctx, uc.mediator, GetTokens{UserOID: user.OID})
	if err != nil {
		return nil, domain.Tokens{}, err
	}

	return user, tokens, nil
}
