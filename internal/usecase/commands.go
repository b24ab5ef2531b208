package usecase

import (
	"context"
	"errors"
	"fmt"

	"user-account-service/internal/domain"

	"github.com/google/uuid"
)

// CreateUser создает пользователя. Пустой UTCOffset заменяется смещением по умолчанию.
type CreateUser struct {
	Username     string
	Email        string
	UTCOffset    string
	IsSubscribed bool
}

type ChangeUsername struct {
	UserOID     uuid.UUID
	NewUsername string
}

type Subscribe struct {
	UserOID uuid.UUID
}

type Unsubscribe struct {
	UserOID uuid.UUID
}

type DeleteUser struct {
	UserOID uuid.UUID
}

type RestoreUser struct {
	UserOID uuid.UUID
}

// UserCommands обрабатывает команды изменения пользователя.
// Каждая команда сохраняет изменения, затем публикует накопленные события.
// Ошибка публикации возвращается вызывающему, запись в хранилище при этом остается.
type UserCommands struct {
	users         domain.UserRepository
	publisher     domain.EventPublisher
	defaultOffset domain.UTCOffset
}

// NewUserCommands создает обработчики команд пользователя.
func NewUserCommands(users domain.UserRepository, publisher domain.EventPublisher, defaultOffset domain.UTCOffset) *UserCommands {
	return &UserCommands{
		users:         users,
		publisher:     publisher,
		defaultOffset: defaultOffset,
	}
}

func (h *UserCommands) CreateUser(ctx context.Context, cmd CreateUser) (*domain.User, error) {
	username, err := domain.NewUsername(cmd.Username)
	if err != nil {
		return nil, err
	}

	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	offset := h.defaultOffset
	if cmd.UTCOffset != "" {
		if offset, err = domain.ParseUTCOffset(cmd.UTCOffset); err != nil {
			return nil, err
		}
	}

	exists, err := h.users.CheckExists(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	user := domain.NewUser(username, email, offset, cmd.IsSubscribed)

	if err := h.users.Add(ctx, user); err != nil {
		return nil, err
	}

	return user, h.publish(ctx, user)
}

func (h *UserCommands) ChangeUsername(ctx context.Context, cmd ChangeUsername) (*domain.User, error) {
	username, err := domain.NewUsername(cmd.NewUsername)
	if err != nil {
		return nil, err
	}

	user, err := h.users.GetByOID(ctx, cmd.UserOID)
	if err != nil {
		return nil, err
	}

	if user.IsDeleted {
		return nil, domain.ErrUserDeleted
	}
	if user.Username == username {
		return user, nil
	}

	existing, err := h.users.GetExistingUsernames(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.ErrUsernameAlreadyExists
	}

	if err := user.ChangeUsername(username); err != nil {
		return nil, err
	}

	if err := h.users.Update(ctx, user); err != nil {
		// имя заняли между проверкой и записью
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, domain.ErrUsernameAlreadyExists
		}
		return nil, err
	}

	return user, h.publish(ctx, user)
}

func (h *UserCommands) Subscribe(ctx context.Context, cmd Subscribe) (*domain.User, error) {
	return h.mutate(ctx, cmd.UserOID, (*domain.User).Subscribe, h.users.Update)
}

func (h *UserCommands) Unsubscribe(ctx context.Context, cmd Unsubscribe) (*domain.User, error) {
	return h.mutate(ctx, cmd.UserOID, (*domain.User).Unsubscribe, h.users.Update)
}

func (h *UserCommands) DeleteUser(ctx context.Context, cmd DeleteUser) (*domain.User, error) {
	return h.mutate(ctx, cmd.UserOID, (*domain.User).Delete, h.users.Delete)
}

// RestoreUser снимает пометку удаления, если email и username за это время
// не занял другой пользователь.
func (h *UserCommands) RestoreUser(ctx context.Context, cmd RestoreUser) (*domain.User, error) {
	user, err := h.users.GetByOID(ctx, cmd.UserOID)
	if err != nil {
		return nil, err
	}

	if err := user.Restore(); err != nil {
		return nil, err
	}

	exists, err := h.users.CheckExists(ctx, user.Email, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	if err := h.users.Restore(ctx, user); err != nil {
		return nil, err
	}

	return user, h.publish(ctx, user)
}

func (h *UserCommands) mutate(
	ctx context.Context,
	oid uuid.UUID,
	change func(*domain.User) error,
	save func(context.Context, *domain.User) error,
) (*domain.User, error) {
	user, err := h.users.GetByOID(ctx, oid)
	if err != nil {
		return nil, err
	}

	if err := change(user); err != nil {
		return nil, err
	}

	if err := save(ctx, user); err != nil {
		return nil, err
	}

	return user, h.publish(ctx, user)
}

func (h *UserCommands) publish(ctx context.Context, user *domain.User) error {
	if err := h.publisher.Publish(ctx, user.PullEvents()...); err != nil {
		return fmt.Errorf("failed to publish events for user %s: %w", user.OID, err)
	}
	return nil
}
