// Package mocks содержит testify-моки доменных интерфейсов для тестов.
package mocks

import (
	"context"
	"time"

	"user-account-service/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserRepository struct{ mock.Mock }

func (m *UserRepository) GetByOID(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, oid)
	return userArg(args, 0), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username domain.Username) (*domain.User, error) {
	args := m.Called(ctx, username)
	return userArg(args, 0), args.Error(1)
}

func (m *UserRepository) GetAll(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Int(1), args.Error(2)
}

func (m *UserRepository) GetAllSubscribed(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

func (m *UserRepository) Add(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Restore(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) CheckExists(ctx context.Context, email domain.Email, username domain.Username) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) GetExistingUsernames(ctx context.Context, usernames ...domain.Username) ([]domain.Username, error) {
	args := m.Called(ctx, usernames)
	existing, _ := args.Get(0).([]domain.Username)
	return existing, args.Error(1)
}

type EventPublisher struct{ mock.Mock }

func (m *EventPublisher) Publish(ctx context.Context, events ...domain.Event) error {
	return m.Called(ctx, events).Error(0)
}

type MessageBroker struct{ mock.Mock }

func (m *MessageBroker) Send(ctx context.Context, topic string, key, value []byte) error {
	return m.Called(ctx, topic, key, value).Error(0)
}

type MailSender struct{ mock.Mock }

func (m *MailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	return m.Called(ctx, to, subject, htmlBody).Error(0)
}

type MailComposer struct{ mock.Mock }

func (m *MailComposer) Reminder(user domain.ReminderRecipient, at time.Time) (string, string, error) {
	args := m.Called(user, at)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MailComposer) LoginCode(email domain.Email, code string, offset domain.UTCOffset, at time.Time) (string, string, error) {
	args := m.Called(email, code, offset, at)
	return args.String(0), args.String(1), args.Error(2)
}

type OTPService struct{ mock.Mock }

func (m *OTPService) Generate(ctx context.Context, email domain.Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *OTPService) Validate(ctx context.Context, code string, email domain.Email) error {
	return m.Called(ctx, code, email).Error(0)
}

type TokenIssuer struct{ mock.Mock }

func (m *TokenIssuer) Issue(userOID uuid.UUID) (domain.Tokens, error) {
	args := m.Called(userOID)
	tokens, _ := args.Get(0).(domain.Tokens)
	return tokens, args.Error(1)
}

func (m *TokenIssuer) VerifyRefresh(token string) (uuid.UUID, error) {
	args := m.Called(token)
	oid, _ := args.Get(0).(uuid.UUID)
	return oid, args.Error(1)
}

type UserUseCase struct{ mock.Mock }

func (m *UserUseCase) CreateUser(ctx context.Context, username, email, utcOffset string, isSubscribed bool) (*domain.User, error) {
	args := m.Called(ctx, username, email, utcOffset, isSubscribed)
	return userArg(args, 0), args.Error(1)
}

func (m *UserUseCase) GetUser(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, oid)
	return userArg(args, 0), args.Error(1)
}

func (m *UserUseCase) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	return userArg(args, 0), args.Error(1)
}

func (m *UserUseCase) ListUsers(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Int(1), args.Error(2)
}

func (m *UserUseCase) ChangeUsername(ctx context.Context, oid uuid.UUID, username string) (*domain.User, error) {
	args := m.Called(ctx, oid, username)
	return userArg(args, 0), args.Error(1)
}

func (m *UserUseCase) Subscribe(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, oid)
	return userArg(args, 0), args.Error(1)
}

func (m *UserUseCase) Unsubscribe(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, oid)
	return userArg(args, 0), args.Error(1)
}

func (m *UserUseCase) DeleteUser(ctx context.Context, oid uuid.UUID) error {
	return m.Called(ctx, oid).Error(0)
}

func (m *UserUseCase) RestoreUser(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, oid)
	return userArg(args, 0), args.Error(1)
}

type AuthUseCase struct{ mock.Mock }

func (m *AuthUseCase) Login(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *AuthUseCase) ConfirmLogin(ctx context.Context, email, code string) (*domain.User, domain.Tokens, error) {
	args := m.Called(ctx, email, code)
	tokens, _ := args.Get(1).(domain.Tokens)
	return userArg(args, 0), tokens, args.Error(2)
}

func (m *AuthUseCase) RefreshLogin(ctx context.Context, refreshToken string) (*domain.User, domain.Tokens, error) {
	args := m.Called(ctx, refreshToken)
	tokens, _ := args.Get(1).(domain.Tokens)
	return userArg(args, 0), tokens, args.Error(2)
}

func userArg(args mock.Arguments, i int) *domain.User {
	u, _ := args.Get(i).(*domain.User)
	return u
}
