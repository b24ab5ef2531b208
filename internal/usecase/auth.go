package usecase

import (
	"context"
	"fmt"
	"time"

	"user-account-service/internal/domain"
)

// Login запрашивает одноразовый код входа на email.
type Login struct {
	Email string
}

// ConfirmLogin проверяет код и возвращает пользователя.
type ConfirmLogin struct {
	Email string
	Code  string
}

type AuthCommands struct {
	users    domain.UserRepository
	otp      domain.OTPService
	sender   domain.MailSender
	composer domain.MailComposer
	now      func() time.Time
}

func NewAuthCommands(
	users domain.UserRepository,
	otp domain.OTPService,
	sender domain.MailSender,
	composer domain.MailComposer,
) *AuthCommands {
	return &AuthCommands{
		users:    users,
		otp:      otp,
		sender:   sender,
		composer: composer,
		now:      time.Now,
	}
}

// Login выдает новый код (старый код при этом перестает действовать) и отправляет его письмом.
func (h *AuthCommands) Login(ctx context.Context, cmd Login) (struct{}, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return struct{}{}, err
	}

	user, err := h.users.GetByEmail(ctx, email)
	if err != nil {
		return struct{}{}, err
	}

	code, err := h.otp.Generate(ctx, user.Email)
	if err != nil {
		return struct{}{}, err
	}

	subject, body, err := h.composer.LoginCode(user.Email, code, user.UTCOffset, h.now())
	if err != nil {
		return struct{}{}, err
	}

	if err := h.sender.Send(ctx, user.Email.String(), subject, body); err != nil {
		return struct{}{}, fmt.Errorf("failed to send login code: %w", err)
	}

	return struct{}{}, nil
}

// ConfirmLogin погашает код. Повторная проверка того же кода вернет ErrOTPNotFound.
func (h *AuthCommands) ConfirmLogin(ctx context.Context, cmd ConfirmLogin) (*domain.User, error) {
	email, err := domain.NewEmail(cmd.Email)
	if err != nil {
		return nil, err
	}

	if err := h.otp.Validate(ctx, cmd.Code, email); err != nil {
		return nil, err
	}

	return h.users.GetByEmail(ctx, email)
}
