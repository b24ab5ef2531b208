package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OTPService выдает и проверяет одноразовые коды входа.
// На один email хранится не больше одного кода, новый код заменяет старый.
type OTPService interface {
	Generate(ctx context.Context, email Email) (string, error)
	Validate(ctx context.Context, code string, email Email) error
}

// MailSender отправляет html-письмо. Ошибки оборачивают ErrMail*.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MailComposer собирает тему и тело писем.
type MailComposer interface {
	Reminder(user ReminderRecipient, at time.Time) (subject, body string, err error)
	LoginCode(email Email, code string, offset UTCOffset, at time.Time) (subject, body string, err error)
}

// ReminderRecipient содержит данные получателя напоминания, снятые в момент планирования.
type ReminderRecipient struct {
	UserOID   uuid.UUID
	Username  string
	Email     string
	UTCOffset UTCOffset
}

// Tokens содержит пару токенов доступа.
type Tokens struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenIssuer выпускает токены для пользователя и проверяет refresh-токены.
// Ошибки проверки оборачивают ErrInvalidToken.
type TokenIssuer interface {
	Issue(userOID uuid.UUID) (Tokens, error)
	VerifyRefresh(token string) (uuid.UUID, error)
}
