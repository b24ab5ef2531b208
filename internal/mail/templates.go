package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"user-account-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	reminderSubject = "Ежедневное напоминание"
	otpSubject      = "Код подтверждения входа"
	sentAtLayout    = "02.01.2006 15:04"
)

// Links содержит адреса, которые подставляются в письма.
type Links struct {
	MainPageURL    string
	UnsubscribeURL string
	ConfirmURL     string
}

// Composer собирает письма из встроенных html-шаблонов.
type Composer struct {
	links    Links
	reminder *template.Template
	otp      *template.Template
}

func NewComposer(links Links) (*Composer, error) {
	reminder, err := template.ParseFS(templateFS, "templates/layout.html", "templates/reminder.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse reminder template: %w", err)
	}

	otp, err := template.ParseFS(templateFS, "templates/layout.html", "templates/otp.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse otp template: %w", err)
	}

	return &Composer{links: links, reminder: reminder, otp: otp}, nil
}

// Reminder собирает ежедневное напоминание. Время отправки показывается
// в часовом поясе пользователя.
func (c *Composer) Reminder(user domain.ReminderRecipient, at time.Time) (string, string, error) {
	unsubscribe, err := url.JoinPath(c.links.UnsubscribeURL, user.UserOID.String())
	if err != nil {
		return "", "", fmt.Errorf("invalid unsubscribe url: %w", err)
	}

	body, err := render(c.reminder, map[string]any{
		"Subject":        reminderSubject,
		"Username":       user.Username,
		"MainPageURL":    c.links.MainPageURL,
		"UnsubscribeURL": unsubscribe,
		"SentAt":         at.In(user.UTCOffset.Location()).Format(sentAtLayout),
	})
	if err != nil {
		return "", "", err
	}

	return reminderSubject, body, nil
}

// LoginCode собирает письмо с одноразовым кодом.
func (c *Composer) LoginCode(email domain.Email, code string, offset domain.UTCOffset, at time.Time) (string, string, error) {
	body, err := render(c.otp, map[string]any{
		"Subject":    otpSubject,
		"Email":      email.String(),
		"Code":       code,
		"ConfirmURL": c.links.ConfirmURL,
		"SentAt":     at.In(offset.Location()).Format(sentAtLayout),
	})
	if err != nil {
		return "", "", err
	}

	return otpSubject, body, nil
}

func render(t *template.Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("%w: failed to render template: %w", domain.ErrMailDataError, err)
	}
	return buf.String(), nil
}
