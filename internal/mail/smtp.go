// Package mail отправляет html-письма через SMTP и собирает их из шаблонов.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"user-account-service/internal/domain"
)

// SMTPConfig содержит параметры подключения к почтовому серверу.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	DialTimeout time.Duration
}

// SMTPSender отправляет каждое письмо в отдельном SMTP-сеансе.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send отправляет письмо. Ошибки сервера сводятся к ErrMailAuthFailed,
// ErrMailSenderRefused, ErrMailRecipientRefused и ErrMailDataError,
// а сетевые ошибки к ErrMailTransport.
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))

	dialer := net.Dialer{Timeout: s.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", domain.ErrMailTransport, addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: handshake: %w", domain.ErrMailTransport, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return fmt.Errorf("%w: starttls: %w", domain.ErrMailTransport, err)
		}
	}

	if s.cfg.Username != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrMailAuthFailed, err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrMailSenderRefused, s.cfg.From, err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrMailRecipientRefused, to, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMailDataError, err)
	}

	if _, err := w.Write(buildMessage(s.cfg.From, to, subject, htmlBody, time.Now())); err != nil {
		_ = w.Close()
		return fmt.Errorf("%w: %w", domain.ErrMailDataError, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMailDataError, err)
	}

	// письмо уже принято сервером
	_ = client.Quit()

	return nil
}

func buildMessage(from, to, subject, htmlBody string, at time.Time) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", at.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)

	return buf.Bytes()
}
