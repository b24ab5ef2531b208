package mail

import (
	"context"
	"errors"

	"user-account-service/internal/domain"

	"github.com/sirupsen/logrus"
)

// LogSender не отправляет письма, а пишет их в лог. Используется в разработке.
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"size":    len(htmlBody),
	}).Info("Mail sent to log")
	return nil
}

// MultiSender отправляет письмо через все вложенные транспорты.
// Ошибки не прерывают рассылку и возвращаются вместе.
type MultiSender struct {
	senders []domain.MailSender
}

func NewMultiSender(senders ...domain.MailSender) *MultiSender {
	return &MultiSender{senders: senders}
}

func (s *MultiSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	var errs []error
	for _, sender := range s.senders {
		if err := sender.Send(ctx, to, subject, htmlBody); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
