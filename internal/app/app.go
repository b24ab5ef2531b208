// Package app собирает компоненты процессов из конфигурации.
// Все зависимости создаются явно при старте, глобального контейнера нет.
package app

import (
	"context"
	"fmt"
	"time"

	"user-account-service/internal/auth"
	"user-account-service/internal/broker"
	"user-account-service/internal/config"
	"user-account-service/internal/domain"
	"user-account-service/internal/mail"
	"user-account-service/internal/mediator"
	"user-account-service/internal/otp"
	"user-account-service/internal/scheduler"
	"user-account-service/internal/usecase"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// SchedulerTopics перечисляет топики, на которые реагирует планировщик напоминаний.
var SchedulerTopics = []string{
	domain.EventUserSubscribed.Topic(),
	domain.EventUserUnsubscribed.Topic(),
	domain.EventUserDeleted.Topic(),
	domain.EventUserRestored.Topic(),
}

// NewRedisClient подключается к Redis и проверяет соединение.
func NewRedisClient(cfg config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// NewMailSender выбирает способ отправки писем по MAIL_DRIVER.
func NewMailSender(cfg config.Config, logger *logrus.Logger) (domain.MailSender, error) {
	smtpSender := func() *mail.SMTPSender {
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			From:        cfg.SMTPFrom,
			DialTimeout: cfg.SMTPDialTimeout,
		})
	}

	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		return smtpSender(), nil
	case config.MailDriverLog:
		return mail.NewLogSender(logger), nil
	case config.MailDriverBoth:
		return mail.NewMultiSender(smtpSender(), mail.NewLogSender(logger)), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
	}
}

// NewComposer создает шаблоны писем со ссылками из конфигурации.
func NewComposer(cfg config.Config) (*mail.Composer, error) {
	return mail.NewComposer(mail.Links{
		MainPageURL:    cfg.MainPageURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
		ConfirmURL:     cfg.ConfirmURL,
	})
}

// API содержит зависимости HTTP-процесса.
type API struct {
	Mediator *mediator.Mediator
	Users    domain.UserUseCase
	Auth     domain.AuthUseCase
}

// NewAPI регистрирует команды и запросы, подписывает публикатор на все типы
// событий и проверяет, что медиатор собран полностью.
func NewAPI(
	cfg config.Config,
	users domain.UserRepository,
	redisClient redis.UniversalClient,
	sender domain.MailSender,
	composer domain.MailComposer,
) (*API, error) {
	defaultOffset, err := domain.ParseUTCOffset(cfg.DefaultUTCOffset)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UTC_OFFSET: %w", err)
	}

	m := mediator.New()

	usecase.Register(m, usecase.Dependencies{
		Users:            users,
		OTP:              otp.NewRedisService(redisClient, cfg.OTPTTL),
		Mail:             sender,
		Composer:         composer,
		Tokens:           auth.NewJWTIssuer(cfg.TokenSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		DefaultUTCOffset: defaultOffset,
	})

	publisher := broker.NewEventPublisher(broker.NewStreamBroker(redisClient, cfg.PublishTimeout, cfg.StreamMaxLen))
	for _, kind := range domain.EventKinds() {
		m.Subscribe(kind, publisher)
	}

	if err := m.Validate(usecase.Requests()...); err != nil {
		return nil, fmt.Errorf("mediator is not fully wired: %w", err)
	}

	return &API{
		Mediator: m,
		Users:    usecase.NewUserUseCase(m),
		Auth:     usecase.NewAuthUseCase(m),
	}, nil
}

// Reminders содержит зависимости процесса напоминаний.
type Reminders struct {
	Scheduler *scheduler.Scheduler
	Consumer  *broker.Consumer
}

// NewReminders создает планировщик и потребителя, который передает ему события.
func NewReminders(
	cfg config.Config,
	users domain.UserRepository,
	redisClient redis.UniversalClient,
	sender domain.MailSender,
	composer domain.MailComposer,
	logger *logrus.Logger,
) (*Reminders, error) {
	sendTime, err := scheduler.ParseClockTime(cfg.ReminderSendTime)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_SEND_TIME: %w", err)
	}

	sched := scheduler.New(users, sender, composer, logger, scheduler.Config{
		SendTime:    sendTime,
		Concurrency: cfg.MailConcurrency,
		SendTimeout: cfg.MailSendTimeout,
	})

	consumer := broker.NewConsumer(redisClient, sched, logger, broker.ConsumerConfig{
		Group:     cfg.StreamGroup,
		Consumer:  cfg.StreamConsumer,
		Topics:    SchedulerTopics,
		BatchSize: cfg.StreamBatchSize,
		Block:     cfg.StreamBlock,
	})

	return &Reminders{
		Scheduler: sched,
		Consumer:  consumer,
	}, nil
}

// Reschedule меняет время отправки и пересоздает задания. Работа выполняется
// в горутине потребителя, пока события не обрабатываются.
func (r *Reminders) Reschedule(ctx context.Context, sendTime scheduler.ClockTime) error {
	return r.Consumer.Do(ctx, func(ctx context.Context) error {
		r.Scheduler.SetSendTime(sendTime)
		return r.Scheduler.RescheduleAll(ctx)
	})
}
