// Package scheduler держит ежедневные напоминания подписанных пользователей
// и сверяет их с событиями подписки из брокера.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"user-account-service/internal/domain"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Config содержит параметры планировщика.
type Config struct {
	// SendTime задает локальное время отправки напоминания для каждого пользователя.
	SendTime ClockTime
	// Concurrency ограничивает число одновременных отправок.
	Concurrency int64
	// SendTimeout ограничивает одну отправку.
	SendTimeout time.Duration
}

// Job описывает запланированное напоминание. Данные получателя фиксируются при планировании.
type Job struct {
	Recipient domain.ReminderRecipient
	// At хранит время срабатывания в UTC.
	At ClockTime

	entryID cron.EntryID
}

// Scheduler хранит таблицу "пользователь -> задание".
// Таблицу меняют только Start, HandleEvent, RescheduleAll и Stop;
// срабатывания читают копию задания и таблицу не трогают.
type Scheduler struct {
	repo     domain.UserRepository
	sender   domain.MailSender
	composer domain.MailComposer
	logger   *logrus.Logger

	mu       sync.Mutex
	sendTime ClockTime
	cron     *cron.Cron
	jobs     map[uuid.UUID]*Job
	// applied хранит время последнего примененного события по пользователю.
	// События не новее уже примененного пропускаются.
	applied map[uuid.UUID]time.Time

	sem         *semaphore.Weighted
	sendTimeout time.Duration
	fireCtx     context.Context
	cancelFire  context.CancelFunc
	now         func() time.Time
}

func New(
	repo domain.UserRepository,
	sender domain.MailSender,
	composer domain.MailComposer,
	logger *logrus.Logger,
	cfg Config,
) *Scheduler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	fireCtx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		repo:     repo,
		sender:   sender,
		composer: composer,
		logger:   logger,
		sendTime: cfg.SendTime,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cron.PrintfLogger(logger))),
		),
		jobs:        make(map[uuid.UUID]*Job),
		applied:     make(map[uuid.UUID]time.Time),
		sem:         semaphore.NewWeighted(cfg.Concurrency),
		sendTimeout: cfg.SendTimeout,
		fireCtx:     fireCtx,
		cancelFire:  cancel,
		now:         time.Now,
	}
}

// Start планирует всех подписанных пользователей из хранилища и запускает таймеры.
func (s *Scheduler) Start(ctx context.Context) error {
	users, err := s.repo.GetAllSubscribed(ctx)
	if err != nil {
		return fmt.Errorf("failed to load subscribed users: %w", err)
	}

	s.mu.Lock()
	s.load(users)
	count := len(s.jobs)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"jobs":      count,
		"send_time": s.sendTime.String(),
	}).Info("Reminder scheduler started")

	return nil
}

// Stop снимает все задания и ждет завершения текущих отправок.
// По истечении ctx незавершенные отправки отменяются.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	for oid := range s.jobs {
		s.cancel(oid)
	}
	s.mu.Unlock()

	defer s.cancelFire()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleEvent применяет событие к таблице заданий. Повторная доставка
// и доставка вне порядка не меняют результат.
func (s *Scheduler) HandleEvent(ctx context.Context, e domain.Event) error {
	switch e.Kind {
	case domain.EventUserSubscribed, domain.EventUserUnsubscribed,
		domain.EventUserDeleted, domain.EventUserRestored:
	default:
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.logger.WithFields(logrus.Fields{
		"event_id":   e.ID,
		"event_kind": e.Kind,
		"user_oid":   e.UserOID,
	})

	if last, ok := s.applied[e.UserOID]; ok && !e.OccurredAt.After(last) {
		entry.Debug("Skipping stale event")
		return nil
	}

	switch e.Kind {
	case domain.EventUserSubscribed, domain.EventUserRestored:
		if _, scheduled := s.jobs[e.UserOID]; scheduled {
			break
		}

		// состояние подписки берем из хранилища: событие могло устареть
		user, err := s.repo.GetByOID(ctx, e.UserOID)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("failed to confirm subscription: %w", err)
		}
		if user == nil || user.IsDeleted || !user.IsSubscribed {
			entry.Info("User is not subscribed anymore, nothing to schedule")
			break
		}

		if err := s.schedule(recipientOf(user)); err != nil {
			return err
		}
		entry.WithField("at_utc", s.jobs[e.UserOID].At.String()).Info("Reminder scheduled")

	case domain.EventUserUnsubscribed, domain.EventUserDeleted:
		if s.cancel(e.UserOID) {
			entry.Info("Reminder cancelled")
		}
	}

	s.applied[e.UserOID] = e.OccurredAt
	return nil
}

// RescheduleAll пересоздает все задания по данным хранилища
// с текущим временем отправки. Снимок хранилища верен только если между его
// чтением и применением не обрабатываются события, поэтому в работающем
// процессе вызов идет через broker.Consumer.Do.
func (s *Scheduler) RescheduleAll(ctx context.Context) error {
	users, err := s.repo.GetAllSubscribed(ctx)
	if err != nil {
		return fmt.Errorf("failed to load subscribed users: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for oid := range s.jobs {
		s.cancel(oid)
	}
	s.applied = make(map[uuid.UUID]time.Time)
	s.load(users)

	s.logger.WithFields(logrus.Fields{
		"jobs":      len(s.jobs),
		"send_time": s.sendTime.String(),
	}).Info("Reminders rescheduled")

	return nil
}

// SetSendTime меняет локальное время отправки. Уже запланированные задания
// не пересчитываются до RescheduleAll.
func (s *Scheduler) SetSendTime(t ClockTime) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendTime = t
}

// Jobs возвращает копию таблицы заданий.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, *j)
	}
	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].Recipient.UserOID.String() < jobs[k].Recipient.UserOID.String()
	})
	return jobs
}

// Job возвращает задание пользователя.
func (s *Scheduler) Job(oid uuid.UUID) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[oid]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// NextRun возвращает ближайшее срабатывание задания после after.
func (s *Scheduler) NextRun(oid uuid.UUID, after time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[oid]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(j.entryID).Schedule.Next(after), true
}

// load планирует пользователей, вызывается под mu.
func (s *Scheduler) load(users []*domain.User) {
	for _, u := range users {
		if u.IsDeleted || !u.IsSubscribed {
			continue
		}
		if err := s.schedule(recipientOf(u)); err != nil {
			s.logger.WithError(err).WithField("user_oid", u.OID).Error("Failed to schedule reminder")
			continue
		}
		s.applied[u.OID] = u.UpdatedAt
	}
}

// schedule добавляет задание, если его еще нет. Вызывается под mu.
func (s *Scheduler) schedule(r domain.ReminderRecipient) error {
	if _, ok := s.jobs[r.UserOID]; ok {
		return nil
	}

	job := &Job{
		Recipient: r,
		At:        TriggerTime(s.sendTime, r.UTCOffset),
	}

	snapshot := *job
	id, err := s.cron.AddFunc(job.At.cronSpec(), func() { s.fire(snapshot) })
	if err != nil {
		return fmt.Errorf("failed to add cron job for %s: %w", r.UserOID, err)
	}

	job.entryID = id
	s.jobs[r.UserOID] = job
	return nil
}

// cancel снимает задание пользователя. Вызывается под mu.
func (s *Scheduler) cancel(oid uuid.UUID) bool {
	job, ok := s.jobs[oid]
	if !ok {
		return false
	}
	s.cron.Remove(job.entryID)
	delete(s.jobs, oid)
	return true
}

// fire отправляет напоминание. Ошибка отправки только логируется:
// задание остается в таблице и сработает в следующий раз.
func (s *Scheduler) fire(job Job) {
	entry := s.logger.WithFields(logrus.Fields{
		"user_oid": job.Recipient.UserOID,
		"email":    job.Recipient.Email,
		"at_utc":   job.At.String(),
	})

	if err := s.sem.Acquire(s.fireCtx, 1); err != nil {
		entry.Warn("Scheduler is stopping, reminder skipped")
		return
	}
	defer s.sem.Release(1)

	ctx, cancel := context.WithTimeout(s.fireCtx, s.sendTimeout)
	defer cancel()

	subject, body, err := s.composer.Reminder(job.Recipient, s.now())
	if err != nil {
		entry.WithError(err).Error("Failed to compose reminder")
		return
	}

	if err := s.sender.Send(ctx, job.Recipient.Email, subject, body); err != nil {
		entry.WithError(err).Error("Failed to send reminder")
		return
	}

	entry.Info("Reminder sent")
}

func recipientOf(u *domain.User) domain.ReminderRecipient {
	return domain.ReminderRecipient{
		UserOID:   u.OID,
		Username:  u.Username.String(),
		Email:     u.Email.String(),
		UTCOffset: u.UTCOffset,
	}
}
