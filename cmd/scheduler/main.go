package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"user-account-service/internal/app"
	"user-account-service/internal/config"
	"user-account-service/internal/database"
	"user-account-service/internal/logger"
	"user-account-service/internal/repository"
	"user-account-service/internal/scheduler"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig()
	log := logger.New(cfg.LogLevel)
	if err != nil {
		log.Warnf(".env not found: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	log.Info("Database connected")

	userRepo := repository.NewUserRepository(db, database.New(db))

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	defer redisClient.Close()

	sender, err := app.NewMailSender(cfg, log)
	if err != nil {
		log.Fatalf("Mail sender setup failed: %v", err)
	}
	composer, err := app.NewComposer(cfg)
	if err != nil {
		log.Fatalf("Mail templates failed: %v", err)
	}

	reminders, err := app.NewReminders(cfg, userRepo, redisClient, sender, composer, log)
	if err != nil {
		log.Fatalf("Scheduler setup failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// группа создается до загрузки подписчиков, чтобы не потерять события между ними
	if err := reminders.Consumer.Setup(ctx); err != nil {
		log.Fatalf("Consumer group setup failed: %v", err)
	}
	if err := reminders.Scheduler.Start(ctx); err != nil {
		log.Fatalf("Scheduler start failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := reminders.Consumer.Run(ctx); err != nil {
			log.Errorf("Consumer stopped: %v", err)
		}
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range signals {
		if sig != syscall.SIGHUP {
			break
		}
		reload(ctx, reminders, log)
	}

	log.Info("Shutting down...")
	cancel()
	wg.Wait()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := reminders.Scheduler.Stop(stopCtx); err != nil {
		log.Errorf("Scheduler stop failed: %v", err)
	}

	log.Info("Scheduler exited")
}

// reload перечитывает .env и пересоздает задания с новым временем отправки.
func reload(ctx context.Context, reminders *app.Reminders, log *logrus.Logger) {
	cfg, err := config.Reload()
	if err != nil {
		log.Warnf(".env not found on reload, using environment: %v", err)
	}

	sendTime, err := scheduler.ParseClockTime(cfg.ReminderSendTime)
	if err != nil {
		log.Errorf("Invalid REMINDER_SEND_TIME on reload: %v", err)
		return
	}

	if err := reminders.Reschedule(ctx, sendTime); err != nil {
		log.Errorf("Failed to reschedule reminders: %v", err)
		return
	}

	log.Infof("Reminders rescheduled at %s local time", sendTime)
}
