package broker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"user-account-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// EventHandler применяет прочитанное из брокера событие.
type EventHandler interface {
	HandleEvent(ctx context.Context, event domain.Event) error
}

// ConsumerConfig содержит параметры чтения группы потребителей.
type ConsumerConfig struct {
	Group      string
	Consumer   string
	Topics     []string
	BatchSize  int64
	Block      time.Duration
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

// Consumer читает стримы топиков через группу потребителей.
// Сообщение подтверждается (XACK) только после успешной обработки,
// неподтвержденные сообщения перечитываются при старте и после ошибки обработчика.
type Consumer struct {
	client  redis.UniversalClient
	handler EventHandler
	logger  *logrus.Logger
	cfg     ConsumerConfig

	// readPending: читать собственные неподтвержденные записи (id "0") вместо новых (">").
	readPending bool

	tasks chan task
}

type task struct {
	fn   func(ctx context.Context) error
	done chan error
}

func NewConsumer(client redis.UniversalClient, handler EventHandler, logger *logrus.Logger, cfg ConsumerConfig) *Consumer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.MinBackoff <= 0 {
		cfg.MinBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.MinBackoff {
		cfg.MaxBackoff = 30 * time.Second
	}

	return &Consumer{
		client:      client,
		handler:     handler,
		logger:      logger,
		cfg:         cfg,
		readPending: true,
		tasks:       make(chan task),
	}
}

// Setup создает группу потребителей для каждого топика. Группа начинает с
// начала стрима, уже существующая группа не трогается.
func (c *Consumer) Setup(ctx context.Context) error {
	for _, topic := range c.cfg.Topics {
		err := c.client.XGroupCreateMkStream(ctx, topic, c.cfg.Group, "0").Err()
		if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("failed to create consumer group %s for %s: %w", c.cfg.Group, topic, err)
		}
	}
	return nil
}

// Run читает события до отмены контекста. Ошибки чтения и обработки
// приводят к паузе с экспоненциальным ростом.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.Setup(ctx); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"group":    c.cfg.Group,
		"consumer": c.cfg.Consumer,
		"topics":   c.cfg.Topics,
	}).Info("Event consumer started")

	backoff := c.cfg.MinBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}
		c.runTasks(ctx)

		if _, err := c.ConsumeOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			c.logger.WithError(err).WithField("backoff", backoff).Error("Failed to consume events")

			if !c.pause(ctx, backoff) {
				return nil
			}

			backoff *= 2
			if backoff > c.cfg.MaxBackoff {
				backoff = c.cfg.MaxBackoff
			}
			continue
		}

		backoff = c.cfg.MinBackoff
	}
}

// Do выполняет fn в горутине Run между чтениями, так что fn не пересекается
// с обработкой событий. Блокируется, пока fn не завершится или ctx не отменится.
func (c *Consumer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t := task{fn: fn, done: make(chan error, 1)}

	select {
	case c.tasks <- t:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pause ждет d, выполняя поступающие задачи. Возвращает false при отмене ctx.
func (c *Consumer) pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case t := <-c.tasks:
			t.done <- t.fn(ctx)
		case <-timer.C:
			return true
		}
	}
}

func (c *Consumer) runTasks(ctx context.Context) {
	for {
		select {
		case t := <-c.tasks:
			t.done <- t.fn(ctx)
		default:
			return
		}
	}
}

// ConsumeOnce выполняет одну итерацию чтения и возвращает число обработанных сообщений.
func (c *Consumer) ConsumeOnce(ctx context.Context) (int, error) {
	pending := c.readPending

	id, block := ">", c.cfg.Block
	if pending {
		// для id "0" Redis не блокирует чтение
		id, block = "0", -1
	}

	streams := make([]string, 0, 2*len(c.cfg.Topics))
	streams = append(streams, c.cfg.Topics...)
	for range c.cfg.Topics {
		streams = append(streams, id)
	}

	res, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  streams,
		Count:    c.cfg.BatchSize,
		Block:    block,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("failed to read from streams: %w", err)
	}

	messages := flatten(res)
	if pending && len(messages) == 0 {
		c.readPending = false
		return 0, nil
	}

	processed := 0
	for _, msg := range messages {
		if err := c.process(ctx, msg); err != nil {
			c.readPending = true
			return processed, err
		}
		processed++
	}

	return processed, nil
}

type streamMessage struct {
	stream string
	redis.XMessage
}

func (c *Consumer) process(ctx context.Context, msg streamMessage) error {
	entry := c.logger.WithFields(logrus.Fields{
		"stream":     msg.stream,
		"message_id": msg.ID,
	})

	raw, _ := msg.Values[fieldValue].(string)
	event, err := DecodeEvent([]byte(raw))
	if err != nil {
		// битое сообщение не исправится при повторе
		entry.WithError(err).Warn("Dropping undecodable message")
		return c.ack(ctx, msg)
	}

	entry = entry.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_kind": event.Kind,
		"user_oid":   event.UserOID,
	})

	if err := c.handler.HandleEvent(ctx, event); err != nil {
		entry.WithError(err).Warn("Failed to handle event, will retry")
		return fmt.Errorf("failed to handle event %s: %w", event.ID, err)
	}

	entry.Debug("Event handled")
	return c.ack(ctx, msg)
}

func (c *Consumer) ack(ctx context.Context, msg streamMessage) error {
	if err := c.client.XAck(ctx, msg.stream, c.cfg.Group, msg.ID).Err(); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}
	return nil
}

// flatten собирает записи всех стримов в один список в порядке идентификаторов,
// чтобы события разных топиков применялись в порядке публикации.
func flatten(streams []redis.XStream) []streamMessage {
	var out []streamMessage
	for _, s := range streams {
		for _, m := range s.Messages {
			out = append(out, streamMessage{stream: s.Stream, XMessage: m})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return streamIDLess(out[i].ID, out[j].ID)
	})
	return out
}

func streamIDLess(a, b string) bool {
	am, as := parseStreamID(a)
	bm, bs := parseStreamID(b)
	if am != bm {
		return am < bm
	}
	return as < bs
}

func parseStreamID(id string) (ms, seq uint64) {
	msPart, seqPart, _ := strings.Cut(id, "-")
	ms, _ = strconv.ParseUint(msPart, 10, 64)
	seq, _ = strconv.ParseUint(seqPart, 10, 64)
	return ms, seq
}
