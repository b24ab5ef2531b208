// Package mediator маршрутизирует команды и запросы к обработчикам
// и синхронно рассылает доменные события.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"user-account-service/internal/domain"
)

// ErrHandlerNotFound возвращается, если для типа команды или запроса нет обработчика.
var ErrHandlerNotFound = errors.New("handler not found")

// EventHandler обрабатывает доменное событие.
type EventHandler interface {
	Handle(ctx context.Context, event domain.Event) error
}

// EventHandlerFunc позволяет использовать функцию как EventHandler.
type EventHandlerFunc func(ctx context.Context, event domain.Event) error

func (f EventHandlerFunc) Handle(ctx context.Context, event domain.Event) error {
	return f(ctx, event)
}

type handlerFunc func(ctx context.Context, request any) (any, error)

// Mediator хранит таблицы обработчиков. Регистрация выполняется при старте
// процесса, после этого таблицы только читаются.
type Mediator struct {
	mu       sync.RWMutex
	commands map[reflect.Type][]handlerFunc
	queries  map[reflect.Type]handlerFunc
	events   map[domain.EventKind][]EventHandler
}

func New() *Mediator {
	return &Mediator{
		commands: make(map[reflect.Type][]handlerFunc),
		queries:  make(map[reflect.Type]handlerFunc),
		events:   make(map[domain.EventKind][]EventHandler),
	}
}

// RegisterCommand добавляет обработчики для типа команды C.
// Обработчики одной команды вызываются в порядке регистрации.
func RegisterCommand[C any, R any](m *Mediator, handlers ...func(context.Context, C) (R, error)) {
	t := reflect.TypeFor[C]()

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range handlers {
		m.commands[t] = append(m.commands[t], wrap(h))
	}
}

// RegisterQuery задает единственный обработчик для типа запроса Q.
func RegisterQuery[Q any, R any](m *Mediator, handler func(context.Context, Q) (R, error)) {
	t := reflect.TypeFor[Q]()

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.queries[t]; exists {
		panic(fmt.Sprintf("mediator: query handler for %s already registered", t))
	}
	m.queries[t] = wrap(handler)
}

// Subscribe добавляет обработчики события заданного типа.
func (m *Mediator) Subscribe(kind domain.EventKind, handlers ...EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[kind] = append(m.events[kind], handlers...)
}

// HandleCommand выполняет все обработчики команды и возвращает их результаты.
// Ошибка обработчика возвращается как есть.
func (m *Mediator) HandleCommand(ctx context.Context, cmd any) ([]any, error) {
	t := reflect.TypeOf(cmd)

	m.mu.RLock()
	handlers := m.commands[t]
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return nil, fmt.Errorf("%w: command %v", ErrHandlerNotFound, t)
	}

	results := make([]any, 0, len(handlers))
	for _, h := range handlers {
		res, err := h(ctx, cmd)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

// HandleQuery выполняет обработчик запроса.
func (m *Mediator) HandleQuery(ctx context.Context, query any) (any, error) {
	t := reflect.TypeOf(query)

	m.mu.RLock()
	h, ok := m.queries[t]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: query %v", ErrHandlerNotFound, t)
	}

	return h(ctx, query)
}

// Publish передает каждое событие всем обработчикам его типа в порядке регистрации.
// Первая ошибка прерывает рассылку и возвращается вызывающему.
func (m *Mediator) Publish(ctx context.Context, events ...domain.Event) error {
	for _, event := range events {
		m.mu.RLock()
		handlers := m.events[event.Kind]
		m.mu.RUnlock()

		for _, h := range handlers {
			if err := h.Handle(ctx, event); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate проверяет, что для всех перечисленных команд и запросов есть обработчики.
func (m *Mediator) Validate(requests ...any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, r := range requests {
		t := reflect.TypeOf(r)
		_, isQuery := m.queries[t]
		if len(m.commands[t]) == 0 && !isQuery {
			errs = append(errs, fmt.Errorf("%w: %v", ErrHandlerNotFound, t))
		}
	}
	return errors.Join(errs...)
}

// Send выполняет команду и возвращает результат первого обработчика.
func Send[R any](ctx context.Context, m *Mediator, cmd any) (R, error) {
	var zero R

	results, err := m.HandleCommand(ctx, cmd)
	if err != nil {
		return zero, err
	}

	res, ok := results[0].(R)
	if !ok {
		return zero, fmt.Errorf("mediator: unexpected result type %T for command %T", results[0], cmd)
	}
	return res, nil
}

// Ask выполняет запрос и приводит результат к типу R.
func Ask[R any](ctx context.Context, m *Mediator, query any) (R, error) {
	var zero R

	result, err := m.HandleQuery(ctx, query)
	if err != nil {
		return zero, err
	}

	res, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("mediator: unexpected result type %T for query %T", result, query)
	}
	return res, nil
}

func wrap[T any, R any](h func(context.Context, T) (R, error)) handlerFunc {
	return func(ctx context.Context, request any) (any, error) {
		return h(ctx, request.(T))
	}
}
