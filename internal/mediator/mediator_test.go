package mediator_test

import (
	"context"
	"errors"
	"testing"

	"user-account-service/internal/domain"
	"user-account-service/internal/mediator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingCommand struct{ Value string }

type countQuery struct{}

type unknownCommand struct{}

func TestMediator_HandleCommand_RunsHandlersInOrder(t *testing.T) {
	m := mediator.New()
	var calls []string

	mediator.RegisterCommand(m,
		func(_ context.Context, cmd pingCommand) (string, error) {
			calls = append(calls, "first")
			return cmd.Value + "-1", nil
		},
		func(_ context.Context, cmd pingCommand) (string, error) {
			calls = append(calls, "second")
			return cmd.Value + "-2", nil
		},
	)

	results, err := m.HandleCommand(context.Background(), pingCommand{Value: "ping"})

	require.NoError(t, err)
	assert.Equal(t, []any{"ping-1", "ping-2"}, results)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestMediator_HandleCommand_HandlerNotFound(t *testing.T) {
	m := mediator.New()

	_, err := m.HandleCommand(context.Background(), unknownCommand{})

	assert.ErrorIs(t, err, mediator.ErrHandlerNotFound)
}

func TestMediator_HandleCommand_PropagatesErrorUnchanged(t *testing.T) {
	m := mediator.New()
	mediator.RegisterCommand(m, func(context.Context, pingCommand) (string, error) {
		return "", domain.ErrUserNotFound
	})

	_, err := m.HandleCommand(context.Background(), pingCommand{})

	assert.Same(t, domain.ErrUserNotFound, err)
}

func TestMediator_Send(t *testing.T) {
	m := mediator.New()
	mediator.RegisterCommand(m, func(_ context.Context, cmd pingCommand) (string, error) {
		return cmd.Value, nil
	})

	res, err := mediator.Send[string](context.Background(), m, pingCommand{Value: "pong"})
	require.NoError(t, err)
	assert.Equal(t, "pong", res)

	_, err = mediator.Send[int](context.Background(), m, pingCommand{})
	assert.Error(t, err)
}

func TestMediator_Query(t *testing.T) {
	m := mediator.New()
	mediator.RegisterQuery(m, func(context.Context, countQuery) (int, error) {
		return 42, nil
	})

	res, err := mediator.Ask[int](context.Background(), m, countQuery{})
	require.NoError(t, err)
	assert.Equal(t, 42, res)

	_, err = m.HandleQuery(context.Background(), pingCommand{})
	assert.ErrorIs(t, err, mediator.ErrHandlerNotFound)

	assert.Panics(t, func() {
		mediator.RegisterQuery(m, func(context.Context, countQuery) (int, error) { return 0, nil })
	})
}

func TestMediator_Validate(t *testing.T) {
	m := mediator.New()
	mediator.RegisterCommand(m, func(context.Context, pingCommand) (string, error) { return "", nil })
	mediator.RegisterQuery(m, func(context.Context, countQuery) (int, error) { return 0, nil })

	assert.NoError(t, m.Validate(pingCommand{}, countQuery{}))
	assert.ErrorIs(t, m.Validate(pingCommand{}, unknownCommand{}), mediator.ErrHandlerNotFound)
}

func TestMediator_Publish_OrderAndRouting(t *testing.T) {
	m := mediator.New()
	var seen []string

	record := func(name string) mediator.EventHandler {
		return mediator.EventHandlerFunc(func(_ context.Context, e domain.Event) error {
			seen = append(seen, name+":"+string(e.Kind))
			return nil
		})
	}
	m.Subscribe(domain.EventUserCreated, record("a"), record("b"))
	m.Subscribe(domain.EventUserSubscribed, record("c"))

	oid := uuid.New()
	err := m.Publish(context.Background(),
		domain.Event{ID: uuid.New(), Kind: domain.EventUserCreated, UserOID: oid},
		domain.Event{ID: uuid.New(), Kind: domain.EventUserSubscribed, UserOID: oid},
		domain.Event{ID: uuid.New(), Kind: domain.EventUserDeleted, UserOID: oid},
	)

	require.NoError(t, err)
	assert.Equal(t, []string{
		"a:UserCreated",
		"b:UserCreated",
		"c:UserSubscribed",
	}, seen)
}

func TestMediator_Publish_StopsAtFirstError(t *testing.T) {
	m := mediator.New()
	brokerErr := errors.New("broker down")
	var calls int

	m.Subscribe(domain.EventUserCreated, mediator.EventHandlerFunc(func(context.Context, domain.Event) error {
		calls++
		return brokerErr
	}))
	m.Subscribe(domain.EventUserSubscribed, mediator.EventHandlerFunc(func(context.Context, domain.Event) error {
		calls++
		return nil
	}))

	err := m.Publish(context.Background(),
		domain.Event{Kind: domain.EventUserCreated},
		domain.Event{Kind: domain.EventUserSubscribed},
	)

	assert.Same(t, brokerErr, err)
	assert.Equal(t, 1, calls)
}
