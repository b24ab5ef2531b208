package domain_test

import (
	"testing"

	"user-account-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, subscribed bool) *domain.User {
	t.Helper()
	username, err := domain.NewUsername("alice")
	require.NoError(t, err)
	email, err := domain.NewEmail("a@x.com")
	require.NoError(t, err)

	return domain.NewUser(username, email, domain.MustParseUTCOffset("-03:00"), subscribed)
}

func kinds(events []domain.Event) []domain.EventKind {
	out := make([]domain.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestNewUser_SubscribedRecordsCreatedThenSubscribed(t *testing.T) {
	user := newTestUser(t, true)

	events := user.PullEvents()
	require.Len(t, events, 2)
	assert.Equal(t, []domain.EventKind{domain.EventUserCreated, domain.EventUserSubscribed}, kinds(events))

	for _, e := range events {
		assert.Equal(t, user.OID, e.UserOID)
		assert.Equal(t, "alice", e.Username)
		assert.Equal(t, "a@x.com", e.Email)
		assert.Equal(t, -180, e.UTCOffset.Minutes())
		assert.Equal(t, user.CreatedAt, e.OccurredAt)
	}
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestNewUser_NotSubscribedRecordsOnlyCreated(t *testing.T) {
	user := newTestUser(t, false)

	assert.Equal(t, []domain.EventKind{domain.EventUserCreated}, kinds(user.PullEvents()))
}

func TestUser_PullEventsTransfersOwnership(t *testing.T) {
	user := newTestUser(t, true)

	assert.Len(t, user.PullEvents(), 2)
	assert.Empty(t, user.PullEvents())
}

func TestUser_SubscribeAlwaysRecordsExactlyOneEvent(t *testing.T) {
	user := newTestUser(t, true)
	user.PullEvents()

	require.NoError(t, user.Subscribe())
	require.NoError(t, user.Subscribe())

	events := user.PullEvents()
	assert.Equal(t, []domain.EventKind{domain.EventUserSubscribed, domain.EventUserSubscribed}, kinds(events))
	assert.True(t, user.IsSubscribed)
	assert.Equal(t, user.UpdatedAt, events[1].OccurredAt)
}

func TestUser_Unsubscribe(t *testing.T) {
	user := newTestUser(t, true)
	user.PullEvents()

	require.NoError(t, user.Unsubscribe())

	assert.False(t, user.IsSubscribed)
	events := user.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventUserUnsubscribed, events[0].Kind)
	assert.False(t, events[0].IsSubscribed)
}

func TestUser_ChangeUsername(t *testing.T) {
	user := newTestUser(t, false)
	user.PullEvents()

	require.NoError(t, user.ChangeUsername(domain.Username("bob")))

	assert.Equal(t, domain.Username("bob"), user.Username)
	events := user.PullEvents()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventUsernameChanged, events[0].Kind)
	assert.Equal(t, "alice", events[0].OldUsername)
	assert.Equal(t, "bob", events[0].NewUsername)
}

func TestUser_DeletedUserCannotBeMutated(t *testing.T) {
	user := newTestUser(t, true)
	require.NoError(t, user.Delete())
	user.PullEvents()

	assert.ErrorIs(t, user.ChangeUsername(domain.Username("bob")), domain.ErrUserDeleted)
	assert.ErrorIs(t, user.Subscribe(), domain.ErrUserDeleted)
	assert.ErrorIs(t, user.Unsubscribe(), domain.ErrUserDeleted)
	assert.ErrorIs(t, user.Delete(), domain.ErrUserDeleted)
	assert.Empty(t, user.PullEvents())
	assert.Equal(t, domain.Username("alice"), user.Username)
}

func TestUser_RestoreNotDeletedFails(t *testing.T) {
	user := newTestUser(t, false)
	user.PullEvents()

	assert.ErrorIs(t, user.Restore(), domain.ErrUserNotDeleted)
	assert.Empty(t, user.PullEvents())
}

func TestUser_DeleteRestoreKeepsFields(t *testing.T) {
	user := newTestUser(t, true)
	before := *user
	user.PullEvents()

	require.NoError(t, user.Delete())
	assert.True(t, user.IsDeleted)
	require.NotNil(t, user.DeletedAt)

	require.NoError(t, user.Restore())
	assert.False(t, user.IsDeleted)
	assert.Nil(t, user.DeletedAt)

	assert.Equal(t, before.OID, user.OID)
	assert.Equal(t, before.Email, user.Email)
	assert.Equal(t, before.Username, user.Username)
	assert.Equal(t, before.UTCOffset, user.UTCOffset)
	assert.Equal(t, before.IsSubscribed, user.IsSubscribed)
	assert.Equal(t, before.CreatedAt, user.CreatedAt)
	assert.Equal(t, before.UpdatedAt, user.UpdatedAt)

	assert.Equal(t, []domain.EventKind{domain.EventUserDeleted, domain.EventUserRestored}, kinds(user.PullEvents()))
}

func TestEventKind_Topics(t *testing.T) {
	expected := map[domain.EventKind]string{
		domain.EventUserCreated:      "user-created",
		domain.EventUsernameChanged:  "user-username-changed",
		domain.EventUserSubscribed:   "user-subscribed",
		domain.EventUserUnsubscribed: "user-unsubscribed",
		domain.EventUserRestored:     "user-restored",
		domain.EventUserDeleted:      "user-deleted",
	}

	for _, kind := range domain.EventKinds() {
		assert.Equal(t, expected[kind], kind.Topic(), kind)
		assert.True(t, kind.Valid())
	}
	assert.False(t, domain.EventKind("Unknown").Valid())
}

func TestUserFilter_Validate(t *testing.T) {
	f, err := domain.UserFilter{}.Validate()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultUsersLimit, f.Limit)

	_, err = domain.UserFilter{Limit: 101}.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)

	_, err = domain.UserFilter{Limit: 10, Offset: -1}.Validate()
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)
}
