package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"user-account-service/internal/domain"
	"user-account-service/internal/mocks"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fixture struct {
	store    *mocks.UserStore
	sender   *mocks.MailSender
	composer *mocks.MailComposer
	s        *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    mocks.NewUserStore(),
		sender:   &mocks.MailSender{},
		composer: &mocks.MailComposer{},
	}
	f.s = New(f.store, f.sender, f.composer, quietLogger(), Config{
		SendTime:    ClockTime{Hour: 7},
		Concurrency: 2,
		SendTimeout: time.Second,
	})
	t.Cleanup(func() { _ = f.s.Stop(context.Background()) })
	return f
}

func (f *fixture) addUser(t *testing.T, name, offset string, subscribed bool) *domain.User {
	t.Helper()
	u := domain.NewUser(domain.Username(name), domain.Email(name+"@x.com"), domain.MustParseUTCOffset(offset), subscribed)
	u.PullEvents()
	require.NoError(t, f.store.Add(context.Background(), u))
	return u
}

func (f *fixture) save(t *testing.T, u *domain.User) {
	t.Helper()
	u.PullEvents()
	require.NoError(t, f.store.Update(context.Background(), u))
}

func event(kind domain.EventKind, oid uuid.UUID, at time.Time) domain.Event {
	return domain.Event{ID: uuid.New(), Kind: kind, UserOID: oid, OccurredAt: at}
}

func TestTriggerTime(t *testing.T) {
	tests := []struct {
		local  ClockTime
		offset string
		want   string
	}{
		{local: ClockTime{Hour: 7}, offset: "+03:00", want: "04:00"},
		{local: ClockTime{Hour: 7}, offset: "-05:00", want: "12:00"},
		{local: ClockTime{Hour: 7}, offset: "-03:00", want: "10:00"},
		{local: ClockTime{Hour: 7}, offset: "+00:00", want: "07:00"},
		{local: ClockTime{Hour: 7}, offset: "+14:00", want: "17:00"},
		{local: ClockTime{Hour: 7}, offset: "-12:00", want: "19:00"},
		{local: ClockTime{Hour: 7}, offset: "+05:30", want: "01:30"},
		{local: ClockTime{Hour: 0, Minute: 30}, offset: "+03:00", want: "21:30"},
		{local: ClockTime{Hour: 23, Minute: 45}, offset: "-02:00", want: "01:45"},
	}

	for _, tt := range tests {
		t.Run(tt.local.String()+tt.offset, func(t *testing.T) {
			got := TriggerTime(tt.local, domain.MustParseUTCOffset(tt.offset))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("07:05")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 7, Minute: 5}, c)

	_, err = ParseClockTime("25:00")
	assert.Error(t, err)
	_, err = ParseClockTime("7")
	assert.Error(t, err)
}

func TestStart_LoadsOnlySubscribedUsers(t *testing.T) {
	f := newFixture(t)
	moscow := f.addUser(t, "moscow", "+03:00", true)
	newyork := f.addUser(t, "newyork", "-05:00", true)
	f.addUser(t, "quiet", "+00:00", false)
	gone := f.addUser(t, "gone", "+01:00", true)
	require.NoError(t, gone.Delete())
	f.save(t, gone)

	require.NoError(t, f.s.Start(context.Background()))

	assert.Len(t, f.s.Jobs(), 2)

	job, ok := f.s.Job(moscow.OID)
	require.True(t, ok)
	assert.Equal(t, "04:00", job.At.String())
	assert.Equal(t, "moscow@x.com", job.Recipient.Email)

	job, ok = f.s.Job(newyork.OID)
	require.True(t, ok)
	assert.Equal(t, "12:00", job.At.String())
}

func TestStart_RepositoryFailure(t *testing.T) {
	repo := &mocks.UserRepository{}
	repo.On("GetAllSubscribed", mock.Anything).Return(nil, domain.ErrRepository)
	s := New(repo, &mocks.MailSender{}, &mocks.MailComposer{}, quietLogger(), Config{SendTime: ClockTime{Hour: 7}})

	assert.ErrorIs(t, s.Start(context.Background()), domain.ErrRepository)
}

func TestHandleEvent_SubscribedTwiceKeepsOneJob(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.Start(context.Background()))
	alice := f.addUser(t, "alice", "-03:00", true)

	e := event(domain.EventUserSubscribed, alice.OID, time.Now().Add(time.Second))
	require.NoError(t, f.s.HandleEvent(context.Background(), e))
	require.NoError(t, f.s.HandleEvent(context.Background(), e))
	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserSubscribed, alice.OID, time.Now().Add(2*time.Second))))

	jobs := f.s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, alice.OID, jobs[0].Recipient.UserOID)
	assert.Equal(t, "10:00", jobs[0].At.String())
	assert.Len(t, f.s.cron.Entries(), 1)
}

func TestHandleEvent_SubscribeThenUnsubscribeLeavesNoJob(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.Start(context.Background()))
	alice := f.addUser(t, "alice", "+03:00", true)
	base := time.Now().Add(time.Second)

	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserSubscribed, alice.OID, base)))
	require.Len(t, f.s.Jobs(), 1)

	require.NoError(t, alice.Unsubscribe())
	f.save(t, alice)
	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserUnsubscribed, alice.OID, base.Add(time.Second))))

	assert.Empty(t, f.s.Jobs())
	assert.Empty(t, f.s.cron.Entries())
	_, ok := f.s.NextRun(alice.OID, time.Now())
	assert.False(t, ok)
}

func TestHandleEvent_UnsubscribedWithoutJobIsNoop(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserUnsubscribed, uuid.New(), time.Now())))

	assert.Empty(t, f.s.Jobs())
}

func TestHandleEvent_OutOfOrderDelivery(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.s.Start(context.Background()))
	alice := f.addUser(t, "alice", "+03:00", true)
	base := time.Now().Add(time.Second)

	// Unsubscribed (t2) пришло раньше Subscribed (t1)
	require.NoError(t, alice.Unsubscribe())
	f.save(t, alice)
	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserUnsubscribed, alice.OID, base.Add(time.Second))))
	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserSubscribed, alice.OID, base)))

	assert.Empty(t, f.s.Jobs())
}

func TestHandleEvent_StaleEventOlderThanStartupStateIsIgnored(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "+03:00", true)
	require.NoError(t, f.s.Start(context.Background()))

	// повтор истории: отписка, случившаяся до текущей подписки
	err := f.s.HandleEvent(context.Background(), event(domain.EventUserUnsubscribed, alice.OID, alice.UpdatedAt.Add(-time.Hour)))
	require.NoError(t, err)

	_, ok := f.s.Job(alice.OID)
	assert.True(t, ok)
}

func TestHandleEvent_SubscribedButRepositorySaysOtherwise(t *testing.T) {
	f := newFixture(t)
	bob := f.addUser(t, "bob", "+00:00", false)

	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserSubscribed, bob.OID, time.Now().Add(time.Second))))
	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserSubscribed, uuid.New(), time.Now())))

	assert.Empty(t, f.s.Jobs())
}

func TestHandleEvent_RepositoryErrorIsReturned(t *testing.T) {
	repo := &mocks.UserRepository{}
	s := New(repo, &mocks.MailSender{}, &mocks.MailComposer{}, quietLogger(), Config{SendTime: ClockTime{Hour: 7}})
	defer s.Stop(context.Background())

	u := domain.NewUser("alice", "a@x.com", domain.MustParseUTCOffset("-03:00"), true)
	e := event(domain.EventUserSubscribed, u.OID, time.Now().Add(time.Second))

	repo.On("GetByOID", mock.Anything, u.OID).Return(nil, domain.ErrRepository).Once()
	assert.ErrorIs(t, s.HandleEvent(context.Background(), e), domain.ErrRepository)
	assert.Empty(t, s.Jobs())

	// повторная доставка того же события после восстановления хранилища
	repo.On("GetByOID", mock.Anything, u.OID).Return(u, nil).Once()
	require.NoError(t, s.HandleEvent(context.Background(), e))
	assert.Len(t, s.Jobs(), 1)
	repo.AssertExpectations(t)
}

func TestHandleEvent_DeleteAndRestore(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "-03:00", true)
	require.NoError(t, f.s.Start(context.Background()))
	base := time.Now().Add(time.Second)

	require.NoError(t, alice.Delete())
	f.save(t, alice)
	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserDeleted, alice.OID, base)))
	assert.Empty(t, f.s.Jobs())

	require.NoError(t, alice.Restore())
	f.save(t, alice)
	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserRestored, alice.OID, base.Add(time.Second))))
	assert.Len(t, f.s.Jobs(), 1)
}

func TestHandleEvent_IgnoresUnrelatedKinds(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "-03:00", true)

	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUserCreated, alice.OID, time.Now())))
	require.NoError(t, f.s.HandleEvent(context.Background(), event(domain.EventUsernameChanged, alice.OID, time.Now())))

	assert.Empty(t, f.s.Jobs())
}

func TestNextRun(t *testing.T) {
	f := newFixture(t)
	moscow := f.addUser(t, "moscow", "+03:00", true)
	require.NoError(t, f.s.Start(context.Background()))

	next, ok := f.s.NextRun(moscow.OID, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 15, 4, 0, 0, 0, time.UTC), next.UTC())

	next, ok = f.s.NextRun(moscow.OID, time.Date(2026, 10, 15, 5, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 16, 4, 0, 0, 0, time.UTC), next.UTC())
}

func TestRescheduleAll_AppliesNewSendTime(t *testing.T) {
	f := newFixture(t)
	moscow := f.addUser(t, "moscow", "+03:00", true)
	require.NoError(t, f.s.Start(context.Background()))

	f.s.SetSendTime(ClockTime{Hour: 9})
	job, _ := f.s.Job(moscow.OID)
	assert.Equal(t, "04:00", job.At.String(), "existing jobs keep their trigger until rescheduled")

	require.NoError(t, f.s.RescheduleAll(context.Background()))

	job, ok := f.s.Job(moscow.OID)
	require.True(t, ok)
	assert.Equal(t, "06:00", job.At.String())
	assert.Len(t, f.s.cron.Entries(), 1)
}

func TestFire_SendsReminder(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "-03:00", true)
	require.NoError(t, f.s.Start(context.Background()))
	job, ok := f.s.Job(alice.OID)
	require.True(t, ok)

	f.composer.On("Reminder", job.Recipient, mock.Anything).Return("subject", "<p>body</p>", nil)
	f.sender.On("Send", mock.Anything, "alice@x.com", "subject", "<p>body</p>").Return(nil).Once()

	f.s.fire(job)

	f.sender.AssertExpectations(t)
}

func TestFire_SendFailureKeepsJob(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "-03:00", true)
	require.NoError(t, f.s.Start(context.Background()))
	job, _ := f.s.Job(alice.OID)

	f.composer.On("Reminder", mock.Anything, mock.Anything).Return("subject", "body", nil)
	f.sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.Join(domain.ErrMailRecipientRefused)).Twice()

	f.s.fire(job)
	f.s.fire(job)

	_, ok := f.s.Job(alice.OID)
	assert.True(t, ok)
	f.sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestStop_CancelsAllJobsAndSkipsFirings(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "-03:00", true)
	f.addUser(t, "bob", "+01:00", true)
	require.NoError(t, f.s.Start(context.Background()))
	job, _ := f.s.Job(alice.OID)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.s.Stop(ctx))

	assert.Empty(t, f.s.Jobs())
	assert.Empty(t, f.s.cron.Entries())

	f.s.fire(job)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
