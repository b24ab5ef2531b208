package mocks

import (
	"context"
	"sort"
	"sync"

	"user-account-service/internal/domain"

	"github.com/google/uuid"
)

// UserStore хранит пользователей в памяти с теми же правилами
// уникальности, что и у PostgreSQL-репозитория.
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ domain.UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (s *UserStore) GetByOID(_ context.Context, oid uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[oid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *UserStore) GetByEmail(_ context.Context, email domain.Email) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.Email == email })
}

func (s *UserStore) GetByUsername(_ context.Context, username domain.Username) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.Username == username })
}

func (s *UserStore) GetAll(_ context.Context, filter domain.UserFilter) ([]*domain.User, int, error) {
	all := s.list(func(u *domain.User) bool {
		return filter.IsSubscribed == nil || u.IsSubscribed == *filter.IsSubscribed
	})

	total := len(all)
	if filter.Offset >= total {
		return []*domain.User{}, total, nil
	}
	end := total
	if filter.Limit > 0 && filter.Offset+filter.Limit < total {
		end = filter.Offset + filter.Limit
	}
	return all[filter.Offset:end], total, nil
}

func (s *UserStore) GetAllSubscribed(_ context.Context) ([]*domain.User, error) {
	return s.list(func(u *domain.User) bool { return u.IsSubscribed }), nil
}

func (s *UserStore) Add(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taken(user.OID, user.Email, user.Username) {
		return domain.ErrUserAlreadyExists
	}
	s.users[user.OID] = clone(user)
	return nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.OID]; !ok {
		return domain.ErrUserNotFound
	}
	if s.taken(user.OID, user.Email, user.Username) {
		return domain.ErrUserAlreadyExists
	}
	s.users[user.OID] = clone(user)
	return nil
}

func (s *UserStore) Delete(ctx context.Context, user *domain.User) error {
	return s.Update(ctx, user)
}

func (s *UserStore) Restore(ctx context.Context, user *domain.User) error {
	return s.Update(ctx, user)
}

func (s *UserStore) CheckExists(_ context.Context, email domain.Email, username domain.Username) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taken(uuid.Nil, email, username), nil
}

func (s *UserStore) GetExistingUsernames(_ context.Context, usernames ...domain.Username) ([]domain.Username, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existing []domain.Username
	for _, name := range usernames {
		for _, u := range s.users {
			if !u.IsDeleted && u.Username == name {
				existing = append(existing, name)
				break
			}
		}
	}
	return existing, nil
}

// taken сообщает, занят ли email или username другим неудаленным пользователем.
func (s *UserStore) taken(self uuid.UUID, email domain.Email, username domain.Username) bool {
	for _, u := range s.users {
		if u.OID == self || u.IsDeleted {
			continue
		}
		if u.Email == email || u.Username == username {
			return true
		}
	}
	return false
}

func (s *UserStore) find(match func(*domain.User) bool) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if !u.IsDeleted && match(u) {
			return clone(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *UserStore) list(match func(*domain.User) bool) []*domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		if !u.IsDeleted && match(u) {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].OID.String() < out[j].OID.String()
	})
	return out
}

func clone(u *domain.User) *domain.User {
	c := domain.Rehydrate(u.OID, u.Username, u.Email, u.UTCOffset, u.IsSubscribed, u.IsDeleted, u.DeletedAt, u.CreatedAt, u.UpdatedAt)
	if u.DeletedAt != nil {
		at := *u.DeletedAt
		c.DeletedAt = &at
	}
	return c
}
