package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"user-account-service/internal/database"
	"user-account-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// UserRepository реализует взаимодействие с данными пользователей в PostgreSQL.
type UserRepository struct {
	db      *sql.DB
	queries *database.Queries
}

// NewUserRepository создает новый экземпляр UserRepository.
func NewUserRepository(db *sql.DB, queries *database.Queries) domain.UserRepository {
	return &UserRepository{
		db:      db,
		queries: queries,
	}
}

// GetByOID возвращает пользователя по OID, включая удаленных.
func (r *UserRepository) GetByOID(ctx context.Context, oid uuid.UUID) (*domain.User, error) {
	row, err := r.queries.GetUserByOID(ctx, oid)
	if err != nil {
		return nil, mapError("get user", err)
	}
	return toDomain(row), nil
}

// GetByEmail возвращает неудаленного пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email domain.Email) (*domain.User, error) {
	row, err := r.queries.GetUserByEmail(ctx, email.String())
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return toDomain(row), nil
}

// GetByUsername возвращает неудаленного пользователя по имени.
func (r *UserRepository) GetByUsername(ctx context.Context, username domain.Username) (*domain.User, error) {
	row, err := r.queries.GetUserByUsername(ctx, username.String())
	if err != nil {
		return nil, mapError("get user by username", err)
	}
	return toDomain(row), nil
}

// GetAll возвращает страницу пользователей и общее число подходящих под фильтр.
// Страница и счетчик читаются в одной транзакции.
func (r *UserRepository) GetAll(ctx context.Context, filter domain.UserFilter) (users []*domain.User, total int, err error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, mapError("begin transaction", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txQueries := r.queries.WithTx(tx)

	var subscribed sql.NullBool
	if filter.IsSubscribed != nil {
		subscribed = sql.NullBool{Bool: *filter.IsSubscribed, Valid: true}
	}

	count, err := txQueries.CountUsers(ctx, subscribed)
	if err != nil {
		return nil, 0, mapError("count users", err)
	}

	rows, err := txQueries.ListUsers(ctx, database.ListUsersParams{
		IsSubscribed: subscribed,
		Limit:        int32(filter.Limit),
		Offset:       int32(filter.Offset),
	})
	if err != nil {
		return nil, 0, mapError("list users", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, 0, mapError("commit transaction", err)
	}

	return toDomainList(rows), int(count), nil
}

// GetAllSubscribed возвращает всех подписанных неудаленных пользователей.
func (r *UserRepository) GetAllSubscribed(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.queries.ListSubscribedUsers(ctx)
	if err != nil {
		return nil, mapError("list subscribed users", err)
	}
	return toDomainList(rows), nil
}

// Add сохраняет нового пользователя.
func (r *UserRepository) Add(ctx context.Context, user *domain.User) error {
	err := r.queries.CreateUser(ctx, database.User{
		Oid:              user.OID,
		Email:            user.Email.String(),
		Username:         user.Username.String(),
		UtcOffsetMinutes: int32(user.UTCOffset.Minutes()),
		IsSubscribed:     user.IsSubscribed,
		IsDeleted:        user.IsDeleted,
		DeletedAt:        nullTime(user.DeletedAt),
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	})
	if err != nil {
		return mapError("create user", err)
	}
	return nil
}

// Update сохраняет изменяемые поля неудаленного пользователя.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	n, err := r.queries.UpdateUser(ctx, database.UpdateUserParams{
		Oid:              user.OID,
		Email:            user.Email.String(),
		Username:         user.Username.String(),
		UtcOffsetMinutes: int32(user.UTCOffset.Minutes()),
		IsSubscribed:     user.IsSubscribed,
		UpdatedAt:        user.UpdatedAt,
	})
	if err != nil {
		return mapError("update user", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete помечает пользователя удаленным.
func (r *UserRepository) Delete(ctx context.Context, user *domain.User) error {
	return r.setDeleted(ctx, user, "delete user")
}

// Restore снимает пометку удаления. Если email или username уже заняты,
// частичный уникальный индекс вернет ErrUserAlreadyExists.
func (r *UserRepository) Restore(ctx context.Context, user *domain.User) error {
	return r.setDeleted(ctx, user, "restore user")
}

func (r *UserRepository) setDeleted(ctx context.Context, user *domain.User, op string) error {
	n, err := r.queries.SetUserDeleted(ctx, database.SetUserDeletedParams{
		Oid:       user.OID,
		IsDeleted: user.IsDeleted,
		DeletedAt: nullTime(user.DeletedAt),
	})
	if err != nil {
		return mapError(op, err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// CheckExists сообщает, занят ли email или username неудаленным пользователем.
func (r *UserRepository) CheckExists(ctx context.Context, email domain.Email, username domain.Username) (bool, error) {
	exists, err := r.queries.UserExists(ctx, email.String(), username.String())
	if err != nil {
		return false, mapError("check user exists", err)
	}
	return exists, nil
}

// GetExistingUsernames возвращает те имена из переданных, которые уже заняты.
func (r *UserRepository) GetExistingUsernames(ctx context.Context, usernames ...domain.Username) ([]domain.Username, error) {
	names := make([]string, len(usernames))
	for i, u := range usernames {
		names[i] = u.String()
	}

	existing, err := r.queries.ListExistingUsernames(ctx, names)
	if err != nil {
		return nil, mapError("get existing usernames", err)
	}

	result := make([]domain.Username, len(existing))
	for i, name := range existing {
		result[i] = domain.Username(name)
	}
	return result, nil
}

func mapError(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrUserAlreadyExists
	}

	return fmt.Errorf("%w: failed to %s: %w", domain.ErrRepository, op, err)
}

func toDomain(row database.User) *domain.User {
	var deletedAt *time.Time
	if row.DeletedAt.Valid {
		t := row.DeletedAt.Time.UTC()
		deletedAt = &t
	}

	return domain.Rehydrate(
		row.Oid,
		domain.Username(row.Username),
		domain.Email(row.Email),
		domain.UTCOffset(row.UtcOffsetMinutes),
		row.IsSubscribed,
		row.IsDeleted,
		deletedAt,
		row.CreatedAt.UTC(),
		row.UpdatedAt.UTC(),
	)
}

func toDomainList(rows []database.User) []*domain.User {
	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toDomain(row))
	}
	return users
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
