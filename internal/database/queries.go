package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBTX описывает общие методы *sql.DB и *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries содержит типизированные запросы к таблице users.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// User соответствует строке таблицы users.
type User struct {
	Oid              uuid.UUID
	Email            string
	Username         string
	UtcOffsetMinutes int32
	IsSubscribed     bool
	IsDeleted        bool
	DeletedAt        sql.NullTime
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const userColumns = `oid, email, username, utc_offset_minutes, is_subscribed, is_deleted, deleted_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (User, error) {
	var i User
	err := row.Scan(
		&i.Oid,
		&i.Email,
		&i.Username,
		&i.UtcOffsetMinutes,
		&i.IsSubscribed,
		&i.IsDeleted,
		&i.DeletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanUsers(rows *sql.Rows) ([]User, error) {
	defer rows.Close()

	items := []User{}
	for rows.Next() {
		i, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getUserByOID = `SELECT ` + userColumns + ` FROM users WHERE oid = $1`

func (q *Queries) GetUserByOID(ctx context.Context, oid uuid.UUID) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByOID, oid))
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND NOT is_deleted`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND NOT is_deleted`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const listUsers = `SELECT ` + userColumns + ` FROM users
WHERE NOT is_deleted AND ($1::boolean IS NULL OR is_subscribed = $1)
ORDER BY created_at, oid
LIMIT $2 OFFSET $3`

type ListUsersParams struct {
	IsSubscribed sql.NullBool
	Limit        int32
	Offset       int32
}

func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers, arg.IsSubscribed, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

const countUsers = `SELECT COUNT(*) FROM users WHERE NOT is_deleted AND ($1::boolean IS NULL OR is_subscribed = $1)`

func (q *Queries) CountUsers(ctx context.Context, isSubscribed sql.NullBool) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsers, isSubscribed).Scan(&count)
	return count, err
}

const listSubscribedUsers = `SELECT ` + userColumns + ` FROM users
WHERE is_subscribed AND NOT is_deleted
ORDER BY created_at, oid`

func (q *Queries) ListSubscribedUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listSubscribedUsers)
	if err != nil {
		return nil, err
	}
	return scanUsers(rows)
}

const createUser = `INSERT INTO users (` + userColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (q *Queries) CreateUser(ctx context.Context, arg User) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.Oid,
		arg.Email,
		arg.Username,
		arg.UtcOffsetMinutes,
		arg.IsSubscribed,
		arg.IsDeleted,
		arg.DeletedAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const updateUser = `UPDATE users
SET email = $2, username = $3, utc_offset_minutes = $4, is_subscribed = $5, updated_at = $6
WHERE oid = $1 AND NOT is_deleted`

type UpdateUserParams struct {
	Oid              uuid.UUID
	Email            string
	Username         string
	UtcOffsetMinutes int32
	IsSubscribed     bool
	UpdatedAt        time.Time
}

// UpdateUser возвращает число измененных строк.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateUser,
		arg.Oid,
		arg.Email,
		arg.Username,
		arg.UtcOffsetMinutes,
		arg.IsSubscribed,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setUserDeleted = `UPDATE users SET is_deleted = $2, deleted_at = $3 WHERE oid = $1 AND is_deleted = NOT $2`

type SetUserDeletedParams struct {
	Oid       uuid.UUID
	IsDeleted bool
	DeletedAt sql.NullTime
}

// SetUserDeleted переключает пометку удаления и возвращает число измененных строк.
func (q *Queries) SetUserDeleted(ctx context.Context, arg SetUserDeletedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setUserDeleted, arg.Oid, arg.IsDeleted, arg.DeletedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const userExists = `SELECT EXISTS (
    SELECT 1 FROM users WHERE NOT is_deleted AND (email = $1 OR username = $2)
)`

func (q *Queries) UserExists(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := q.db.QueryRowContext(ctx, userExists, email, username).Scan(&exists)
	return exists, err
}

const listExistingUsernames = `SELECT username FROM users WHERE NOT is_deleted AND username IN (/*SLICE:usernames*/?)`

func (q *Queries) ListExistingUsernames(ctx context.Context, usernames []string) ([]string, error) {
	if len(usernames) == 0 {
		return []string{}, nil
	}

	placeholders := make([]string, len(usernames))
	args := make([]interface{}, len(usernames))
	for i, name := range usernames {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = name
	}
	query := strings.Replace(listExistingUsernames, "/*SLICE:usernames*/?", strings.Join(placeholders, ", "), 1)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []string{}
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		items = append(items, username)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
