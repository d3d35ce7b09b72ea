package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

const userColumns = "id, username, password_hash, role, balance, deleted, created_at, updated_at"

type userRepository struct {
	q querier
	d dialect
}

func (r userRepository) Insert(ctx context.Context, u *domuser.User) error {
	id, err := insertReturningID(ctx, r.q, r.d,
		`INSERT INTO users (username, password_hash, role, balance, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.PasswordHash, string(u.Role), u.Balance, u.Deleted, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domuser.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	u.ID = id
	return nil
}

func (r userRepository) Update(ctx context.Context, u *domuser.User) error {
	err := execAffecting(ctx, r.q, r.d, domuser.ErrNotFound,
		`UPDATE users SET username = ?, password_hash = ?, role = ?, balance = ?, deleted = ?, updated_at = ?
		WHERE id = ?`,
		u.Username, u.PasswordHash, string(u.Role), u.Balance, u.Deleted, u.UpdatedAt, u.ID)
	if isUniqueViolation(err) {
		return domuser.ErrAlreadyExists
	}
	return err
}

func (r userRepository) FindByID(ctx context.Context, id int64) (*domuser.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

func (r userRepository) FindActiveByID(ctx context.Context, id int64) (*domuser.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? AND deleted = FALSE", id)
}

func (r userRepository) FindActiveByUsername(ctx context.Context, username string) (*domuser.User, error) {
	return r.one(ctx, "SELECT "+userColumns+" FROM users WHERE username = ? AND deleted = FALSE", username)
}

func (r userRepository) GetForUpdate(ctx context.Context, id int64) (*domuser.User, error) {
	return r.one(ctx, r.d.forUpdate("SELECT "+userColumns+" FROM users WHERE id = ? AND deleted = FALSE"), id)
}

func (r userRepository) ListActive(ctx context.Context, page paging.Request) ([]*domuser.User, int, error) {
	var total int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE deleted = FALSE").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	users, err := r.many(ctx, "SELECT "+userColumns+" FROM users WHERE deleted = FALSE ORDER BY id LIMIT ? OFFSET ?",
		page.Size, page.Offset())
	return users, total, err
}

func (r userRepository) ListAll(ctx context.Context) ([]*domuser.User, error) {
	return r.many(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
}

func (r userRepository) one(ctx context.Context, query string, args ...any) (*domuser.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, r.d.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domuser.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (r userRepository) many(ctx context.Context, query string, args ...any) ([]*domuser.User, error) {
	rows, err := r.q.QueryContext(ctx, r.d.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*domuser.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domuser.User, error) {
	var (
		u    domuser.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.Balance, &u.Deleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = domuser.Role(role)
	u.CreatedAt = utc(u.CreatedAt)
	u.UpdatedAt = utc(u.UpdatedAt)
	return &u, nil
}
