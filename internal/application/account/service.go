// Package account manages users and their balances.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/view"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
)

const (
	accountService = "account-service"

	useCaseUserCreate = "user.create"
	useCaseUserList   = "user.list"
	useCaseUserPage   = "user.page"
	useCaseUserGet    = "user.get"
	useCaseUserUpdate = "user.update"
	useCaseUserDelete = "user.delete"
)

type CreateInput struct {
	Username string
	Password string
	Role     string
	Balance  decimal.Decimal
}

// UpdateInput replaces the editable fields. Empty Role or Password and a nil
// Balance keep the current values.
type UpdateInput struct {
	Username string
	Password string
	Role     string
	Balance  *decimal.Decimal
}

type Service struct {
	store    application.Store
	inst     *application.Instrument
	hashCost int
}

type Option func(*Service)

// WithHashCost overrides the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(store application.Store, tel observability.Observability, opts ...Option) *Service {
	s := &Service{
		store:    store,
		inst:     application.NewInstrument(accountService, tel),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateUser(ctx context.Context, in CreateInput) (_ view.User, err error) {
	ctx, run := s.inst.Start(ctx, useCaseUserCreate, "CreateUser")
	defer func() { run.End(err) }()

	role, err := domuser.ParseRole(in.Role)
	if err != nil {
		return view.User{}, err
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return view.User{}, err
	}
	u, err := domuser.New(in.Username, hash, role, in.Balance)
	if err != nil {
		return view.User{}, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		if err := ensureUsernameFree(ctx, tx, u.Username, 0); err != nil {
			return err
		}
		return tx.Users().Insert(ctx, u)
	})
	if err != nil {
		return view.User{}, application.WrapRepositoryError(err)
	}
	return view.NewUser(u), nil
}

func (s *Service) ListUsers(ctx context.Context) (_ []view.User, err error) {
	ctx, run := s.inst.Start(ctx, useCaseUserList, "ListUsers")
	defer func() { run.End(err) }()

	out := []view.User{}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		users, err := tx.Users().ListAll(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			if !u.Deleted {
				out = append(out, view.NewUser(u))
			}
		}
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) PageUsers(ctx context.Context, req paging.Request) (_ paging.Result[view.User], err error) {
	ctx, run := s.inst.Start(ctx, useCaseUserPage, "PageUsers",
		attribute.Int("page", req.Page),
		attribute.Int("size", req.Size),
	)
	defer func() { run.End(err) }()

	req = req.Normalize()
	var out paging.Result[view.User]
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		users, total, err := tx.Users().ListActive(ctx, req)
		if err != nil {
			return err
		}
		out = paging.Map(paging.NewResult(users, req, total), func(u *domuser.User) view.User { return view.NewUser(u) })
		return nil
	})
	if err != nil {
		return paging.Result[view.User]{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (_ view.User, err error) {
	ctx, run := s.inst.Start(ctx, useCaseUserGet, "GetUser", attribute.Int64("user.id", id))
	defer func() { run.End(err) }()

	var out view.User
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		u, err := tx.Users().FindActiveByID(ctx, id)
		if err != nil {
			return err
		}
		out = view.NewUser(u)
		return nil
	})
	if err != nil {
		return view.User{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) UpdateUser(ctx context.Context, id int64, in UpdateInput) (_ view.User, err error) {
	ctx, run := s.inst.Start(ctx, useCaseUserUpdate, "UpdateUser", attribute.Int64("user.id", id))
	defer func() { run.End(err) }()

	var role domuser.Role
	if in.Role != "" {
		if role, err = domuser.ParseRole(in.Role); err != nil {
			return view.User{}, err
		}
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return view.User{}, err
	}

	var out view.User
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		u, err := tx.Users().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := u.Rename(in.Username); err != nil {
			return err
		}
		if err := ensureUsernameFree(ctx, tx, u.Username, u.ID); err != nil {
			return err
		}
		if role != "" {
			u.ChangeRole(role)
		}
		if hash != "" {
			u.ChangePasswordHash(hash)
		}
		if in.Balance != nil {
			if err := u.SetBalance(*in.Balance); err != nil {
				return err
			}
		}
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}
		out = view.NewUser(u)
		return nil
	})
	if err != nil {
		return view.User{}, application.WrapRepositoryError(err)
	}
	return out, nil
}

// DeleteUser soft-deletes the user; orders and payments keep referencing it.
func (s *Service) DeleteUser(ctx context.Context, id int64) (err error) {
	ctx, run := s.inst.Start(ctx, useCaseUserDelete, "DeleteUser", attribute.Int64("user.id", id))
	defer func() { run.End(err) }()

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx application.Tx) error {
		u, err := tx.Users().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		u.MarkDeleted()
		return tx.Users().Update(ctx, u)
	})
	return application.WrapRepositoryError(err)
}

// hashPassword returns "" for an empty password.
func (s *Service) hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	switch {
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", apperror.Validation("password must be at most 72 bytes")
	case err != nil:
		return "", fmt.Errorf("account: hash password: %w", err)
	}
	return string(hash), nil
}

func ensureUsernameFree(ctx context.Context, tx application.Tx, username string, selfID int64) error {
	existing, err := tx.Users().FindActiveByUsername(ctx, username)
	switch {
	case errors.Is(err, domuser.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return domuser.ErrAlreadyExists
	default:
		return nil
	}
}
