package user

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/money"
)

var (
	ErrNotFound            = apperror.New(apperror.CodeUserNotFound, "user: not found")
	ErrAlreadyExists       = apperror.New(apperror.CodeUserAlreadyExists, "user: username already exists")
	ErrAccessDenied        = apperror.New(apperror.CodeAccessDenied, "user: access denied")
	ErrInsufficientBalance = apperror.New(apperror.CodeInsufficientBalance, "user: insufficient balance")
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole accepts role names case-insensitively. An empty string is USER.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleUser):
		return RoleUser, nil
	default:
		return "", apperror.Validation("unknown role %q", s)
	}
}

type User struct {
	ID       int64
	Username string
	// PasswordHash is a bcrypt digest; empty means no password was set.
	PasswordHash string
	Role         Role
	Balance      decimal.Decimal
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func New(username, passwordHash string, role Role, balance decimal.Decimal) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.Validation("username is required")
	}
	if err := money.Check("balance", balance); err != nil {
		return nil, err
	}
	if role == "" {
		role = RoleUser
	}

	now := time.Now().UTC()
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Balance:      balance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// Debit subtracts amount from the balance; the balance never goes negative.
func (u *User) Debit(amount decimal.Decimal) error {
	if err := money.Check("debit amount", amount); err != nil {
		return err
	}
	if !u.CanAfford(amount) {
		return ErrInsufficientBalance
	}
	u.Balance = u.Balance.Sub(amount)
	u.touch()
	return nil
}

func (u *User) Rename(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return apperror.Validation("username is required")
	}
	u.Username = username
	u.touch()
	return nil
}

func (u *User) ChangeRole(role Role) {
	u.Role = role
	u.touch()
}

func (u *User) ChangePasswordHash(hash string) {
	u.PasswordHash = hash
	u.touch()
}

func (u *User) SetBalance(balance decimal.Decimal) error {
	if err := money.Check("balance", balance); err != nil {
		return err
	}
	u.Balance = balance
	u.touch()
	return nil
}

func (u *User) MarkDeleted() {
	u.Deleted = true
	u.touch()
}

func (u *User) Clone() *User {
	cp := *u
	return &cp
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}
