package user

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
)

// Repository stores users. Active lookups skip soft-deleted rows; FindByID and
// ListAll include them.
type Repository interface {
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id int64) (*User, error)
	FindActiveByID(ctx context.Context, id int64) (*User, error)
	FindActiveByUsername(ctx context.Context, username string) (*User, error)
	// GetForUpdate loads an active user and holds it for the rest of the unit of work.
	GetForUpdate(ctx context.Context, id int64) (*User, error)
	ListActive(ctx context.Context, page paging.Request) ([]*User, int, error)
	ListAll(ctx context.Context) ([]*User, error)
}
