package memory

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/paging"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
)

type userRepository struct{ t *tx }

func (r userRepository) Insert(_ context.Context, u *domuser.User) error {
	if r.usernameTaken(u.Username, 0) {
		return domuser.ErrAlreadyExists
	}
	st := r.t.write()
	st.seq.users++
	u.ID = st.seq.users
	st.users[u.ID] = u.Clone()
	return nil
}

func (r userRepository) Update(_ context.Context, u *domuser.User) error {
	if _, ok := r.t.read().users[u.ID]; !ok {
		return domuser.ErrNotFound
	}
	if !u.Deleted && r.usernameTaken(u.Username, u.ID) {
		return domuser.ErrAlreadyExists
	}
	r.t.write().users[u.ID] = u.Clone()
	return nil
}

func (r userRepository) FindByID(_ context.Context, id int64) (*domuser.User, error) {
	u, ok := r.t.read().users[id]
	if !ok {
		return nil, domuser.ErrNotFound
	}
	return u.Clone(), nil
}

func (r userRepository) FindActiveByID(_ context.Context, id int64) (*domuser.User, error) {
	u, ok := r.t.read().users[id]
	if !ok || u.Deleted {
		return nil, domuser.ErrNotFound
	}
	return u.Clone(), nil
}

func (r userRepository) FindActiveByUsername(_ context.Context, username string) (*domuser.User, error) {
	for _, id := range sortedIDs(r.t.read().users) {
		if u := r.t.read().users[id]; !u.Deleted && u.Username == username {
			return u.Clone(), nil
		}
	}
	return nil, domuser.ErrNotFound
}

// GetForUpdate needs no extra locking: the whole unit of work holds the store.
func (r userRepository) GetForUpdate(ctx context.Context, id int64) (*domuser.User, error) {
	return r.FindActiveByID(ctx, id)
}

func (r userRepository) ListActive(_ context.Context, page paging.Request) ([]*domuser.User, int, error) {
	var active []*domuser.User
	for _, id := range sortedIDs(r.t.read().users) {
		if u := r.t.read().users[id]; !u.Deleted {
			active = append(active, u.Clone())
		}
	}
	return paging.Slice(active, page), len(active), nil
}

func (r userRepository) ListAll(_ context.Context) ([]*domuser.User, error) {
	out := make([]*domuser.User, 0, len(r.t.read().users))
	for _, id := range sortedIDs(r.t.read().users) {
		out = append(out, r.t.read().users[id].Clone())
	}
	return out, nil
}

func (r userRepository) usernameTaken(username string, selfID int64) bool {
	for id, u := range r.t.read().users {
		if id != selfID && !u.Deleted && u.Username == username {
			return true
		}
	}
	return false
}
