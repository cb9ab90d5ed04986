package memory

import (
	"context"
	"time"

	"github.com/AirTechNEO/coworkconnect/internal/entity"
)

type userRepository struct {
	s *storage
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[user.Email]; taken {
		return entity.ErrUserAlreadyExists
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	user.CreatedAt = time.Now()
	r.s.users[user.ID] = cloneUser(user)
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	stored := cloneUser(user)

	return r.s.write(ctx, op{
		check: func() error {
			if _, ok := r.s.users[stored.ID]; !ok {
				return entity.ErrUserNotFound
			}
			if id, taken := r.s.emails[stored.Email]; taken && id != stored.ID {
				return entity.ErrUserAlreadyExists
			}
			return nil
		},
		apply: func() {
			old := r.s.users[stored.ID]
			delete(r.s.emails, old.Email)
			stored.CreatedAt = old.CreatedAt
			r.s.users[stored.ID] = stored
			r.s.emails[stored.Email] = stored.ID
		},
	})
}

// LockForUpdate holds the user's lock until the surrounding unit of work ends.
// Outside a unit of work it only checks that the user exists.
func (r *userRepository) LockForUpdate(ctx context.Context, id int64) error {
	r.s.mu.RLock()
	_, ok := r.s.users[id]
	r.s.mu.RUnlock()
	if !ok {
		return entity.ErrUserNotFound
	}

	t, inTx := txFrom(ctx)
	if !inTx || t.locked[id] {
		return nil
	}
	if err := r.s.userLocks.Lock(ctx, id); err != nil {
		return err
	}
	t.locked[id] = true
	return nil
}
