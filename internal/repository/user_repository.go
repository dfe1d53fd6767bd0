package repository

import (
	"context"
	"strings"

	"github.com/spec-kit/admin-console/internal/domain"
)

// UserRecord is a stored account with its password hash.
type UserRecord struct {
	domain.User
	PasswordHash string
}

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user UserRecord) (UserRecord, error)
	Update(ctx context.Context, user UserRecord) (UserRecord, error)
	GetByID(ctx context.Context, id int) (UserRecord, error)
	GetByEmail(ctx context.Context, email string) (UserRecord, error)
	List(ctx context.Context) ([]UserRecord, error)
	Delete(ctx context.Context, id int) error
}

type userRepository struct {
	rows *table[UserRecord]
}

// NewUserRepository returns an in-memory implementation.
func NewUserRepository() UserRepository {
	return &userRepository{rows: newTable[UserRecord]()}
}

func (r *userRepository) Create(_ context.Context, user UserRecord) (UserRecord, error) {
	return r.rows.insert(func(id int) UserRecord {
		user.ID = id
		return user
	}), nil
}

func (r *userRepository) Update(_ context.Context, user UserRecord) (UserRecord, error) {
	return r.rows.update(user.ID, func(UserRecord) UserRecord { return user })
}

func (r *userRepository) GetByID(_ context.Context, id int) (UserRecord, error) {
	return r.rows.get(id)
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (UserRecord, error) {
	matches := r.rows.list(func(u UserRecord) bool { return strings.EqualFold(u.Email, email) })
	if len(matches) == 0 {
		return UserRecord{}, ErrNotFound
	}
	return matches[0], nil
}

func (r *userRepository) List(_ context.Context) ([]UserRecord, error) {
	return r.rows.list(nil), nil
}

func (r *userRepository) Delete(_ context.Context, id int) error {
	return r.rows.remove(id)
}
