package repository

import (
	"context"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Update is a conditional write keyed on the entity's Version; a concurrent
// modification surfaces as ErrConflict.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
