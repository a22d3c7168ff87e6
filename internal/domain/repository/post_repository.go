package repository

import (
	"context"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
)

// PostFilter narrows List results. Zero values mean "no filter".
type PostFilter struct {
	OwnerIDs  []string
	Continent string
	Skip      int
	Limit     int
}

// PostRepository defines the interface for post-related database operations.
// Update follows the same conditional-write contract as UserRepository.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Post, error)
	List(ctx context.Context, f PostFilter) ([]entity.Post, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
}
