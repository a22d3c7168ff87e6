package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	following, err := json.Marshal(emptySlice(u.Following))
	if err != nil {
		return err
	}
	liked, err := json.Marshal(emptySlice(u.LikedPosts))
	if err != nil {
		return err
	}
	notifs, err := json.Marshal(emptyNotifications(u.Notifications))
	if err != nil {
		return err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, avatar_url, following, liked_posts, notifications)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.AvatarURL, following, liked, notifs)

	return row.Scan(&u.ID, &u.Version, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	var following, liked, notifs []byte

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, name, avatar_url, following, liked_posts, notifications, version, created_at, updated_at
		FROM users
		WHERE `+column+` = $1
	`, value)

	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.AvatarURL,
		&following, &liked, &notifs, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(following, &u.Following); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(liked, &u.LikedPosts); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(notifs, &u.Notifications); err != nil {
		return nil, err
	}
	return u, nil
}

// Update writes the full user row conditionally on the version read at load
// time. A version miss on an existing row is reported as ErrConflict.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	following, err := json.Marshal(emptySlice(u.Following))
	if err != nil {
		return err
	}
	liked, err := json.Marshal(emptySlice(u.LikedPosts))
	if err != nil {
		return err
	}
	notifs, err := json.Marshal(emptyNotifications(u.Notifications))
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, name = $3, avatar_url = $4,
		    following = $5, liked_posts = $6, notifications = $7,
		    version = version + 1, updated_at = $8
		WHERE id = $9 AND version = $10
	`, u.Email, u.Password, u.Name, u.AvatarURL, following, liked, notifs, u.UpdatedAt, u.ID, u.Version)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, u.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return repository.ErrConflict
		}
		return repository.ErrNotFound
	}

	u.Version++
	return nil
}

// emptySlice keeps jsonb columns as [] rather than null.
func emptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyNotifications(s []entity.Notification) []entity.Notification {
	if s == nil {
		return []entity.Notification{}
	}
	return s
}

var _ repository.UserRepository = (*UserRepository)(nil)
