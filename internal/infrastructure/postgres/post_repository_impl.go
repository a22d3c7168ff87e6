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

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, owner_id, owner_name, owner_avatar, title, description,
	country, continent, comment_access, image_url, likes, comments, version, created_at, updated_at`

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	likes, err := json.Marshal(emptySlice(p.Likes))
	if err != nil {
		return err
	}
	comments, err := json.Marshal(emptyComments(p.Comments))
	if err != nil {
		return err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (owner_id, owner_name, owner_avatar, title, description,
			country, continent, comment_access, image_url, likes, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, version, created_at, updated_at
	`, p.OwnerID, p.OwnerName, p.OwnerAvatar, p.Title, p.Description,
		p.Country, p.Continent, p.CommentAccess, p.ImageURL, likes, comments)

	return row.Scan(&p.ID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Post, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) List(ctx context.Context, f repository.PostFilter) ([]entity.Post, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}

	// Empty OwnerIDs / Continent disable the respective filter.
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE (cardinality($1::text[]) = 0 OR owner_id::text = ANY($1::text[]))
		  AND ($2 = '' OR continent = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, emptySlice(f.OwnerIDs), f.Continent, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPosts(rows)
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	likes, err := json.Marshal(emptySlice(p.Likes))
	if err != nil {
		return err
	}
	comments, err := json.Marshal(emptyComments(p.Comments))
	if err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $1, description = $2, country = $3, continent = $4,
		    comment_access = $5, image_url = $6, owner_name = $7, owner_avatar = $8,
		    likes = $9, comments = $10, version = version + 1, updated_at = $11
		WHERE id = $12 AND version = $13
	`, p.Title, p.Description, p.Country, p.Continent,
		p.CommentAccess, p.ImageURL, p.OwnerName, p.OwnerAvatar,
		likes, comments, p.UpdatedAt, p.ID, p.Version)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return repository.ErrConflict
		}
		return repository.ErrNotFound
	}

	p.Version++
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*entity.Post, error) {
	p := &entity.Post{}
	var likes, comments []byte

	if err := row.Scan(&p.ID, &p.OwnerID, &p.OwnerName, &p.OwnerAvatar, &p.Title, &p.Description,
		&p.Country, &p.Continent, &p.CommentAccess, &p.ImageURL,
		&likes, &comments, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(likes, &p.Likes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(comments, &p.Comments); err != nil {
		return nil, err
	}
	return p, nil
}

func collectPosts(rows pgx.Rows) ([]entity.Post, error) {
	posts := make([]entity.Post, 0, 10)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func emptyComments(s []entity.Comment) []entity.Comment {
	if s == nil {
		return []entity.Comment{}
	}
	return s
}

var _ repository.PostRepository = (*PostRepository)(nil)
