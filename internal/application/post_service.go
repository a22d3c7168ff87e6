package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// PostService covers post CRUD, the profile/home feeds, and search indexing.
// The interaction and comment services own all mutations of likes/comments.
type PostService struct {
	Posts        repo.PostRepository
	Users        repo.UserRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESPostsIndex string
	FeedPageSize int
	Redis        *redis.Client
}

func NewPostService(posts repo.PostRepository, users repo.UserRepository, logger *logrus.Logger, es *elasticsearch.Client, esPostsIndex string, feedPageSize int, rdb *redis.Client) *PostService {
	if feedPageSize <= 0 {
		feedPageSize = 10
	}
	return &PostService{Posts: posts, Users: users, Logger: logger, ES: es, ESPostsIndex: esPostsIndex, FeedPageSize: feedPageSize, Redis: rdb}
}

type CreatePostInput struct {
	Title         string
	Description   string
	Country       string
	Continent     string
	CommentAccess bool
	ImageURL      string
}

type UpdatePostInput struct {
	Title         string
	Description   string
	Country       string
	Continent     string
	CommentAccess bool
	ImageURL      string
}

// CreatePost denormalizes the owner's current name and avatar onto the post.
func (s *PostService) CreatePost(ctx context.Context, ownerID string, in CreatePostInput) (*entity.Post, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	owner, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	p := &entity.Post{
		OwnerID:       owner.ID,
		OwnerName:     owner.Name,
		OwnerAvatar:   owner.AvatarURL,
		Title:         in.Title,
		Description:   in.Description,
		Country:       in.Country,
		Continent:     in.Continent,
		CommentAccess: in.CommentAccess,
		ImageURL:      in.ImageURL,
	}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	_ = s.indexPost(ctx, p)
	return p, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	if !validID(postID) {
		return nil, repo.ErrNotFound
	}
	return s.Posts.GetByID(ctx, postID)
}

// UpdatePost replaces the editable fields; only the owner may edit.
func (s *PostService) UpdatePost(ctx context.Context, actorID, postID string, in UpdatePostInput) (*entity.Post, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if !validID(postID) {
		return nil, repo.ErrNotFound
	}
	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != actorID {
		return nil, ErrForbidden
	}
	post.Title = in.Title
	post.Description = in.Description
	post.Country = in.Country
	post.Continent = in.Continent
	post.CommentAccess = in.CommentAccess
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}
	if err := s.Posts.Update(ctx, post); err != nil {
		return nil, err
	}
	_ = s.indexPost(ctx, post)
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, actorID, postID string) error {
	if actorID == "" {
		return ErrUnauthenticated
	}
	if !validID(postID) {
		return repo.ErrNotFound
	}
	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.OwnerID != actorID {
		return ErrForbidden
	}
	if err := s.Posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.deleteFromIndex(ctx, postID)
	return nil
}

// PostsByUser returns the user's most recent posts.
func (s *PostService) PostsByUser(ctx context.Context, userID string) ([]entity.Post, error) {
	if !validID(userID) {
		return nil, repo.ErrNotFound
	}
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.Posts.ListByOwner(ctx, userID, s.FeedPageSize)
}

type FeedQuery struct {
	// UserID narrows the feed to authors the user follows; empty means the
	// global feed.
	UserID    string
	Continent string
	Skip      int
}

// Feed returns one page of posts plus whether another page may exist.
func (s *PostService) Feed(ctx context.Context, q FeedQuery) ([]entity.Post, bool, error) {
	f := repo.PostFilter{Continent: q.Continent, Skip: q.Skip, Limit: s.FeedPageSize}
	if q.UserID != "" {
		if !validID(q.UserID) {
			return nil, false, repo.ErrNotFound
		}
		user, err := s.Users.GetByID(ctx, q.UserID)
		if err != nil {
			return nil, false, err
		}
		if len(user.Following) == 0 {
			return []entity.Post{}, false, nil
		}
		f.OwnerIDs = user.Following
	}
	posts, err := s.Posts.List(ctx, f)
	if err != nil {
		return nil, false, err
	}
	isMore := len(posts) == s.FeedPageSize
	return posts, isMore, nil
}

// CommentSummary is the per-post rollup the summary worker maintains in
// Redis. Counts can briefly trail the post's actual comments.
type CommentSummary struct {
	PostID       string         `json:"post_id"`
	CommentCount int            `json:"comment_count"`
	ByAuthor     map[string]int `json:"by_author"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// GetCommentSummary reads the cached rollup. ok is false when no summary has
// been computed yet or Redis is not configured.
func (s *PostService) GetCommentSummary(ctx context.Context, postID string) (CommentSummary, bool, error) {
	if !validID(postID) {
		return CommentSummary{}, false, repo.ErrNotFound
	}
	if s.Redis == nil {
		return CommentSummary{}, false, nil
	}
	var sum CommentSummary
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, "post:comments:summary:"+postID, &sum)
	if err != nil {
		return CommentSummary{}, false, err
	}
	return sum, ok, nil
}

// SearchPosts performs a multi_match query over title, description and country.
func (s *PostService) SearchPosts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "country"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESPostsIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *PostService) indexPost(ctx context.Context, p *entity.Post) error {
	if s.ES == nil || s.ESPostsIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":          p.ID,
		"owner_id":    p.OwnerID,
		"owner_name":  p.OwnerName,
		"title":       p.Title,
		"description": p.Description,
		"country":     p.Country,
		"continent":   p.Continent,
		"created_at":  p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESPostsIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).Warn("es index response error")
	}
	return nil
}

func (s *PostService) deleteFromIndex(ctx context.Context, postID string) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESPostsIndex, DocumentID: postID}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", postID).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}
