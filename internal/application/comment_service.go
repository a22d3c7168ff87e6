package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
	"github.com/oksasatya/go-social-feed/pkg/events"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// CommentService maintains a post's ordered comment sequence. Every mutation
// fires the comments-changed event so the summary worker recomputes
// downstream aggregates; the service never waits on that.
type CommentService struct {
	Posts     repo.PostRepository
	Publisher EventPublisher
	Logger    *logrus.Logger

	locks *helpers.KeyedMutex
}

func NewCommentService(posts repo.PostRepository, publisher EventPublisher, logger *logrus.Logger, locks *helpers.KeyedMutex) *CommentService {
	if locks == nil {
		locks = helpers.NewKeyedMutex()
	}
	return &CommentService{Posts: posts, Publisher: publisher, Logger: logger, locks: locks}
}

// CreateComment appends a new comment with a fresh identity, preserving
// insertion order.
func (s *CommentService) CreateComment(ctx context.Context, postID, authorID, text string) (*entity.Post, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}
	if !validID(postID) {
		return nil, repo.ErrNotFound
	}

	unlock := s.locks.Lock("post:" + postID)
	defer unlock()

	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Comments = append(post.Comments, entity.Comment{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Message:   text,
		CreatedAt: time.Now().UTC(),
	})
	if err := s.Posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.commentsChanged(ctx, postID, authorID)
	return post, nil
}

// EditComment replaces the message text of the matching comment in place;
// identity and sequence position are unchanged.
func (s *CommentService) EditComment(ctx context.Context, postID, commentID, authorID, text string) (*entity.Post, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}
	if !validID(postID) {
		return nil, repo.ErrNotFound
	}

	unlock := s.locks.Lock("post:" + postID)
	defer unlock()

	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	idx := post.CommentByID(commentID)
	if idx < 0 {
		return nil, repo.ErrNotFound
	}
	post.Comments[idx].Message = text
	if err := s.Posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.commentsChanged(ctx, postID, authorID)
	return post, nil
}

// DeleteComment removes the matching comment, keeping the order of the rest.
// Deleting an id that is already gone is a no-op success.
func (s *CommentService) DeleteComment(ctx context.Context, postID, commentID, authorID string) (*entity.Post, error) {
	if authorID == "" {
		return nil, ErrUnauthenticated
	}
	if !validID(postID) {
		return nil, repo.ErrNotFound
	}

	unlock := s.locks.Lock("post:" + postID)
	defer unlock()

	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if idx := post.CommentByID(commentID); idx >= 0 {
		post.Comments = append(post.Comments[:idx], post.Comments[idx+1:]...)
		if err := s.Posts.Update(ctx, post); err != nil {
			return nil, err
		}
	}
	s.commentsChanged(ctx, postID, authorID)
	return post, nil
}

func (s *CommentService) commentsChanged(ctx context.Context, postID, actorID string) {
	if s.Publisher == nil {
		return
	}
	ev := events.CommentsChanged{PostID: postID, ActorID: actorID, OccurredAt: time.Now().UTC()}
	if err := s.Publisher.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("post_id", postID).Warn("comments-changed publish failed")
	}
}
