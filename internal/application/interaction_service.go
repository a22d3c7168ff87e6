package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// InteractionService owns the like/unlike toggle and the owner-notification
// log that must stay consistent with it.
type InteractionService struct {
	Users      repo.UserRepository
	Posts      repo.PostRepository
	Dispatcher Dispatcher
	Logger     *logrus.Logger
	// NotifySelfLikes controls whether liking your own post produces a
	// notification. The toggle itself is always permitted.
	NotifySelfLikes bool

	locks *helpers.KeyedMutex
}

func NewInteractionService(users repo.UserRepository, posts repo.PostRepository, dispatcher Dispatcher, logger *logrus.Logger, notifySelfLikes bool, locks *helpers.KeyedMutex) *InteractionService {
	if locks == nil {
		locks = helpers.NewKeyedMutex()
	}
	return &InteractionService{
		Users:           users,
		Posts:           posts,
		Dispatcher:      dispatcher,
		Logger:          logger,
		NotifySelfLikes: notifySelfLikes,
		locks:           locks,
	}
}

// Locks exposes the per-post lock so comment operations can share it.
func (s *InteractionService) Locks() *helpers.KeyedMutex { return s.locks }

// ToggleLike flips the like membership between the acting user and the post,
// keeps the owner's notification log consistent with the flip, and pushes the
// updated log to the owner's live connections.
//
// Two concurrent toggles for the same post are serialized on a per-post lock;
// without it a lost update could leave a duplicate notification behind.
// Retrying after a conflict is safe: the log mutation coalesces on the
// (actor, post, owner) tuple, so a retry can never add a second entry.
func (s *InteractionService) ToggleLike(ctx context.Context, actorID, postID string) (*entity.Post, error) {
	if actorID == "" {
		return nil, ErrUnauthenticated
	}
	if !validID(postID) || !validID(actorID) {
		return nil, repo.ErrNotFound
	}

	unlock := s.locks.Lock("post:" + postID)
	defer unlock()

	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	actor, err := s.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	// Self-likes operate on a single loaded entity so membership and log
	// changes land in one write.
	owner := actor
	if post.OwnerID != actor.ID {
		owner, err = s.Users.GetByID(ctx, post.OwnerID)
		if err != nil {
			return nil, err
		}
	}

	logChanged := false
	if !post.LikedBy(actor.ID) {
		post.Likes = append(post.Likes, actor.ID)
		actor.LikedPosts = append(actor.LikedPosts, post.ID)

		if actor.ID != owner.ID || s.NotifySelfLikes {
			n := entity.Notification{
				Message:     actor.Name + " has liked your post",
				ActorID:     actor.ID,
				PostID:      post.ID,
				OwnerID:     owner.ID,
				ActorAvatar: actor.AvatarURL,
				CreatedAt:   time.Now().UTC(),
			}
			owner.Notifications, logChanged = entity.PrependNotification(owner.Notifications, n)
		}
	} else {
		post.Likes = removeString(post.Likes, actor.ID)
		actor.LikedPosts = removeString(actor.LikedPosts, post.ID)

		// A log entry the owner already cleared stays cleared; unliking
		// must never resurrect or double-remove anything.
		owner.Notifications, logChanged = entity.RemoveNotification(owner.Notifications, actor.ID, post.ID, owner.ID)
	}

	// The owner's log is persisted first; if the later writes conflict the
	// caller retries the whole toggle and the tuple match keeps the log
	// idempotent.
	if logChanged && owner != actor {
		if err := s.Users.Update(ctx, owner); err != nil {
			return nil, err
		}
	}
	if err := s.Posts.Update(ctx, post); err != nil {
		return nil, err
	}
	if err := s.Users.Update(ctx, actor); err != nil {
		return nil, err
	}

	if logChanged && s.Dispatcher != nil {
		s.Dispatcher.DispatchNotifications(owner.ID, owner.Notifications)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"actor_id": actor.ID,
			"post_id":  post.ID,
			"liked":    post.LikedBy(actor.ID),
		}).Debug("like toggled")
	}
	return post, nil
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
