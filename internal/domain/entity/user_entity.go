package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in Password field.
//
// LikedPosts mirrors Post.Likes: a post id appears here exactly when this
// user's id appears in that post's likes. Both sides are written inside the
// same per-post critical section by the interaction service.
type User struct {
	ID            string
	Email         string
	Password      string
	Name          string
	AvatarURL     string
	Following     []string
	LikedPosts    []string
	Notifications []Notification
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Likes reports whether the user currently likes the given post.
func (u *User) Likes(postID string) bool {
	for _, id := range u.LikedPosts {
		if id == postID {
			return true
		}
	}
	return false
}

// Follows reports whether the user follows the given user.
func (u *User) Follows(userID string) bool {
	for _, id := range u.Following {
		if id == userID {
			return true
		}
	}
	return false
}
