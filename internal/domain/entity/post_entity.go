package entity

import "time"

// Post is the aggregate root for the post domain.
// Owner name and avatar are denormalized onto the post at creation time so
// feed reads do not join against users.
type Post struct {
	ID            string
	OwnerID       string
	OwnerName     string
	OwnerAvatar   string
	Title         string
	Description   string
	Country       string
	Continent     string
	CommentAccess bool
	ImageURL      string
	Likes         []string
	Comments      []Comment
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Comment lives inside its post's ordered comment sequence. ID is unique
// within the post; sequence position is insertion order and survives edits.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// LikedBy reports whether userID is in the post's likes set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CommentByID returns the index of the comment with the given id, or -1.
func (p *Post) CommentByID(commentID string) int {
	for i, c := range p.Comments {
		if c.ID == commentID {
			return i
		}
	}
	return -1
}
