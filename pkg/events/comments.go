package events

import "time"

// CommentsChanged is published to the comments queue after every comment
// create/edit/delete. Consumers recompute the post's comment summary; the
// publisher never waits on them.
type CommentsChanged struct {
	PostID     string    `json:"post_id"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
