package entity

import "time"

// Notification is a single standing notification in a user's log.
//
// Notifications carry no identity of their own: the (ActorID, PostID,
// OwnerID) tuple is the coalescing key. The log holds at most one entry per
// tuple and stores current standing notifications, not an append-only
// history. Message text is display-only and never used for matching.
type Notification struct {
	Message     string    `json:"message"`
	ActorID     string    `json:"actor_id"`
	PostID      string    `json:"post_id"`
	OwnerID     string    `json:"owner_id"`
	ActorAvatar string    `json:"actor_avatar,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Matches reports whether the notification refers to the same logical event,
// comparing all three tuple fields.
func (n Notification) Matches(actorID, postID, ownerID string) bool {
	return n.ActorID == actorID && n.PostID == postID && n.OwnerID == ownerID
}

// PrependNotification inserts n at the head of the log (newest first) unless
// an entry with the same tuple already exists. It returns the resulting log
// and whether it changed.
func PrependNotification(log []Notification, n Notification) ([]Notification, bool) {
	for _, existing := range log {
		if existing.Matches(n.ActorID, n.PostID, n.OwnerID) {
			return log, false
		}
	}
	out := make([]Notification, 0, len(log)+1)
	out = append(out, n)
	out = append(out, log...)
	return out, true
}

// RemoveNotification removes the entry matching the tuple, preserving the
// order of the remaining entries. It returns the resulting log and whether
// an entry was removed.
func RemoveNotification(log []Notification, actorID, postID, ownerID string) ([]Notification, bool) {
	for i, n := range log {
		if n.Matches(actorID, postID, ownerID) {
			out := make([]Notification, 0, len(log)-1)
			out = append(out, log[:i]...)
			out = append(out, log[i+1:]...)
			return out, true
		}
	}
	return log, false
}
