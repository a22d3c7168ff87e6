package realtime

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
)

// Connection is one live, addressable client channel. Implementations must
// tolerate concurrent SendJSON calls.
type Connection interface {
	SendJSON(v any) error
	Close()
}

// TypingEvent is an ephemeral broadcast; it never touches the store.
type TypingEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type notificationsPayload struct {
	Type          string                `json:"type"`
	Notifications []entity.Notification `json:"notifications"`
}

type typingPayload struct {
	Type string `json:"type"`
	From string `json:"from"`
}

// Hub tracks which users are reachable over live connections. A user may hold
// several connections (devices, tabs). State is process-local only: the hub
// starts empty and is rebuilt from connect events after a restart.
type Hub struct {
	mu     sync.RWMutex
	users  map[string]map[Connection]struct{}
	owners map[Connection]string
	logger *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		users:  make(map[string]map[Connection]struct{}),
		owners: make(map[Connection]string),
		logger: logger,
	}
}

// Register adds conn under userID, creating the entry if absent. Registering
// the same connection twice is a no-op.
func (h *Hub) Register(userID string, conn Connection) {
	if userID == "" || conn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Connection]struct{})
	}
	h.users[userID][conn] = struct{}{}
	h.owners[conn] = userID
}

// Unregister removes conn from whichever user owns it. The user entry is
// deleted when its last connection goes away, so "is online" is exactly
// "entry exists".
func (h *Hub) Unregister(conn Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, ok := h.owners[conn]
	if !ok {
		return
	}
	delete(h.owners, conn)
	if conns, ok := h.users[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.users, userID)
		}
	}
}

// ConnectionsFor returns a snapshot of the user's live connections; empty
// means offline.
func (h *Hub) ConnectionsFor(userID string) []Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]Connection, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		conns = append(conns, c)
	}
	return conns
}

// Online reports whether the user has at least one live connection.
func (h *Hub) Online(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// DispatchNotifications pushes the full updated log to every live connection
// of the target user. The receiving side replaces its local view wholesale.
// Offline targets are a deliberate no-op: durability comes from the persisted
// log, not from the hub.
func (h *Hub) DispatchNotifications(userID string, log []entity.Notification) {
	conns := h.ConnectionsFor(userID)
	if len(conns) == 0 {
		return
	}
	payload := notificationsPayload{Type: "notifications", Notifications: log}
	for _, c := range conns {
		if err := c.SendJSON(payload); err != nil && h.logger != nil {
			h.logger.WithError(err).WithField("user_id", userID).Warn("notification push failed")
		}
	}
}

// BroadcastTyping delivers a typing event to the target user's connections.
// Fire-and-forget; dropped silently when the target is offline.
func (h *Hub) BroadcastTyping(ev TypingEvent) {
	conns := h.ConnectionsFor(ev.To)
	if len(conns) == 0 {
		return
	}
	payload := typingPayload{Type: "typing", From: ev.From}
	for _, c := range conns {
		_ = c.SendJSON(payload)
	}
}

// Shutdown closes every connection and drops all entries.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	conns := make([]Connection, 0, len(h.owners))
	for c := range h.owners {
		conns = append(conns, c)
	}
	h.users = make(map[string]map[Connection]struct{})
	h.owners = make(map[Connection]string)
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
