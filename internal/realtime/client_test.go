package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// dialTestClient spins up a server that registers each accepted connection
// with the hub under userID, and returns the peer side of the socket.
func dialTestClient(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := NewClient(conn)
		hub.Register(userID, client)
		go client.WritePump()
		go func() {
			client.ReadLoop(nil)
			hub.Unregister(client)
		}()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	peer, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = peer.Close() })

	// Registration happens in the server goroutine after the upgrade.
	deadline := time.Now().Add(2 * time.Second)
	for !hub.Online(userID) {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return peer
}

func TestClient_DeliversDispatchedLog(t *testing.T) {
	hub := NewHub(nil)
	peer := dialTestClient(t, hub, "owner")

	log := []entity.Notification{
		{Message: "x has liked your post", ActorID: "x", PostID: "p1", OwnerID: "owner"},
	}
	hub.DispatchNotifications("owner", log)

	_ = peer.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := peer.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got struct {
		Type          string                `json:"type"`
		Notifications []entity.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Type != "notifications" {
		t.Errorf("type = %q", got.Type)
	}
	if len(got.Notifications) != 1 || got.Notifications[0].ActorID != "x" {
		t.Errorf("notifications = %+v", got.Notifications)
	}
}

func TestClient_PeerCloseUnregisters(t *testing.T) {
	hub := NewHub(nil)
	peer := dialTestClient(t, hub, "u1")

	_ = peer.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Online("u1") {
		if time.Now().After(deadline) {
			t.Fatal("client still registered after peer close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestClient_SendAfterCloseFails(t *testing.T) {
	hub := NewHub(nil)
	_ = dialTestClient(t, hub, "u1")

	conns := hub.ConnectionsFor("u1")
	if len(conns) != 1 {
		t.Fatalf("connections = %d, want 1", len(conns))
	}
	c := conns[0].(*Client)
	c.Close()

	if err := c.SendJSON("late"); err == nil {
		t.Error("send after close should fail")
	}
}
