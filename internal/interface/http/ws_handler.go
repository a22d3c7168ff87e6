package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/realtime"
)

// WSHandler upgrades authenticated requests to websocket connections and
// keeps the session registry in sync with connection lifecycle.
type WSHandler struct {
	Hub      *realtime.Hub
	Logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, logger *logrus.Logger, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &WSHandler{
		Hub:    hub,
		Logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// No configured origins means any origin (dev parity with
				// the CORS default).
				if len(allowed) == 0 {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

// inboundMessage is what clients may send over the socket. Only typing
// events exist today; unknown types are ignored.
type inboundMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
}

// Serve runs behind the auth middleware, so userID is always set here.
func (h *WSHandler) Serve(c *gin.Context) {
	userID := c.GetString("userID")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("websocket upgrade failed")
		}
		return
	}

	client := realtime.NewClient(conn)
	h.Hub.Register(userID, client)
	go client.WritePump()

	if h.Logger != nil {
		h.Logger.WithField("user_id", userID).Debug("websocket connected")
	}

	client.ReadLoop(func(msg []byte) {
		var in inboundMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			return
		}
		if in.Type == "typing" && in.To != "" {
			h.Hub.BroadcastTyping(realtime.TypingEvent{From: userID, To: in.To})
		}
	})

	h.Hub.Unregister(client)
	client.Close()
	if h.Logger != nil {
		h.Logger.WithField("user_id", userID).Debug("websocket disconnected")
	}
}
