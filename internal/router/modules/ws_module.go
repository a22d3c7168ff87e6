package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-feed/internal/container"

	handlers "github.com/oksasatya/go-social-feed/internal/interface/http"
	"github.com/oksasatya/go-social-feed/internal/interface/middleware"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// WSModule exposes the realtime endpoint. The upgrade request authenticates
// like any other route (cookie, bearer header or token query param), so the
// connection is bound to a user before it ever reaches the hub.

type WSModule struct {
	Handler *handlers.WSHandler
	JWT     *helpers.JWTManager
}

func NewWSModule(h *handlers.WSHandler, jwt *helpers.JWTManager) *WSModule {
	return &WSModule{Handler: h, JWT: jwt}
}

func (m *WSModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		auth.GET("/ws", m.Handler.Serve)
	}
}
