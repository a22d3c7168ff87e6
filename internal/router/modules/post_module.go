package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-feed/internal/container"

	handlers "github.com/oksasatya/go-social-feed/internal/interface/http"
	"github.com/oksasatya/go-social-feed/internal/interface/middleware"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// PostModule wires post CRUD, the feed, like toggles and comments.
// Everything is behind auth; likes and comments get a tighter per-user
// limiter since they fan out notification and recompute work.

type PostModule struct {
	Handler *handlers.PostHandler
	JWT     *helpers.JWTManager
}

func NewPostModule(h *handlers.PostHandler, jwt *helpers.JWTManager) *PostModule {
	return &PostModule{Handler: h, JWT: jwt}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/posts", m.Handler.Create)
		auth.GET("/posts/:id", m.Handler.Get)
		auth.PUT("/posts/:id", m.Handler.Update)
		auth.DELETE("/posts/:id", m.Handler.Delete)
		auth.GET("/users/:id/posts", m.Handler.UserPosts)
		auth.GET("/posts/:id/comments/summary", m.Handler.CommentSummary)
		auth.GET("/feed", m.Handler.Feed)
		// Search posts via Elasticsearch
		auth.GET("/posts/search", m.Handler.Search)
	}

	interact := auth.Group("/")
	interact.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		interact.POST("/posts/:id/like", m.Handler.ToggleLike)
		interact.POST("/posts/:id/comments", m.Handler.CreateComment)
		interact.PUT("/posts/:id/comments/:commentId", m.Handler.EditComment)
		interact.DELETE("/posts/:id/comments/:commentId", m.Handler.DeleteComment)
	}
}
