package router

import (
	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/internal/container"
	pginfra "github.com/oksasatya/go-social-feed/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-social-feed/internal/interface/http"
	"github.com/oksasatya/go-social-feed/internal/router/modules"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// InitModules initializes all application modules and registers them with the
// router registry. Called once during startup after the container is filled.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	hub := container.GetHub()

	users := pginfra.NewUserRepository(container.GetPGPool())
	posts := pginfra.NewPostRepository(container.GetPGPool())

	// Interaction and comment services share one per-post lock space so a
	// toggle and a comment write on the same post never interleave.
	locks := helpers.NewKeyedMutex()

	userSvc := application.NewUserService(users, container.GetJWT(), container.GetRedis(), logger, container.GetES(), cfg.ESUsersIndex, hub)
	interactionSvc := application.NewInteractionService(users, posts, hub, logger, cfg.NotifySelfLikes, locks)
	commentSvc := application.NewCommentService(posts, container.GetRabbitPub(), logger, locks)
	postSvc := application.NewPostService(posts, users, logger, container.GetES(), cfg.ESPostsIndex, cfg.FeedPageSize, container.GetRedis())

	userHandler := handlers.NewUserHandler(userSvc, container.GetJWT(), logger, cfg.CookieDomain, cfg.CookieSecure)
	postHandler := handlers.NewPostHandler(postSvc, interactionSvc, commentSvc, logger)
	wsHandler := handlers.NewWSHandler(hub, logger, cfg.WSOrigins())

	r.Add(modules.NewUserModule(userHandler, container.GetJWT()))
	r.Add(modules.NewPostModule(postHandler, container.GetJWT()))
	r.Add(modules.NewWSModule(wsHandler, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
