package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/internal/domain/repository"
	"github.com/oksasatya/go-social-feed/pkg/response"
)

// writeServiceError maps service failures onto the API error envelope.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, application.ErrUnauthenticated):
		response.Error[any](c, http.StatusUnauthorized, "unauthenticated", nil)
	case errors.Is(err, application.ErrForbidden):
		response.Error[any](c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, repository.ErrConflict):
		response.Error[any](c, http.StatusConflict, "concurrent modification, retry the request", nil)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	default:
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
	}
}

func postView(p *entity.Post) gin.H {
	return gin.H{
		"id":             p.ID,
		"owner_id":       p.OwnerID,
		"owner_name":     p.OwnerName,
		"owner_avatar":   p.OwnerAvatar,
		"title":          p.Title,
		"description":    p.Description,
		"country":        p.Country,
		"continent":      p.Continent,
		"comment_access": p.CommentAccess,
		"image_url":      p.ImageURL,
		"likes":          emptyIfNil(p.Likes),
		"comments":       p.Comments,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}
}

func userView(u *entity.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"avatar_url":  u.AvatarURL,
		"following":   emptyIfNil(u.Following),
		"liked_posts": emptyIfNil(u.LikedPosts),
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
