package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/pkg/response"
	"github.com/oksasatya/go-social-feed/pkg/validation"
)

type PostHandler struct {
	Posts        *application.PostService
	Interactions *application.InteractionService
	Comments     *application.CommentService
	Logger       *logrus.Logger
}

func NewPostHandler(posts *application.PostService, interactions *application.InteractionService, comments *application.CommentService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Posts: posts, Interactions: interactions, Comments: comments, Logger: logger}
}

type postRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	Country       string `json:"country"`
	Continent     string `json:"continent"`
	CommentAccess bool   `json:"comment_access"`
	ImageURL      string `json:"image_url"`
}

type commentRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Posts.CreatePost(c.Request.Context(), c.GetString("userID"), application.CreatePostInput{
		Title:         req.Title,
		Description:   req.Description,
		Country:       req.Country,
		Continent:     req.Continent,
		CommentAccess: req.CommentAccess,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, postView(p), "post created", nil)
}

func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.Posts.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, postView(p), "post", nil)
}

func (h *PostHandler) Update(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Posts.UpdatePost(c.Request.Context(), c.GetString("userID"), c.Param("id"), application.UpdatePostInput{
		Title:         req.Title,
		Description:   req.Description,
		Country:       req.Country,
		Continent:     req.Continent,
		CommentAccess: req.CommentAccess,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, postView(p), "post updated", nil)
}

func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.Posts.DeletePost(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "post deleted", nil)
}

// UserPosts returns the given user's most recent posts.
func (h *PostHandler) UserPosts(c *gin.Context) {
	posts, err := h.Posts.PostsByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	views := make([]gin.H, 0, len(posts))
	for i := range posts {
		views = append(views, postView(&posts[i]))
	}
	response.Success(c, http.StatusOK, views, "posts", nil)
}

// Feed serves one page of the home feed. With user_id it narrows to authors
// the user follows; continent filters further; skip pages through.
func (h *PostHandler) Feed(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	posts, isMore, err := h.Posts.Feed(c.Request.Context(), application.FeedQuery{
		UserID:    c.Query("user_id"),
		Continent: c.Query("continent"),
		Skip:      skip,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	views := make([]gin.H, 0, len(posts))
	for i := range posts {
		views = append(views, postView(&posts[i]))
	}
	response.Success(c, http.StatusOK, views, "feed", map[string]any{"is_more": isMore})
}

func (h *PostHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	out, err := h.Posts.SearchPosts(c.Request.Context(), q, size)
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, out, "posts", nil)
}

// CommentSummary serves the worker-maintained rollup from Redis.
func (h *PostHandler) CommentSummary(c *gin.Context) {
	sum, ok, err := h.Posts.GetCommentSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !ok {
		response.Error[any](c, http.StatusNotFound, "no summary yet", nil)
		return
	}
	response.Success(c, http.StatusOK, sum, "comment summary", nil)
}

// ToggleLike flips the caller's like on the post and returns the updated
// post view. The owner's notification log is maintained and pushed as a
// side effect.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	p, err := h.Interactions.ToggleLike(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, postView(p), "like toggled", nil)
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Comments.CreateComment(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.Message)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, postView(p), "comment created", nil)
}

func (h *PostHandler) EditComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Comments.EditComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), c.GetString("userID"), req.Message)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, postView(p), "comment updated", nil)
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	p, err := h.Comments.DeleteComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), c.GetString("userID"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, postView(p), "comment deleted", nil)
}
