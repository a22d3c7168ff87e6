package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oksasatya/go-social-feed/internal/application"
	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
	"github.com/oksasatya/go-social-feed/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// stubUsers / stubPosts are minimal in-memory repositories for handler tests.
type stubUsers struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func (s *stubUsers) Create(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *stubUsers) Update(_ context.Context, u *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Version != u.Version {
		return repo.ErrConflict
	}
	u.Version++
	s.users[u.ID] = *u
	return nil
}

type stubPosts struct {
	mu    sync.Mutex
	posts map[string]entity.Post
}

func (s *stubPosts) Create(_ context.Context, p *entity.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.posts[p.ID] = *p
	return nil
}

func (s *stubPosts) GetByID(_ context.Context, id string) (*entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &p, nil
}

func (s *stubPosts) ListByOwner(_ context.Context, ownerID string, limit int) ([]entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Post{}
	for _, p := range s.posts {
		if p.OwnerID == ownerID && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPosts) List(_ context.Context, f repo.PostFilter) ([]entity.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Post{}
	for _, p := range s.posts {
		out = append(out, p)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *stubPosts) Update(_ context.Context, p *entity.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.posts[p.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if cur.Version != p.Version {
		return repo.ErrConflict
	}
	p.Version++
	s.posts[p.ID] = *p
	return nil
}

func (s *stubPosts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// identityAs injects the authenticated user id the way the auth middleware
// would after validating a token.
func identityAs(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

type testEnv struct {
	router *gin.Engine
	users  *stubUsers
	posts  *stubPosts
}

func newTestEnv(t *testing.T, userID string) *testEnv {
	t.Helper()

	users := &stubUsers{users: make(map[string]entity.User)}
	posts := &stubPosts{posts: make(map[string]entity.Post)}

	interactions := application.NewInteractionService(users, posts, nil, nil, false, nil)
	comments := application.NewCommentService(posts, nil, nil, interactions.Locks())
	postSvc := application.NewPostService(posts, users, nil, nil, "", 10, nil)
	h := NewPostHandler(postSvc, interactions, comments, nil)

	r := gin.New()
	api := r.Group("/api", identityAs(userID))
	api.POST("/posts", h.Create)
	api.GET("/posts/:id", h.Get)
	api.POST("/posts/:id/like", h.ToggleLike)
	api.POST("/posts/:id/comments", h.CreateComment)
	api.PUT("/posts/:id/comments/:commentId", h.EditComment)
	api.DELETE("/posts/:id/comments/:commentId", h.DeleteComment)

	return &testEnv{router: r, users: users, posts: posts}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostHandler_CreateAndGet(t *testing.T) {
	actor := uuid.NewString()
	env := newTestEnv(t, actor)
	env.users.users[actor] = entity.User{ID: actor, Name: "Alice"}

	w := doJSON(t, env.router, http.MethodPost, "/api/posts", gin.H{"title": "hello", "continent": "Asia"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	var created struct {
		Data struct {
			ID        string `json:"id"`
			OwnerName string `json:"owner_name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.OwnerName != "Alice" {
		t.Errorf("owner_name = %q, want Alice", created.Data.OwnerName)
	}

	w = doJSON(t, env.router, http.MethodGet, "/api/posts/"+created.Data.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
}

func TestPostHandler_CreateValidation(t *testing.T) {
	env := newTestEnv(t, uuid.NewString())

	w := doJSON(t, env.router, http.MethodPost, "/api/posts", gin.H{"description": "no title"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestPostHandler_ToggleLike(t *testing.T) {
	actor := uuid.NewString()
	owner := uuid.NewString()
	env := newTestEnv(t, actor)
	env.users.users[actor] = entity.User{ID: actor, Name: "actor"}
	env.users.users[owner] = entity.User{ID: owner, Name: "owner"}
	postID := uuid.NewString()
	env.posts.posts[postID] = entity.Post{ID: postID, OwnerID: owner, Title: "post"}

	w := doJSON(t, env.router, http.MethodPost, "/api/posts/"+postID+"/like", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like status = %d, body = %s", w.Code, w.Body.String())
	}
	var out struct {
		Data struct {
			Likes []string `json:"likes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Data.Likes) != 1 || out.Data.Likes[0] != actor {
		t.Errorf("likes = %v, want [%s]", out.Data.Likes, actor)
	}

	// Second toggle removes the like.
	w = doJSON(t, env.router, http.MethodPost, "/api/posts/"+postID+"/like", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unlike status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Data.Likes) != 0 {
		t.Errorf("likes after unlike = %v, want empty", out.Data.Likes)
	}
}

func TestPostHandler_LikeUnknownPost(t *testing.T) {
	actor := uuid.NewString()
	env := newTestEnv(t, actor)
	env.users.users[actor] = entity.User{ID: actor}

	w := doJSON(t, env.router, http.MethodPost, "/api/posts/"+uuid.NewString()+"/like", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPostHandler_CommentLifecycle(t *testing.T) {
	actor := uuid.NewString()
	env := newTestEnv(t, actor)
	env.users.users[actor] = entity.User{ID: actor}
	postID := uuid.NewString()
	env.posts.posts[postID] = entity.Post{ID: postID, OwnerID: actor}

	w := doJSON(t, env.router, http.MethodPost, "/api/posts/"+postID+"/comments", gin.H{"message": "first"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create comment status = %d, body = %s", w.Code, w.Body.String())
	}
	var out struct {
		Data struct {
			Comments []struct {
				ID      string `json:"id"`
				Message string `json:"message"`
			} `json:"comments"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Data.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(out.Data.Comments))
	}
	commentID := out.Data.Comments[0].ID

	w = doJSON(t, env.router, http.MethodPut, "/api/posts/"+postID+"/comments/"+commentID, gin.H{"message": "edited"})
	if w.Code != http.StatusOK {
		t.Fatalf("edit status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Data.Comments[0].Message != "edited" {
		t.Errorf("message = %q, want edited", out.Data.Comments[0].Message)
	}

	w = doJSON(t, env.router, http.MethodDelete, "/api/posts/"+postID+"/comments/"+commentID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Data.Comments) != 0 {
		t.Errorf("comments after delete = %d, want 0", len(out.Data.Comments))
	}

	// Editing the deleted comment is a 404.
	w = doJSON(t, env.router, http.MethodPut, "/api/posts/"+postID+"/comments/"+commentID, gin.H{"message": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("edit deleted status = %d, want 404", w.Code)
	}
}

func TestPostHandler_UnauthenticatedActor(t *testing.T) {
	env := newTestEnv(t, "")
	postID := uuid.NewString()
	env.posts.posts[postID] = entity.Post{ID: postID, OwnerID: uuid.NewString()}

	w := doJSON(t, env.router, http.MethodPost, "/api/posts/"+postID+"/like", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
