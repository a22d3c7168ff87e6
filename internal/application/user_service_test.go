package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	repo "github.com/oksasatya/go-social-feed/internal/domain/repository"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

func newUserFixture(t *testing.T) (*UserService, *memUsers, *recordingDispatcher) {
	t.Helper()
	users := newMemUsers()
	disp := &recordingDispatcher{}
	svc := NewUserService(users, nil, nil, nil, nil, "", disp)
	return svc, users, disp
}

func TestRegister_And_Authenticate(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "secret123", Name: "Alice"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.ID == "" {
		t.Error("registered user has no id")
	}
	if u.Password == "secret123" {
		t.Error("password stored in plaintext")
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "other1234", Name: "Clone"}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email err = %v, want ErrEmailTaken", err)
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "secret123"); err != nil {
		t.Errorf("authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestToggleFollow(t *testing.T) {
	svc, users, _ := newUserFixture(t)
	ctx := context.Background()

	alice := uuid.NewString()
	bob := uuid.NewString()
	users.put(entity.User{ID: alice, Name: "Alice"})
	users.put(entity.User{ID: bob, Name: "Bob"})

	u, err := svc.ToggleFollow(ctx, alice, bob)
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if !u.Follows(bob) {
		t.Error("follow did not register")
	}

	u, err = svc.ToggleFollow(ctx, alice, bob)
	if err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if u.Follows(bob) {
		t.Error("second toggle should unfollow")
	}

	if _, err := svc.ToggleFollow(ctx, alice, alice); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("self follow err = %v, want ErrNotFound", err)
	}
	if _, err := svc.ToggleFollow(ctx, alice, uuid.NewString()); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("unknown target err = %v, want ErrNotFound", err)
	}
}

func TestClearNotifications(t *testing.T) {
	svc, users, disp := newUserFixture(t)
	ctx := context.Background()

	owner := uuid.NewString()
	users.put(entity.User{ID: owner, Name: "owner", Notifications: []entity.Notification{
		{ActorID: "a", PostID: "p", OwnerID: owner},
		{ActorID: "b", PostID: "p", OwnerID: owner},
	}})

	if err := svc.ClearNotifications(ctx, owner); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, _ := users.GetByID(ctx, owner)
	if len(got.Notifications) != 0 {
		t.Errorf("log length = %d, want 0", len(got.Notifications))
	}

	// Other devices converge on the empty log.
	calls := disp.all()
	if len(calls) != 1 || calls[0].UserID != owner || len(calls[0].Log) != 0 {
		t.Errorf("dispatch calls = %+v, want one empty-log push to owner", calls)
	}

	// Clearing an empty log again neither writes nor dispatches.
	if err := svc.ClearNotifications(ctx, owner); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	if len(disp.all()) != 1 {
		t.Error("no-op clear dispatched")
	}
}

func TestGetProfile_MalformedID(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	if _, err := svc.GetProfile(context.Background(), "nope"); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestIssueTokens_WithoutRedis(t *testing.T) {
	users := newMemUsers()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	svc := NewUserService(users, jwt, nil, nil, nil, "", nil)
	ctx := context.Background()

	id := uuid.NewString()
	users.put(entity.User{ID: id, Email: "a@example.com", Name: "A"})
	u, _ := users.GetByID(ctx, id)

	pair, err := svc.IssueTokens(ctx, u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("empty token pair")
	}
	claims, err := jwt.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != id || claims.SessionID == "" {
		t.Errorf("claims = %+v", claims)
	}
}
