package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	appdb "nutricalc/internal/db"
	"nutricalc/models"
)

func withTestSessionManager(t *testing.T) (*scs.SessionManager, func()) {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	return sm, func() {
		sessionManager = original
	}
}

func withTestDatabase(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	original := database
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := appdb.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	database = db
	return db, func() {
		database = original
		sqlDB.Close()
	}
}

func seedUser(t *testing.T, db *gorm.DB, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{Username: username, PasswordHash: string(hash)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func loadSession(t *testing.T, sm *scs.SessionManager, req *http.Request) *http.Request {
	t.Helper()
	ctx, err := sm.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("failed to load session context: %v", err)
	}
	return req.WithContext(ctx)
}

func authenticateRequest(t *testing.T, sm *scs.SessionManager, req *http.Request, userID uint) *http.Request {
	t.Helper()
	req = loadSession(t, sm, req)
	sm.Put(req.Context(), sessionUserIDKey, int(userID))
	sm.Put(req.Context(), sessionUserNameKey, fmt.Sprintf("user-%d", userID))
	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	return req
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestActiveSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if ActiveSession(req) {
		t.Fatal("expected inactive session when manager is nil")
	}

	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req = loadSession(t, sm, req)
	sm.Put(req.Context(), sessionUserIDKey, 42)
	if ActiveSession(req) {
		t.Fatal("expected inactive session without the authenticated flag")
	}

	sm.Put(req.Context(), sessionAuthenticatedKey, true)
	if !ActiveSession(req) {
		t.Fatal("expected active session when flags are set")
	}
}

func TestCurrentUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := currentUserID(req); ok {
		t.Fatal("expected currentUserID to fail without session manager")
	}

	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req = loadSession(t, sm, req)
	if _, ok := currentUserID(req); ok {
		t.Fatal("expected false when user id not set")
	}

	sm.Put(req.Context(), sessionUserIDKey, 7)
	id, ok := currentUserID(req)
	if !ok || id != 7 {
		t.Fatalf("expected user id 7, got %d (ok=%t)", id, ok)
	}
}

func TestEstablishSession(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	req := loadSession(t, sm, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	user := &models.User{Model: gorm.Model{ID: 3}, Username: "cook"}
	if err := establishSession(req, user); err != nil {
		t.Fatalf("establishSession returned error: %v", err)
	}

	if !sm.GetBool(req.Context(), sessionAuthenticatedKey) {
		t.Fatal("expected session authenticated flag to be true")
	}
	if got := sm.GetInt(req.Context(), sessionUserIDKey); got != 3 {
		t.Fatalf("expected session user id 3, got %d", got)
	}
	if got := sm.GetString(req.Context(), sessionUserNameKey); got != "cook" {
		t.Fatalf("unexpected username %q", got)
	}
}

func TestEstablishSessionWithoutManager(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	if err := establishSession(req, &models.User{}); err == nil {
		t.Fatal("expected error when session manager is nil")
	}
}

func TestAuthenticate(t *testing.T) {
	db, dbCleanup := withTestDatabase(t)
	t.Cleanup(dbCleanup)
	seedUser(t, db, "cook", "password123")

	ctx := context.Background()
	user, err := authenticate(ctx, "cook", "password123")
	if err != nil {
		t.Fatalf("expected authentication to succeed: %v", err)
	}
	if user.Username != "cook" {
		t.Fatalf("unexpected user %q", user.Username)
	}

	if _, err := authenticate(ctx, "cook", "wrong"); !errors.Is(err, errBadCredentials) {
		t.Fatalf("expected bad credentials for wrong password, got %v", err)
	}
	if _, err := authenticate(ctx, "nobody", "password123"); !errors.Is(err, errBadCredentials) {
		t.Fatalf("expected bad credentials for unknown user, got %v", err)
	}
}

func TestAuthenticateWithoutDatabase(t *testing.T) {
	if _, err := authenticate(context.Background(), "cook", "pw"); !errors.Is(err, gorm.ErrInvalidDB) {
		t.Fatalf("expected ErrInvalidDB, got %v", err)
	}
}

func TestRequireAuthentication(t *testing.T) {
	sm, cleanup := withTestSessionManager(t)
	t.Cleanup(cleanup)

	var got Identity
	called := false
	handler := RequireAuthentication(func(w http.ResponseWriter, r *http.Request, identity Identity) {
		called = true
		got = identity
		w.WriteHeader(http.StatusNoContent)
	})

	req := loadSession(t, sm, httptest.NewRequest(http.MethodGet, "/api/ingredients", nil))
	w := httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous request, got %d", w.Code)
	}
	if called {
		t.Fatal("expected handler not to run for anonymous request")
	}
	if body := w.Body.String(); !strings.Contains(body, `"unauthenticated"`) {
		t.Fatalf("unexpected body %q", body)
	}

	req = authenticateRequest(t, sm, httptest.NewRequest(http.MethodGet, "/api/ingredients", nil), 9)
	w = httptest.NewRecorder()
	handler(w, req)
	if w.Code != http.StatusNoContent || !called {
		t.Fatalf("expected handler to run, status %d", w.Code)
	}
	if got.UserID != 9 || got.Username != "user-9" {
		t.Fatalf("unexpected identity %+v", got)
	}
}
