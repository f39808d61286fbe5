package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	applog "nutricalc/internal/log"
	"nutricalc/internal/store"
	"nutricalc/models"
)

const (
	sessionAuthenticatedKey = "auth:authenticated"
	sessionUserIDKey        = "auth:user:id"
	sessionUserNameKey      = "auth:user:name"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB
)

var errBadCredentials = errors.New("bad credentials")

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
}

func records() *store.Store {
	return store.New(database)
}

// Identity is the authenticated caller resolved from the session. It is
// handed to every protected handler explicitly.
type Identity struct {
	UserID   uint
	Username string
}

// AuthenticatedHandler is an HTTP handler that runs only for a resolved
// identity.
type AuthenticatedHandler func(http.ResponseWriter, *http.Request, Identity)

// RequireAuthentication rejects requests without an active session with 401
// before next runs.
func RequireAuthentication(next AuthenticatedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := currentIdentity(r)
		if !ok {
			applog.Debug(r.Context(), "rejecting unauthenticated request", "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		next(w, r, identity)
	}
}

// ActiveSession returns true when the current request has an authenticated session.
func ActiveSession(r *http.Request) bool {
	_, ok := currentUserID(r)
	return ok && sessionManager.GetBool(r.Context(), sessionAuthenticatedKey)
}

func currentUserID(r *http.Request) (uint, bool) {
	if sessionManager == nil {
		return 0, false
	}
	id := sessionManager.GetInt(r.Context(), sessionUserIDKey)
	if id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func currentIdentity(r *http.Request) (Identity, bool) {
	if !ActiveSession(r) {
		return Identity{}, false
	}
	id, _ := currentUserID(r)
	return Identity{
		UserID:   id,
		Username: sessionManager.GetString(r.Context(), sessionUserNameKey),
	}, true
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// authenticate verifies the credentials. Unknown users and wrong passwords
// both return errBadCredentials.
func authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := records().FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return user, nil
}

func establishSession(r *http.Request, user *models.User) error {
	if sessionManager == nil {
		return errors.New("session manager not configured")
	}
	if err := sessionManager.RenewToken(r.Context()); err != nil {
		return err
	}
	sessionManager.Put(r.Context(), sessionAuthenticatedKey, true)
	sessionManager.Put(r.Context(), sessionUserIDKey, int(user.ID))
	sessionManager.Put(r.Context(), sessionUserNameKey, user.Username)
	return nil
}
