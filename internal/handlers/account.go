package handlers

import (
	"errors"
	"net/http"
	"strings"

	applog "nutricalc/internal/log"
	"nutricalc/internal/store"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

func (req *credentialsRequest) normalize() {
	req.Username = strings.TrimSpace(req.Username)
}

type registerResponse struct {
	Success bool `json:"success"`
	UserID  uint `json:"user_id"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type meResponse struct {
	Username string `json:"username"`
}

// Register creates an account. A taken username is reported in the body with
// status 200, and the caller is not signed in.
func Register(w http.ResponseWriter, r *http.Request) {
	if database == nil {
		applog.Debug(r.Context(), "register request without database")
		writeJSONError(w, http.StatusServiceUnavailable, "service unavailable")
		return
	}

	var req credentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	username := req.Username

	hashed, err := hashPassword(req.Password)
	if err != nil {
		applog.Error(r.Context(), "failed to hash password", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to register")
		return
	}

	user, err := records().CreateUser(r.Context(), username, hashed)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			applog.Debug(r.Context(), "username already registered", "username", username)
			writeJSONError(w, http.StatusOK, "username taken")
			return
		}
		applog.Error(r.Context(), "failed to create user", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to register")
		return
	}

	applog.Info(r.Context(), "user registered", "userID", user.ID)
	writeJSON(w, http.StatusOK, registerResponse{Success: true, UserID: user.ID})
}

// Login verifies the credentials and starts a session.
func Login(w http.ResponseWriter, r *http.Request) {
	if sessionManager == nil || database == nil {
		applog.Debug(r.Context(), "authentication dependencies unavailable", "hasSession", sessionManager != nil, "hasDatabase", database != nil)
		writeJSONError(w, http.StatusServiceUnavailable, "authentication not available")
		return
	}

	var req credentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			applog.Debug(r.Context(), "authentication failed", "username", req.Username)
			writeJSONError(w, http.StatusOK, "bad credentials")
			return
		}
		applog.Error(r.Context(), "failed to load user during login", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	if err := establishSession(r, user); err != nil {
		applog.Error(r.Context(), "failed to establish session", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "unable to sign in")
		return
	}

	applog.Debug(r.Context(), "authentication succeeded", "userID", user.ID)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Logout destroys the current session. It succeeds with or without one.
func Logout(w http.ResponseWriter, r *http.Request) {
	if sessionManager != nil {
		if err := sessionManager.Destroy(r.Context()); err != nil {
			applog.Error(r.Context(), "failed to destroy session", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// Me reports the username of the signed-in caller.
func Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(r)
	if !ok {
		writeJSONError(w, http.StatusOK, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, meResponse{Username: identity.Username})
}
