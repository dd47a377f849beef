package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/drazan344/chat-core/internal/auth"
	"github.com/drazan344/chat-core/internal/core"
	"github.com/drazan344/chat-core/internal/store"
	"github.com/google/uuid"
)

// RegisterRequest is the JSON body for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for authentication.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the access token, its refresh token, and the
// authenticated user's public info, returned by register and login.
type AuthResponse struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refresh_token"`
	User         *store.UserInfo `json:"user"`
}

// RefreshRequest is the JSON body for POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries a freshly minted access token.
type RefreshResponse struct {
	Token string `json:"token"`
}

// issueSession mints an access token plus a longer-lived refresh token for
// user, and records the refresh token in the cache under a fresh session
// id so it can later be looked up by renew-token and torn down by logout.
func (app *application) issueSession(ctx context.Context, user *store.User) (string, string, error) {
	sessionID := uuid.NewString()

	refreshToken, err := auth.GenerateToken(auth.Claims{
		UserID:         user.ID,
		SessionID:      sessionID,
		PersonalRoomID: user.PersonalRoomID,
		Role:           user.Role,
	}, app.config.auth.refreshTokenTTL, app.config.auth.jwtSecret)
	if err != nil {
		return "", "", err
	}

	if err := app.cache.CreateSession(ctx, sessionID, refreshToken); err != nil {
		return "", "", err
	}

	token, err := auth.GenerateToken(auth.Claims{
		UserID:         user.ID,
		SessionID:      sessionID,
		PersonalRoomID: user.PersonalRoomID,
		Role:           user.Role,
	}, app.config.auth.tokenTTL, app.config.auth.jwtSecret)
	if err != nil {
		return "", "", err
	}
	return token, refreshToken, nil
}

// registerHandler creates a new account.
// POST /v1/auth/register
func (app *application) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Username) < 3 || len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "username must be at least 3 characters and password at least 6")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process password")
		return
	}

	user, err := app.store.Users.Create(r.Context(), req.Username, hashedPassword, core.RoleUser)
	if err != nil {
		if strings.Contains(err.Error(), "unique") || strings.Contains(err.Error(), "duplicate") {
			writeError(w, http.StatusConflict, "username already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, refreshToken, err := app.issueSession(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, RefreshToken: refreshToken, User: user.Info()})
}

// loginHandler authenticates an existing account.
// POST /v1/auth/login
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := app.store.Users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to retrieve user")
		return
	}

	if err := auth.ComparePassword(user.Password, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, refreshToken, err := app.issueSession(r.Context(), user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, RefreshToken: refreshToken, User: user.Info()})
}

// refreshTokenHandler mints a new access token from a still-valid refresh
// token, without requiring the caller to re-authenticate with a password.
// The client is expected to call this once the access token's expiry is
// signaled by a 203 response from writeCoreError.
// POST /v1/auth/refresh
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := auth.ValidateToken(req.RefreshToken, app.config.auth.jwtSecret)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	stored, err := app.cache.GetSession(r.Context(), claims.SessionID)
	if err != nil || stored != req.RefreshToken {
		writeError(w, http.StatusUnauthorized, "session not found")
		return
	}

	token, err := auth.GenerateToken(auth.Claims{
		UserID:         claims.UserID,
		SessionID:      claims.SessionID,
		PersonalRoomID: claims.PersonalRoomID,
		Role:           claims.Role,
	}, app.config.auth.tokenTTL, app.config.auth.jwtSecret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{Token: token})
}

// logoutHandler tears down the caller's refresh session, so a subsequent
// refresh attempt with the old refresh token is rejected.
// POST /v1/auth/logout
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims, err := auth.ValidateToken(req.RefreshToken, app.config.auth.jwtSecret)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if err := app.cache.DeleteSession(r.Context(), claims.SessionID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getCurrentUserHandler returns the authenticated caller's profile.
// GET /v1/auth/me
func (app *application) getCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := claimsFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to retrieve user")
		return
	}

	writeJSON(w, http.StatusOK, user.Info())
}
