package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/drazan344/chat-core/internal/auth"
	"github.com/drazan344/chat-core/internal/core"
)

// contextKey avoids collisions with context keys from other packages.
type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware validates the bearer JWT and attaches its claims to the
// request context. Routes mounted behind it can assume an authenticated
// caller.
func (app *application) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := auth.ValidateToken(parts[1], app.config.auth.jwtSecret)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				writeCoreError(w, core.NewError(core.KindTokenExpired, "token has expired"))
				return
			}
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// claimsFromContext extracts the authenticated caller's claims, set by
// AuthMiddleware.
func claimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	if !ok {
		return nil, errors.New("claims not found in context")
	}
	return claims, nil
}
