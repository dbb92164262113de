package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shareit/shareit-api/internal/pkg/jwt"
	"github.com/shareit/shareit-api/internal/pkg/params"
	"github.com/shareit/shareit-api/internal/pkg/response"
	"github.com/shareit/shareit-api/internal/pkg/upstream"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserIDHeader carries the caller id.
const UserIDHeader = upstream.UserIDHeader

// RequireUser reads the caller id from X-Sharer-User-Id.
// A missing or malformed header is a bad request.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			response.BadRequest(w, "Missing "+UserIDHeader+" header")
			return
		}
		id, err := params.ID(raw)
		if err != nil {
			response.BadRequest(w, "Invalid "+UserIDHeader+" header")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

// ServiceAuth verifies the gateway's service token. With a nil service every
// request passes. When the caller header is present it must match the token subject.
func ServiceAuth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if jwtService == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateServiceToken(parts[1])
			if err != nil {
				if err == jwt.ErrExpiredToken {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			if raw := r.Header.Get(UserIDHeader); raw != "" {
				subject, _ := claims.UserID()
				id, err := params.ID(raw)
				if err == nil && id != subject {
					response.Forbidden(w, "Caller does not match service token")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a context carrying the caller id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// GetUserID extracts the caller id from context, or 0.
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(UserIDKey).(int64); ok {
		return id
	}
	return 0
}
