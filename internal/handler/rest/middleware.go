package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/karystudio/podpool/internal/core/domain"
	"github.com/karystudio/podpool/internal/core/port"
	"go.uber.org/zap"
)

type contextKey string

const (
	callerIDKey  contextKey = "callerID"
	requestIDKey contextKey = "requestID"
)

// CallerID returns the authenticated caller's user id from the request
// context, or "" when the request never passed the auth middleware.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerIDKey).(string)
	return id
}

// RequestID returns the request's correlation id
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestIDMiddleware tags every request with a correlation id, echoed back
// in the X-Request-Id header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// AuthMiddleware resolves the bearer token into a session and stores the
// caller's user id in the request context. A missing or unknown token is
// unauthorized; a session without a user id is an invalid session.
func AuthMiddleware(sessions port.SessionStore, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, log, domain.ErrUnauthorized)
				return
			}

			session, err := sessions.Lookup(r.Context(), token)
			if err != nil {
				writeError(w, log, err)
				return
			}
			if session.UserID == "" {
				writeError(w, log, domain.ErrInvalidSession)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerIDKey, session.UserID)))
		})
	}
}
