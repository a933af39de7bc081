// internal/middleware/auth.go

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/auth"
	"github.com/sirupsen/logrus"
)

type viewerKey struct{}

// AuthCookie is the cookie carrying the session JWT.
const AuthCookie = "auth_token"

// Authenticate resolves the viewer from a bearer token or the auth_token
// cookie and stores their id on the request context. Requests without a valid
// token are rejected.
func Authenticate(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				token = extractCookieToken(r.Header.Get("Cookie"), AuthCookie)
			}
			if token == "" {
				http.Error(w, "missing auth_token", http.StatusUnauthorized)
				return
			}

			userID, err := auth.AuthenticateJWT(token)
			if err != nil {
				logger.WithError(err).WithField("path", r.URL.Path).Debug("rejected token")
				http.Error(w, "invalid token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithViewer(r.Context(), userID)))
		})
	}
}

// WithViewer returns a context carrying the viewer id.
func WithViewer(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, viewerKey{}, userID)
}

// Viewer returns the authenticated viewer id, if any.
func Viewer(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(viewerKey{}).(uuid.UUID)
	return id, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// extractCookieToken extracts a named cookie value from "Cookie" header, or returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}
