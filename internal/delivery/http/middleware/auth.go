package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "pintapoa/internal/delivery/http/helpers"
	"pintapoa/internal/domain"
)

// SessionCookieName is the cookie carrying the session token for browser requests.
const SessionCookieName = "session-token"

type contextKey string

const identityKey contextKey = "identity"

// SetIdentity returns a context with the authenticated identity set. Used by auth middleware.
func SetIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity from the context, if present.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*domain.Identity)
	return id, ok && id != nil
}

// SessionToken returns the request's session token from the session cookie.
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// bearerToken extracts the token from the Authorization header. ok is false
// when the header is present but malformed.
func bearerToken(r *http.Request) (token string, present, ok bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false, true
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", true, false
	}
	token = strings.TrimSpace(auth[len(prefix):])
	return token, true, token != ""
}

// RequestToken returns the Bearer token when an Authorization header is sent,
// otherwise the session cookie.
func RequestToken(r *http.Request) string {
	if token, present, ok := bearerToken(r); present {
		if !ok {
			return ""
		}
		return token
	}
	return SessionToken(r)
}

// RequireAuth returns a wrapper that validates the Bearer token (or the session
// cookie) and sets the identity in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.SessionVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, present, ok := bearerToken(r)
			if present && !ok {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			if !present {
				token = SessionToken(r)
			}
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			identity, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnavailable) {
					logger.WarnContext(r.Context(), "session check unavailable", "err", err)
					h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeUnavailable, "session check unavailable")
					return
				}
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			r = r.WithContext(SetIdentity(r.Context(), identity))
			next(w, r)
		}
	}
}
