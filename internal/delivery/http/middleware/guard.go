package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"pintapoa/internal/domain"
)

// AdminPathPrefix is the page prefix protected by the route guard.
const AdminPathPrefix = "/admin"

// LoginPath is where the route guard sends anonymous visitors.
const LoginPath = "/login"

// CallbackParam carries the originally requested page through the login form.
const CallbackParam = "callbackUrl"

// Decision is the outcome of Guard.
type Decision struct {
	Allow    bool
	Redirect string
	Identity *domain.Identity
}

// IsProtectedPath reports whether path is /admin or below it.
func IsProtectedPath(path string) bool {
	return path == AdminPathPrefix || strings.HasPrefix(path, AdminPathPrefix+"/")
}

// Guard decides whether a request for path may proceed with token. Paths outside
// the admin prefix are always allowed. Otherwise a token the verifier accepts is
// required, and anonymous requests are redirected to the login page with the
// original path and query as the callback.
func Guard(ctx context.Context, path, rawQuery, token string, verifier domain.SessionVerifier) Decision {
	if !IsProtectedPath(path) {
		return Decision{Allow: true}
	}
	if token != "" {
		if identity, err := verifier.Verify(ctx, token); err == nil {
			return Decision{Allow: true, Identity: identity}
		}
	}
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return Decision{Redirect: LoginPath + "?" + url.Values{CallbackParam: {target}}.Encode()}
}

// SafeCallback returns callback when it is a local absolute path, and fallback otherwise.
func SafeCallback(callback, fallback string) string {
	if callback == "" || !strings.HasPrefix(callback, "/") || strings.HasPrefix(callback, "//") || strings.Contains(callback, `\`) {
		return fallback
	}
	u, err := url.Parse(callback)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return callback
}

// RouteGuard applies Guard to every request using the session cookie, before
// next runs. Allowed admin requests carry the identity in their context.
func RouteGuard(verifier domain.SessionVerifier, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := Guard(r.Context(), r.URL.Path, r.URL.RawQuery, SessionToken(r), verifier)
		if !d.Allow {
			logger.DebugContext(r.Context(), "redirecting anonymous visitor", "path", r.URL.Path)
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		if d.Identity != nil {
			r = r.WithContext(SetIdentity(r.Context(), d.Identity))
		}
		next.ServeHTTP(w, r)
	})
}
