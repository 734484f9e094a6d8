package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	h "pintapoa/internal/delivery/http/helpers"
	"pintapoa/internal/delivery/http/middleware"
	"pintapoa/internal/domain"
)

// sseKeepAlive is how often an idle event stream gets a comment line.
const sseKeepAlive = 25 * time.Second

// LoginRequest is the request body for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(l.Email) == "" {
		errs = append(errs, "email is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the response body for POST /api/auth/login
type LoginResponse struct {
	Token     string           `json:"token"`
	TokenType string           `json:"token_type"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *domain.Identity `json:"user"`
}

// Gauge tracks open event streams.
type Gauge interface {
	Inc()
	Dec()
}

type AuthController struct {
	Logger        *slog.Logger
	Service       domain.AuthService
	SecureCookies bool
	Streams       Gauge
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, secureCookies bool, streams Gauge) *AuthController {
	return &AuthController{
		Logger:        logger,
		Service:       svc,
		SecureCookies: secureCookies,
		Streams:       streams,
	}
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Returns a session token and sets the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data contains token, token_type, expires_at and user"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	identity, session, err := c.Service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.WriteDomainError(w, r, c.Logger, err)
		return
	}
	setSessionCookie(w, session, c.SecureCookies)
	h.WriteJSONSuccess(w, http.StatusOK, LoginResponse{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
		User:      identity,
	})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the current session token and clears the session cookie. Safe to call without a session.
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /api/auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, c.SecureCookies)
	if err := c.Service.SignOut(r.Context(), middleware.RequestToken(r)); err != nil {
		h.WriteDomainError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session godoc
// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains uid, email and displayName"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/auth/session [get]
func (c *AuthController) Session(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, identity)
}

// Events godoc
// @Summary Auth state stream
// @Description Server-Sent Events stream of auth state changes for the caller's session. The first event carries the current state; an anonymous event follows on sign-out or expiry and ends the stream.
// @Tags auth
// @Produce text/event-stream
// @Success 200 {object} domain.AuthEvent
// @Router /api/auth/events [get]
func (c *AuthController) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, cancel := c.Service.Subscribe(ctx, middleware.RequestToken(r))
	defer cancel()

	if c.Streams != nil {
		c.Streams.Inc()
		defer c.Streams.Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)
	_ = rc.Flush()

	keepAlive := time.NewTicker(sseKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				c.Logger.ErrorContext(ctx, "encode auth event", "err", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: auth\ndata: %s\n\n", payload); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}
