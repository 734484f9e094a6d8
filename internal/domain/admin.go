package domain

import (
	"context"
	"time"
)

// DefaultDisplayName is used for admins without a name.
const DefaultDisplayName = "Admin"

// Admin is an account allowed into the admin console.
type Admin struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewAdmin returns a new Admin. ID is typically set by the repository on create.
func NewAdmin(email, name, passwordHash, salt string, createdAt time.Time) *Admin {
	return &Admin{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
	}
}

// Identity is the authenticated subject as seen by callers.
// swagger:model Identity
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Session is an issued session token.
type Session struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

// TokenClaims are the verified contents of a session token.
type TokenClaims struct {
	TokenID     string
	Subject     string
	Email       string
	DisplayName string
	ExpiresAt   time.Time
}

// Identity returns the identity carried by the claims.
func (c *TokenClaims) Identity() *Identity {
	name := c.DisplayName
	if name == "" {
		name = DefaultDisplayName
	}
	return &Identity{UID: c.Subject, Email: c.Email, DisplayName: name}
}

// AuthState is the state of the admin identity for one session.
type AuthState string

const (
	AuthStateUnknown       AuthState = "unknown"
	AuthStateAnonymous     AuthState = "anonymous"
	AuthStateAuthenticated AuthState = "authenticated"
)

// AuthEvent is an identity change notification.
// swagger:model AuthEvent
type AuthEvent struct {
	State    AuthState `json:"state"`
	Identity *Identity `json:"user"`
	Reason   string    `json:"reason,omitempty"`
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues session tokens for an authenticated admin.
type TokenIssuer interface {
	Issue(subject, email, displayName string, expiry time.Duration) (*Session, error)
}

// TokenParser checks a token's signature and expiry and returns its claims.
type TokenParser interface {
	Parse(token string) (*TokenClaims, error)
}

// TokenRevoker remembers signed-out token ids until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SessionVerifier resolves a session token to an identity, honoring sign-out.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// AdminRepository defines the interface for admin account storage.
type AdminRepository interface {
	Create(ctx context.Context, admin *Admin) error
	GetByEmail(ctx context.Context, email string) (*Admin, error)
}

// AuthService signs admins in and out and reports identity changes.
type AuthService interface {
	SessionVerifier
	SignIn(ctx context.Context, email, password string) (*Identity, *Session, error)
	SignOut(ctx context.Context, token string) error
	// Subscribe sends the resolved state of token immediately, then an
	// anonymous event on sign-out or expiry. The channel is closed after the
	// anonymous event, after cancel is called, or once ctx is done.
	Subscribe(ctx context.Context, token string) (events <-chan AuthEvent, cancel func())
	EnsureAdmin(ctx context.Context, email, password string) error
}
