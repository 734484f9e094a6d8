package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pintapoa/internal/domain"
)

// DefaultSessionTTL matches the 30 day session lifetime of the admin console.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Reasons attached to anonymous auth events.
const (
	ReasonNoSession    = "no_session"
	ReasonInvalidToken = "invalid_token"
	ReasonUnavailable  = "unavailable"
	ReasonSignedOut    = "signed_out"
	ReasonExpired      = "expired"
)

// Counter is the subset of a metrics counter the auth service needs.
type Counter interface {
	Inc()
}

// AuthOptions holds the optional collaborators of the auth service.
type AuthOptions struct {
	SessionTTL    time.Duration
	EmailService  domain.EmailService
	FailedSignIns Counter
}

type subscription struct {
	revoked chan struct{}
	once    sync.Once
}

func (s *subscription) revoke() {
	s.once.Do(func() { close(s.revoked) })
}

type authService struct {
	adminRepo     domain.AdminRepository
	hasher        domain.PasswordHasher
	issuer        domain.TokenIssuer
	parser        domain.TokenParser
	revoker       domain.TokenRevoker
	emailService  domain.EmailService
	failedSignIns Counter
	sessionTTL    time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

// NewAuthService creates an AuthService. Each SignIn makes a single attempt against adminRepo.
func NewAuthService(
	adminRepo domain.AdminRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	parser domain.TokenParser,
	revoker domain.TokenRevoker,
	logger *slog.Logger,
	opts AuthOptions,
) domain.AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &authService{
		adminRepo:     adminRepo,
		hasher:        hasher,
		issuer:        issuer,
		parser:        parser,
		revoker:       revoker,
		emailService:  opts.EmailService,
		failedSignIns: opts.FailedSignIns,
		sessionTTL:    ttl,
		logger:        logger,
		now:           time.Now,
		subs:          make(map[string]map[*subscription]struct{}),
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*domain.Identity, *domain.Session, error) {
	const op = "auth.SignIn"
	log := s.logger.With("op", op)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.signInFailed()
		return nil, nil, domain.ErrInvalidCredentials
	}
	admin, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.WarnContext(ctx, "sign-in for unknown email")
			s.signInFailed()
			return nil, nil, domain.ErrInvalidCredentials
		}
		log.ErrorContext(ctx, "failed to load admin", "err", err)
		return nil, nil, fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}
	if err := s.hasher.Compare(admin.PasswordHash, admin.Salt, password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			log.WarnContext(ctx, "sign-in with wrong password", "admin_id", admin.ID)
			s.signInFailed()
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	displayName := admin.Name
	if displayName == "" {
		displayName = domain.DefaultDisplayName
	}
	session, err := s.issuer.Issue(admin.ID, admin.Email, displayName, s.sessionTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	identity := &domain.Identity{UID: admin.ID, Email: admin.Email, DisplayName: displayName}

	if s.emailService != nil {
		alert := &domain.SignInAlertEmailData{Email: admin.Email, DisplayName: displayName, SignedInAt: s.now()}
		if err := s.emailService.SendSignInAlert(ctx, alert); err != nil {
			log.WarnContext(ctx, "sign-in alert not sent", "err", err)
		}
	}
	log.InfoContext(ctx, "admin signed in", "admin_id", admin.ID)
	return identity, session, nil
}

func (s *authService) signInFailed() {
	if s.failedSignIns != nil {
		s.failedSignIns.Inc()
	}
}

// SignOut revokes token. Missing, malformed and expired tokens are already
// unusable, so they are accepted silently.
func (s *authService) SignOut(ctx context.Context, token string) error {
	const op = "auth.SignOut"

	if token == "" {
		return nil
	}
	claims, err := s.parser.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}
	s.notifyRevoked(claims.TokenID)
	return nil
}

func (s *authService) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := s.verifyClaims(ctx, token)
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

func (s *authService) verifyClaims(ctx context.Context, token string) (*domain.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	claims, err := s.parser.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("auth.Verify: %w: %w", domain.ErrUnavailable, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: signed out", domain.ErrInvalidToken)
	}
	return claims, nil
}

// Subscribe never reports AuthStateUnknown: the state is resolved before the
// first event is sent. The channel is closed after the terminal anonymous
// event or once cancel is called or ctx is done.
func (s *authService) Subscribe(ctx context.Context, token string) (<-chan domain.AuthEvent, func()) {
	ctx, cancel := context.WithCancel(ctx)
	events := make(chan domain.AuthEvent, 2)
	anonymous := func(reason string) (<-chan domain.AuthEvent, func()) {
		events <- domain.AuthEvent{State: domain.AuthStateAnonymous, Reason: reason}
		close(events)
		return events, cancel
	}

	if token == "" {
		return anonymous(ReasonNoSession)
	}
	claims, err := s.parser.Parse(token)
	if err != nil {
		return anonymous(ReasonInvalidToken)
	}

	// Registered before the revocation check so a SignOut racing with it
	// still reaches this subscription.
	sub := &subscription{revoked: make(chan struct{})}
	s.addSubscription(claims.TokenID, sub)
	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil || revoked {
		s.removeSubscription(claims.TokenID, sub)
		if err != nil {
			s.logger.WarnContext(ctx, "revocation check failed", "err", err)
			return anonymous(ReasonUnavailable)
		}
		return anonymous(ReasonInvalidToken)
	}
	events <- domain.AuthEvent{State: domain.AuthStateAuthenticated, Identity: claims.Identity()}

	go func() {
		defer close(events)
		defer s.removeSubscription(claims.TokenID, sub)

		timer := time.NewTimer(claims.ExpiresAt.Sub(s.now()))
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-sub.revoked:
			events <- domain.AuthEvent{State: domain.AuthStateAnonymous, Reason: ReasonSignedOut}
		case <-timer.C:
			events <- domain.AuthEvent{State: domain.AuthStateAnonymous, Reason: ReasonExpired}
		}
	}()
	return events, cancel
}

func (s *authService) addSubscription(tokenID string, sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.subs[tokenID]
	if !ok {
		set = make(map[*subscription]struct{})
		s.subs[tokenID] = set
	}
	set[sub] = struct{}{}
}

func (s *authService) removeSubscription(tokenID string, sub *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.subs[tokenID]
	delete(set, sub)
	if len(set) == 0 {
		delete(s.subs, tokenID)
	}
}

func (s *authService) notifyRevoked(tokenID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs[tokenID] {
		sub.revoke()
	}
}

// EnsureAdmin creates the admin account when it does not exist yet. An empty
// email means no bootstrap admin is configured.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	const op = "auth.EnsureAdmin"

	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	if password == "" {
		return fmt.Errorf("%s: password is required for %s", op, email)
	}
	_, err := s.adminRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	admin := domain.NewAdmin(email, domain.DefaultDisplayName, hash, salt, s.now())
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.InfoContext(ctx, "bootstrap admin created", "email", email)
	return nil
}
