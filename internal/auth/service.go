package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service implements the login flow on top of the credential store and
// the token codec.
type Service struct {
	store Store
	codec *Codec
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(store Store, codec *Codec, opts ...ServiceOption) *Service {
	s := &Service{store: store, codec: codec, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Codec exposes the token codec shared with the session verifier.
func (s *Service) Codec() *Codec { return s.codec }

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	Permissions      []string
}

// Login validates the submitted credentials and issues a fresh token
// pair. The new refresh-token hash overwrites any prior session row for
// the user; the store is only written after every check has passed.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return TokenPair{}, ErrInvalidCredentials
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, err
	}
	if !user.Verified {
		return TokenPair{}, ErrAccountNotVerified
	}

	hash, err := s.store.PasswordHashByUser(ctx, user.ID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := VerifyPassword(hash, password); err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}

	perms, err := s.store.PermissionsForRole(ctx, user.RoleID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("resolve permissions: %w", err)
	}

	claims := Claims{
		UserID:      user.ID,
		Permissions: perms,
		NamaMitra:   user.NamaMitra,
	}
	access, err := s.codec.IssueAccessToken(claims)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.IssueRefreshToken(claims)
	if err != nil {
		return TokenPair{}, err
	}

	refreshHash, err := HashRefreshToken(refresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("hash refresh token: %w", err)
	}
	now := s.now().UTC()
	if err := s.store.UpsertRefreshToken(ctx, &RefreshToken{
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: now.Add(s.codec.RefreshTTL()),
	}); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(s.codec.AccessTTL()),
		RefreshExpiresAt: now.Add(s.codec.RefreshTTL()),
		Permissions:      perms,
	}, nil
}

// Logout removes the user's live refresh-token row. Outstanding refresh
// tokens stop renewing immediately; the current access token simply
// ages out.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	return s.store.DeleteRefreshToken(ctx, userID)
}
