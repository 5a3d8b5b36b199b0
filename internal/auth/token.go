package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "lapormitra"

// Default token lifetimes. Access tokens are deliberately short-lived;
// the refresh token anchors the session for a week.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// SecretKind selects which signing secret a verification runs against.
// The two secrets must differ so a leaked access secret cannot forge
// refresh tokens, and vice versa.
type SecretKind int

const (
	SecretAccess SecretKind = iota
	SecretRefresh
)

// Claims is the payload embedded in both token kinds. NamaMitra is set
// only for partner-organization sessions; its presence distinguishes a
// partner user from an administrator.
type Claims struct {
	UserID      string   `json:"user_id"`
	Permissions []string `json:"permissions"`
	NamaMitra   string   `json:"nama_mitra,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies the two token kinds. Secrets are injected at
// construction and validated once; nothing is read from the
// environment at call time.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.accessTTL = ttl
		}
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.refreshTTL = ttl
		}
	}
}

// WithCodecClock overrides the time source (useful for tests).
func WithCodecClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// NewCodec constructs a Codec. It fails fast on a missing secret or on
// identical secrets for the two token kinds.
func NewCodec(accessSecret, refreshSecret string, opts ...CodecOption) (*Codec, error) {
	accessSecret = strings.TrimSpace(accessSecret)
	refreshSecret = strings.TrimSpace(refreshSecret)
	if accessSecret == "" || refreshSecret == "" {
		return nil, ErrSecretNotSet
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("auth: access and refresh secrets must differ")
	}
	c := &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     DefaultAccessTTL,
		refreshTTL:    DefaultRefreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccessToken signs claims with the access secret and a short expiry.
func (c *Codec) IssueAccessToken(claims Claims) (string, error) {
	return c.issue(claims, c.accessSecret, c.accessTTL)
}

// IssueRefreshToken signs claims with the refresh secret and a long expiry.
func (c *Codec) IssueRefreshToken(claims Claims) (string, error) {
	return c.issue(claims, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) issue(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry against the selected secret. It is
// purely cryptographic/structural and never consults the store.
func (c *Codec) Verify(token string, kind SecretKind) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrTokenMalformed
	}
	secret := c.accessSecret
	if kind == SecretRefresh {
		secret = c.refreshSecret
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignature
		default:
			return Claims{}, ErrTokenMalformed
		}
	}
	if !parsed.Valid || strings.TrimSpace(claims.UserID) == "" {
		return Claims{}, ErrTokenMalformed
	}
	return claims, nil
}

// DecodeUnsafe extracts the payload without checking the signature. It
// must only be called on tokens whose provenance was already
// established inside the same request; never use it to authorize.
func (c *Codec) DecodeUnsafe(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, ErrTokenMalformed
	}
	return claims, nil
}
