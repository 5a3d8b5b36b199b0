package auth

import "context"

// Store describes the credential-store operations the core depends on.
// Contract/report/inbox persistence is owned elsewhere and never
// crosses this boundary.
type Store interface {
	// FindUserByEmail returns ErrAccountNotFound when no user exists.
	FindUserByEmail(ctx context.Context, email string) (*User, error)

	// PasswordHashByUser returns ErrPasswordRecordMissing when the
	// one-to-one password row is absent.
	PasswordHashByUser(ctx context.Context, userID string) (string, error)

	// PermissionsForRole resolves the permission keys granted to a role.
	PermissionsForRole(ctx context.Context, roleID string) ([]string, error)

	// RefreshTokenByUser returns ErrNoSessionRecord when the user has no
	// live refresh-token row.
	RefreshTokenByUser(ctx context.Context, userID string) (*RefreshToken, error)

	// UpsertRefreshToken replaces any prior row for the same user.
	// Last writer wins; this is the single-active-session policy.
	UpsertRefreshToken(ctx context.Context, tok *RefreshToken) error

	// DeleteRefreshToken removes the user's live row (logout).
	DeleteRefreshToken(ctx context.Context, userID string) error
}
