package auth

import "errors"

// Login failures. Handlers map these onto HTTP statuses; the wording of
// client-facing messages lives in the transport layer.
var (
	ErrAccountNotFound       = errors.New("auth: account not found")
	ErrAccountNotVerified    = errors.New("auth: account not verified")
	ErrInvalidCredentials    = errors.New("auth: invalid credentials")
	ErrPasswordRecordMissing = errors.New("auth: password record missing")
)

// Session failures. All collapse to 401 at the transport layer.
var (
	ErrNoRefreshToken  = errors.New("auth: no refresh token")
	ErrNoSessionRecord = errors.New("auth: no session on record")
	ErrStaleRefresh    = errors.New("auth: refresh token superseded")
	ErrUnauthorized    = errors.New("auth: unauthorized")
)

// Token codec failures.
var (
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenMalformed = errors.New("auth: token malformed")
	ErrTokenSignature = errors.New("auth: token signature mismatch")
	ErrSecretNotSet   = errors.New("auth: signing secret is not configured")
)
