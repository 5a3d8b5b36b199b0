package auth

import (
	"context"
	"errors"
)

// ResolvedTokens is the transport-agnostic result of channel
// resolution. The refresh token is the mandatory anchor of a session;
// the access token may be absent.
type ResolvedTokens struct {
	AccessToken  string
	RefreshToken string
}

// SessionState enumerates the verifier's states. The middleware chain of
// the surrounding application only ever observes Authorized or Rejected;
// the intermediate states exist so the decision logic is explicit and
// testable on its own.
type SessionState int

const (
	StateNoAccessToken SessionState = iota
	StateAccessTokenValid
	StateAccessTokenInvalid
	StateRefreshAttempted
	StateAuthorized
	StateRejected
)

// Session is the validated result handed to downstream handlers.
// Handlers trust Claims without re-verifying; when Renewed is set the
// transport adapter must deliver NewAccessToken back to the caller.
type Session struct {
	Claims         Claims
	Renewed        bool
	NewAccessToken string
}

// Outcome is the verdict of the pure decision function.
type Outcome struct {
	State          SessionState
	Claims         Claims
	NewAccessToken string
	Err            error
}

// decision bundles everything the pure decision step needs: the results
// of cryptographic verification and of the store lookup, gathered by
// the orchestrator. No I/O happens past this point.
type decision struct {
	accessPresent bool
	accessClaims  Claims
	accessErr     error

	refreshPresent bool
	refreshClaims  Claims
	refreshErr     error

	record    *RefreshToken
	recordErr error
	hashMatch bool
}

// accessState classifies the entry state of the machine.
func accessState(d decision) SessionState {
	if !d.accessPresent {
		return StateNoAccessToken
	}
	if d.accessErr == nil {
		return StateAccessTokenValid
	}
	return StateAccessTokenInvalid
}

// decide is the session state machine. It never touches the store or
// the clock; renewal token minting is signalled back via
// StateRefreshAttempted and completed by the orchestrator.
func decide(d decision) Outcome {
	if accessState(d) == StateAccessTokenValid {
		return Outcome{State: StateAuthorized, Claims: d.accessClaims}
	}

	// Absent, expired or invalid access token: fall through to the
	// refresh path.
	if !d.refreshPresent {
		return Outcome{State: StateRejected, Err: ErrNoRefreshToken}
	}
	if d.refreshErr != nil {
		// Expired, malformed and tampered all read the same to the
		// caller; nothing here distinguishes them in the response.
		return Outcome{State: StateRejected, Err: ErrUnauthorized}
	}
	if d.recordErr != nil {
		return Outcome{State: StateRejected, Err: d.recordErr}
	}
	if !d.hashMatch {
		// Structurally valid token whose hash no longer matches the
		// stored row: a newer login superseded this session.
		return Outcome{State: StateRejected, Err: ErrStaleRefresh}
	}
	return Outcome{State: StateRefreshAttempted, Claims: Claims{
		UserID:      d.refreshClaims.UserID,
		Permissions: d.refreshClaims.Permissions,
		NamaMitra:   d.refreshClaims.NamaMitra,
	}}
}

// Verifier gates protected requests: it validates the access token and,
// on failure, attempts refresh-token renewal against the store.
type Verifier struct {
	codec *Codec
	store Store
}

// NewVerifier constructs a Verifier sharing the login flow's codec and
// store.
func NewVerifier(codec *Codec, store Store) *Verifier {
	return &Verifier{codec: codec, store: store}
}

// Verify runs the state machine for one request. A still-valid access
// token authorizes unchanged and mutates nothing. Otherwise the refresh
// token is verified and matched against the stored hash, and on match a
// new access token is minted; the refresh token itself is not rotated
// on this path.
func (v *Verifier) Verify(ctx context.Context, tokens ResolvedTokens) (Session, error) {
	d := decision{}

	if tokens.AccessToken != "" {
		d.accessPresent = true
		d.accessClaims, d.accessErr = v.codec.Verify(tokens.AccessToken, SecretAccess)
	}

	if tokens.RefreshToken != "" {
		d.refreshPresent = true
		d.refreshClaims, d.refreshErr = v.codec.Verify(tokens.RefreshToken, SecretRefresh)
	}

	// Store lookup and hash comparison only when the refresh path can
	// still succeed; rejections must not cost a query.
	if d.refreshPresent && d.refreshErr == nil && !(d.accessPresent && d.accessErr == nil) {
		d.record, d.recordErr = v.store.RefreshTokenByUser(ctx, d.refreshClaims.UserID)
		if d.recordErr == nil {
			d.hashMatch = CompareRefreshToken(d.record.TokenHash, tokens.RefreshToken)
		}
	}

	outcome := decide(d)
	switch outcome.State {
	case StateAuthorized:
		return Session{Claims: outcome.Claims}, nil
	case StateRefreshAttempted:
		access, err := v.codec.IssueAccessToken(outcome.Claims)
		if err != nil {
			return Session{}, err
		}
		return Session{Claims: outcome.Claims, Renewed: true, NewAccessToken: access}, nil
	default:
		if outcome.Err == nil {
			return Session{}, ErrUnauthorized
		}
		return Session{}, outcome.Err
	}
}

// IsRejection reports whether err is one of the verifier's terminal
// 401-class rejections rather than an infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNoRefreshToken) ||
		errors.Is(err, ErrNoSessionRecord) ||
		errors.Is(err, ErrStaleRefresh) ||
		errors.Is(err, ErrUnauthorized)
}
