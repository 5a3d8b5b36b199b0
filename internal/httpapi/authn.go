package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lapormitra.id/internal/audit"
	"lapormitra.id/internal/auth"
	"lapormitra.id/internal/obs"
)

// Client-facing rejection messages. Human-readable and distinct per
// cause; no machine codes, callers branch on status only.
const (
	msgInvalidRefresh = "Invalid refresh token."
	msgNoSession      = "No session on record."
	msgStaleRefresh   = "Refresh token is no longer valid."
	msgUnauthorized   = "Unauthorized."
	msgForbidden      = "Forbidden."
)

var publicPaths = []string{
	"/v1/auth/login",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/",
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

type renewedTokenContextKey struct{}

// renewedTokenFromContext returns the access token minted by a silent
// mobile-channel renewal, to be merged into the JSON response body.
func renewedTokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(renewedTokenContextKey{}).(string)
	return v, ok && v != ""
}

// withAuth gates every protected request: channel resolution, then the
// session verifier. Handlers past this point trust the session in the
// request context without re-decoding tokens.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		ch, ok := resolveChannel(r)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		tokens, err := resolveTokens(r, ch)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, rejectionMessage(err))
			return
		}

		sess, err := a.verifier.Verify(r.Context(), tokens)
		if err != nil {
			if !auth.IsRejection(err) {
				obs.Error("session verification failed", map[string]any{
					"path":  r.URL.Path,
					"error": err.Error(),
				})
				writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			obs.Warn("session rejected", map[string]any{
				"path":   r.URL.Path,
				"reason": err.Error(),
			})
			obs.ObserveRenewal("rejected")
			writeMessage(w, http.StatusUnauthorized, rejectionMessage(err))
			return
		}

		ctx := auth.ContextWithSession(r.Context(), sess)
		ctx = contextWithChannel(ctx, ch)

		if sess.Renewed {
			obs.ObserveRenewal("renewed")
			_ = audit.LogEvent(ctx, "auth.session.renewed", map[string]any{
				"user_id": sess.Claims.UserID,
				"channel": string(ch),
			})
			switch ch {
			case ChannelWeb:
				// Browsers pick the renewal up transparently.
				http.SetCookie(w, accessCookie(sess.NewAccessToken, a.service.Codec().AccessTTL()))
			case ChannelMobile:
				// Mobile clients cannot receive a set-cookie renewal;
				// the token rides in the JSON response body instead.
				ctx = context.WithValue(ctx, renewedTokenContextKey{}, sess.NewAccessToken)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission guards a handler with a permission key. It assumes
// withAuth already ran.
func RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.SessionFromContext(r.Context()); !ok {
				writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			if !auth.HasPermission(r.Context(), perm) {
				writeMessage(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrNoRefreshToken):
		return msgInvalidRefresh
	case errors.Is(err, auth.ErrNoSessionRecord):
		return msgNoSession
	case errors.Is(err, auth.ErrStaleRefresh):
		return msgStaleRefresh
	default:
		return msgUnauthorized
	}
}

func accessCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     accessCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func refreshCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
