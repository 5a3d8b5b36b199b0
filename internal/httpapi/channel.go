package httpapi

import (
	"context"
	"net/http"
	"strings"

	"lapormitra.id/internal/auth"
)

// Channel is the transport convention a client uses to carry tokens.
type Channel string

const (
	ChannelWeb    Channel = "web"
	ChannelMobile Channel = "mobile"
)

// Request-side contract.
const (
	clientTypeHeader   = "X-Client-Type"
	refreshTokenHeader = "X-Refresh-Token"
	authHeader         = "Authorization"
	bearerPrefix       = "Bearer "

	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

type channelContextKey struct{}

func contextWithChannel(ctx context.Context, ch Channel) context.Context {
	return context.WithValue(ctx, channelContextKey{}, ch)
}

// ChannelFromContext returns the resolved client channel for the request.
func ChannelFromContext(ctx context.Context) (Channel, bool) {
	v, ok := ctx.Value(channelContextKey{}).(Channel)
	return v, ok
}

// resolveChannel reads the client-type indicator. Absent or unknown
// values leave the request unauthenticated.
func resolveChannel(r *http.Request) (Channel, bool) {
	switch strings.TrimSpace(strings.ToLower(r.Header.Get(clientTypeHeader))) {
	case "web":
		return ChannelWeb, true
	case "mobile":
		return ChannelMobile, true
	default:
		return "", false
	}
}

// resolveTokens normalizes token extraction across the two transport
// conventions so the verifier stays transport-agnostic. The refresh
// token is mandatory; a request that carries none is rejected before
// any store lookup. The access token is optional on both channels.
func resolveTokens(r *http.Request, ch Channel) (auth.ResolvedTokens, error) {
	var tokens auth.ResolvedTokens

	switch ch {
	case ChannelWeb:
		if c, err := r.Cookie(accessCookieName); err == nil {
			tokens.AccessToken = c.Value
		}
		if c, err := r.Cookie(refreshCookieName); err == nil {
			tokens.RefreshToken = c.Value
		}
	case ChannelMobile:
		// Header.Get collapses repeated headers to the first value.
		tokens.RefreshToken = strings.TrimSpace(r.Header.Get(refreshTokenHeader))
		raw := strings.TrimSpace(r.Header.Get(authHeader))
		if raw != "" && strings.HasPrefix(strings.ToLower(raw), strings.ToLower(bearerPrefix)) {
			tokens.AccessToken = strings.TrimSpace(raw[len(bearerPrefix):])
		}
	default:
		return auth.ResolvedTokens{}, auth.ErrUnauthorized
	}

	if strings.TrimSpace(tokens.RefreshToken) == "" {
		return auth.ResolvedTokens{}, auth.ErrNoRefreshToken
	}
	return tokens, nil
}
