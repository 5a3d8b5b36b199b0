package httpapi

import (
	"errors"
	"net/http"

	"lapormitra.id/internal/audit"
	"lapormitra.id/internal/auth"
	"lapormitra.id/internal/obs"
)

// Login flow messages. The wrong-credentials wording is deliberately
// generic so responses do not reveal whether the password or the email
// was at fault.
const (
	msgLoginSuccess  = "Login success."
	msgWrongPassword = "Email or password is wrong."
	msgNotRegistered = "Account is not registered."
	msgNotVerified   = "Account hasn't been verified. Please check your email."
	msgInternalError = "Internal server error."
	msgInvalidBody   = "Invalid request body."
	msgLogoutSuccess = "Logout success."
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	ch, ok := resolveChannel(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	pair, err := a.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.rejectLogin(w, r, err)
		return
	}

	obs.ObserveLogin("success")
	_ = audit.LogEvent(r.Context(), "auth.login.succeeded", map[string]any{
		"channel": string(ch),
	})

	body := map[string]any{
		"message":     msgLoginSuccess,
		"permissions": pair.Permissions,
	}
	switch ch {
	case ChannelWeb:
		http.SetCookie(w, accessCookie(pair.AccessToken, a.service.Codec().AccessTTL()))
		http.SetCookie(w, refreshCookie(pair.RefreshToken, a.service.Codec().RefreshTTL()))
	case ChannelMobile:
		body["accessToken"] = pair.AccessToken
		body["refreshToken"] = pair.RefreshToken
	}
	writeJSON(w, http.StatusCreated, body)
}

func (a *API) rejectLogin(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrAccountNotFound):
		obs.ObserveLogin("not_found")
		writeMessage(w, http.StatusConflict, msgNotRegistered)
	case errors.Is(err, auth.ErrAccountNotVerified):
		obs.ObserveLogin("not_verified")
		writeMessage(w, http.StatusConflict, msgNotVerified)
	case errors.Is(err, auth.ErrInvalidCredentials):
		obs.ObserveLogin("wrong_credentials")
		_ = audit.LogEvent(r.Context(), "auth.login.rejected", nil)
		writeMessage(w, http.StatusUnauthorized, msgWrongPassword)
	case errors.Is(err, auth.ErrPasswordRecordMissing):
		// Provisioning bug, not a client error: a verified user exists
		// without a password row. Flag loudly for operators.
		obs.ObserveLogin("integrity_fault")
		obs.Error("password record missing for existing user", map[string]any{
			"path": r.URL.Path,
		})
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
	default:
		obs.ObserveLogin("error")
		obs.Error("login failed", map[string]any{"error": err.Error()})
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
	}
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	if err := a.service.Logout(r.Context(), sess.Claims.UserID); err != nil {
		obs.Error("logout failed", map[string]any{"error": err.Error()})
		writeMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.logout", nil)

	if ch, _ := ChannelFromContext(r.Context()); ch == ChannelWeb {
		http.SetCookie(w, expiredCookie(accessCookieName))
		http.SetCookie(w, expiredCookie(refreshCookieName))
	}
	writeMessage(w, http.StatusOK, msgLogoutSuccess)
}

// handleMe returns the validated claims for the current session. On the
// mobile channel a silently renewed access token is merged into the
// body so the client can store it.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	body := map[string]any{
		"user_id":     sess.Claims.UserID,
		"permissions": sess.Claims.Permissions,
	}
	if sess.Claims.NamaMitra != "" {
		body["nama_mitra"] = sess.Claims.NamaMitra
	}
	if tok, ok := renewedTokenFromContext(r.Context()); ok {
		body["accessToken"] = tok
	}
	writeJSON(w, http.StatusOK, body)
}
