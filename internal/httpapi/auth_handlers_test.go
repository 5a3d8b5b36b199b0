package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lapormitra.id/internal/auth"
)

func TestLoginUnverifiedAccount(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "baru@example.id", "rahasia-123", false)

	rr := env.login(t, "web", "baru@example.id", "rahasia-123")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if got := messageOf(t, rr); got != msgNotVerified {
		t.Fatalf("expected %q, got %q", msgNotVerified, got)
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	env := newTestEnv(t)

	rr := env.login(t, "web", "tidak-ada@example.id", "whatever")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if got := messageOf(t, rr); got != msgNotRegistered {
		t.Fatalf("expected %q, got %q", msgNotRegistered, got)
	}
}

func TestLoginWrongPasswordIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mitra@example.id", "rahasia-123", true)

	first := env.login(t, "mobile", "mitra@example.id", "salah-1")
	second := env.login(t, "mobile", "mitra@example.id", "salah-2")

	for _, rr := range []*httptest.ResponseRecorder{first, second} {
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if got := messageOf(t, rr); got != msgWrongPassword {
			t.Fatalf("expected %q, got %q", msgWrongPassword, got)
		}
	}
	// Byte-identical bodies: nothing may hint at why the comparison failed.
	if first.Body.String() != second.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestLoginWebDeliversCookies(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mitra@example.id", "rahasia-123", true)

	rr := env.login(t, "web", "mitra@example.id", "rahasia-123")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	cookies := map[string]*http.Cookie{}
	for _, c := range rr.Result().Cookies() {
		cookies[c.Name] = c
	}
	access, ok := cookies[accessCookieName]
	if !ok {
		t.Fatalf("access cookie missing")
	}
	refresh, ok := cookies[refreshCookieName]
	if !ok {
		t.Fatalf("refresh cookie missing")
	}
	for _, c := range []*http.Cookie{access, refresh} {
		if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteNoneMode || c.Path != "/" {
			t.Fatalf("cookie %s attributes wrong: %+v", c.Name, c)
		}
	}
	if access.MaxAge != int(auth.DefaultAccessTTL.Seconds()) {
		t.Fatalf("access cookie Max-Age: got %d", access.MaxAge)
	}
	if refresh.MaxAge != int(auth.DefaultRefreshTTL.Seconds()) {
		t.Fatalf("refresh cookie Max-Age: got %d", refresh.MaxAge)
	}

	body := decodeBody(t, rr)
	if _, ok := body["accessToken"]; ok {
		t.Fatalf("web login must not return tokens in the body")
	}
	if _, ok := body["permissions"]; !ok {
		t.Fatalf("permission list missing from body: %v", body)
	}
}

func TestLoginMobileDeliversTokensInBody(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mitra@example.id", "rahasia-123", true)

	rr := env.login(t, "mobile", "mitra@example.id", "rahasia-123")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Fatalf("mobile login must not set cookies")
	}

	body := decodeBody(t, rr)
	access, _ := body["accessToken"].(string)
	refresh, _ := body["refreshToken"].(string)
	if access == "" || refresh == "" {
		t.Fatalf("tokens missing from body: %v", body)
	}
	if _, err := env.codec.Verify(access, auth.SecretAccess); err != nil {
		t.Fatalf("access token: %v", err)
	}
	if _, err := env.codec.Verify(refresh, auth.SecretRefresh); err != nil {
		t.Fatalf("refresh token: %v", err)
	}
	perms, _ := body["permissions"].([]any)
	if len(perms) != 2 {
		t.Fatalf("expected permission list, got %v", body["permissions"])
	}
}

func TestLoginRejectsUnknownChannel(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mitra@example.id", "rahasia-123", true)

	rr := env.login(t, "desktop", "mitra@example.id", "rahasia-123")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestLoginRejectsBadBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader("{"))
	req.Header.Set(clientTypeHeader, "web")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestLoginMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/login", nil)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if allow := rr.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("expected Allow: POST, got %q", allow)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mitra@example.id", "rahasia-123", true)
	access, refresh := env.mobilePair(t, "mitra@example.id", "rahasia-123")

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set(clientTypeHeader, "mobile")
	req.Header.Set(authHeader, "Bearer "+access)
	req.Header.Set(refreshTokenHeader, refresh)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// The refresh token no longer renews anything.
	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(clientTypeHeader, "mobile")
	req.Header.Set(refreshTokenHeader, refresh)
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rr.Code)
	}
	if got := messageOf(t, rr); got != msgNoSession {
		t.Fatalf("expected %q, got %q", msgNoSession, got)
	}
}

func TestLogoutWebClearsCookies(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mitra@example.id", "rahasia-123", true)
	_, refresh := env.mobilePair(t, "mitra@example.id", "rahasia-123")

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	req.Header.Set(clientTypeHeader, "web")
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh})
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	cleared := 0
	for _, c := range rr.Result().Cookies() {
		if (c.Name == accessCookieName || c.Name == refreshCookieName) && c.MaxAge < 0 {
			cleared++
		}
	}
	if cleared != 2 {
		t.Fatalf("expected both cookies cleared, got %d", cleared)
	}
}

func TestMeReturnsClaims(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "mitra@example.id", "rahasia-123", true)
	access, refresh := env.mobilePair(t, "mitra@example.id", "rahasia-123")

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(clientTypeHeader, "mobile")
	req.Header.Set(authHeader, "Bearer "+access)
	req.Header.Set(refreshTokenHeader, refresh)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	body := decodeBody(t, rr)
	if body["user_id"] != "user-mitra@example.id" {
		t.Fatalf("unexpected user_id: %v", body["user_id"])
	}
	if body["nama_mitra"] != "PT Maju Bersama" {
		t.Fatalf("unexpected nama_mitra: %v", body["nama_mitra"])
	}
	// Access token was valid: no silent renewal, no token in the body.
	if _, ok := body["accessToken"]; ok {
		t.Fatalf("unexpected renewal: %v", body)
	}
}
