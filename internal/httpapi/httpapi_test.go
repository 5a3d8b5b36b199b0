package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"lapormitra.id/internal/auth"
)

const (
	testAccessSecret  = "httpapi-access-secret"
	testRefreshSecret = "httpapi-refresh-secret"
)

// fakeStore is an in-memory credential store for handler tests.
type fakeStore struct {
	mu        sync.Mutex
	users     map[string]*auth.User
	passwords map[string]string
	perms     map[string][]string
	refresh   map[string]*auth.RefreshToken

	refreshLookups int
}

var _ auth.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*auth.User),
		passwords: make(map[string]string),
		perms:     make(map[string][]string),
		refresh:   make(map[string]*auth.RefreshToken),
	}
}

func (s *fakeStore) FindUserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) PasswordHashByUser(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.passwords[userID]
	if !ok {
		return "", auth.ErrPasswordRecordMissing
	}
	return hash, nil
}

func (s *fakeStore) PermissionsForRole(_ context.Context, roleID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.perms[roleID]...), nil
}

func (s *fakeStore) RefreshTokenByUser(_ context.Context, userID string) (*auth.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLookups++
	tok, ok := s.refresh[userID]
	if !ok {
		return nil, auth.ErrNoSessionRecord
	}
	cp := *tok
	return &cp, nil
}

func (s *fakeStore) UpsertRefreshToken(_ context.Context, tok *auth.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tok
	s.refresh[tok.UserID] = &cp
	return nil
}

func (s *fakeStore) DeleteRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, userID)
	return nil
}

type testEnv struct {
	handler http.Handler
	store   *fakeStore
	codec   *auth.Codec
	service *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	codec, err := auth.NewCodec(testAccessSecret, testRefreshSecret)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	store := newFakeStore()
	service := auth.NewService(store, codec)
	api := New(Options{
		Service:    service,
		Verifier:   auth.NewVerifier(codec, store),
		Version:    "test",
		LoginBurst: 1000, LoginPerMinute: 60000,
	})
	return &testEnv{
		handler: api.Handler(),
		store:   store,
		codec:   codec,
		service: service,
	}
}

// seedUser provisions a verified partner user with a known password.
func (e *testEnv) seedUser(t *testing.T, email, password string, verified bool) *auth.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := &auth.User{
		ID:        "user-" + email,
		Email:     email,
		RoleID:    "role_mitra",
		NamaMitra: "PT Maju Bersama",
		Verified:  verified,
		Active:    true,
	}
	e.store.users[email] = u
	e.store.passwords[u.ID] = hash
	e.store.perms["role_mitra"] = []string{auth.PermReportSubmit, auth.PermContractRead}
	return u
}

// login runs the login endpoint and returns the recorder.
func (e *testEnv) login(t *testing.T, channel, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if channel != "" {
		req.Header.Set(clientTypeHeader, channel)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

// mobilePair logs in over the mobile channel and returns both tokens.
func (e *testEnv) mobilePair(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()
	rr := e.login(t, "mobile", email, password)
	if rr.Code != http.StatusCreated {
		t.Fatalf("login: got %d, body %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken, resp.RefreshToken
}

// expiredAccessToken mints an access token that expired an hour ago.
func expiredAccessToken(t *testing.T, userID string) string {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	codec, err := auth.NewCodec(testAccessSecret, testRefreshSecret,
		auth.WithCodecClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	token, err := codec.IssueAccessToken(auth.Claims{UserID: userID})
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return body
}

func messageOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode message body %q: %v", rr.Body.String(), err)
	}
	return body.Message
}
