package auth

import (
	"context"
	"sync"
)

// fakeStore is an in-memory Store shared by the service and session
// tests. It counts calls so tests can assert what a path did and did
// not touch.
type fakeStore struct {
	mu        sync.Mutex
	users     map[string]*User         // keyed by email
	passwords map[string]string        // keyed by user id
	perms     map[string][]string      // keyed by role id
	refresh   map[string]*RefreshToken // keyed by user id

	refreshLookups int
	upserts        int
	deletes        int
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*User),
		passwords: make(map[string]string),
		perms:     make(map[string][]string),
		refresh:   make(map[string]*RefreshToken),
	}
}

func (s *fakeStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) PasswordHashByUser(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.passwords[userID]
	if !ok {
		return "", ErrPasswordRecordMissing
	}
	return hash, nil
}

func (s *fakeStore) PermissionsForRole(_ context.Context, roleID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.perms[roleID]...), nil
}

func (s *fakeStore) RefreshTokenByUser(_ context.Context, userID string) (*RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshLookups++
	tok, ok := s.refresh[userID]
	if !ok {
		return nil, ErrNoSessionRecord
	}
	cp := *tok
	return &cp, nil
}

func (s *fakeStore) UpsertRefreshToken(_ context.Context, tok *RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	cp := *tok
	s.refresh[tok.UserID] = &cp
	return nil
}

func (s *fakeStore) DeleteRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.refresh, userID)
	return nil
}
