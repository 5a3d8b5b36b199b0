package auth

import "time"

// User is the account record owned by the credential store. Business
// profile data (contracts, reports, inboxes) lives outside this core.
type User struct {
	ID        string
	Email     string
	RoleID    string
	NamaMitra string // partner organization name; empty for administrators
	Verified  bool
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PasswordCredential holds the salted password hash, one per user.
type PasswordCredential struct {
	UserID       string
	PasswordHash string
	UpdatedAt    time.Time
}

// RefreshToken is the persisted side of a refresh credential. Only the
// hash is stored; at most one live row exists per user, and a new login
// overwrites it.
type RefreshToken struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role groups permissions resolved at login and renewal time.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Permission is a fine-grained capability key.
type Permission struct {
	ID          string
	Key         string
	Description string
}
