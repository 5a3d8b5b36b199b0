package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// OpenPG opens a pgx-backed store with tuned pool defaults.
func OpenPG(dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &PGStore{db: db}, nil
}

// NewPGStore wraps an existing connection pool.
func NewPGStore(db *sql.DB) *PGStore { return &PGStore{db: db} }

func (s *PGStore) Close() error { return s.db.Close() }

// DB exposes the pool for readiness probes and migrations.
func (s *PGStore) DB() *sql.DB { return s.db }

func (s *PGStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	row := s.db.QueryRowContext(ctx, `
		select id, email, role_id, coalesce(nama_mitra, ''), verified, active, created_at, updated_at
		from users where email = $1 and active`, email)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.RoleID, &u.NamaMitra, &u.Verified, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (s *PGStore) PasswordHashByUser(ctx context.Context, userID string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`select password_hash from password_credentials where user_id = $1`, userID)
	var hash string
	if err := row.Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrPasswordRecordMissing
		}
		return "", fmt.Errorf("password hash by user: %w", err)
	}
	return hash, nil
}

func (s *PGStore) PermissionsForRole(ctx context.Context, roleID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		select p.key
		from role_permissions rp
		join permissions p on p.id = rp.permission_id
		where rp.role_id = $1
		order by p.key`, roleID)
	if err != nil {
		return nil, fmt.Errorf("permissions for role: %w", err)
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		perms = append(perms, key)
	}
	return perms, rows.Err()
}

func (s *PGStore) RefreshTokenByUser(ctx context.Context, userID string) (*RefreshToken, error) {
	row := s.db.QueryRowContext(ctx, `
		select user_id, token_hash, expires_at, created_at, updated_at
		from refresh_tokens where user_id = $1`, userID)
	var tok RefreshToken
	if err := row.Scan(&tok.UserID, &tok.TokenHash, &tok.ExpiresAt, &tok.CreatedAt, &tok.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSessionRecord
		}
		return nil, fmt.Errorf("refresh token by user: %w", err)
	}
	return &tok, nil
}

func (s *PGStore) UpsertRefreshToken(ctx context.Context, tok *RefreshToken) error {
	_, err := s.db.ExecContext(ctx, `
		insert into refresh_tokens(user_id, token_hash, expires_at, created_at, updated_at)
		values ($1, $2, $3, now(), now())
		on conflict (user_id) do update
		set token_hash = excluded.token_hash,
		    expires_at = excluded.expires_at,
		    updated_at = now()`,
		tok.UserID, tok.TokenHash, tok.ExpiresAt)
	if err != nil {
		return fmt.Errorf("upsert refresh token: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteRefreshToken(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`delete from refresh_tokens where user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
