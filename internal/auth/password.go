package auth

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with its stored hash.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashRefreshToken produces the salted hash persisted for a refresh
// token. The token is digested first: bcrypt caps its input at 72 bytes
// and a signed refresh token is far longer.
func HashRefreshToken(token string) (string, error) {
	if token == "" {
		return "", errors.New("refresh token is empty")
	}
	sum := sha256.Sum256([]byte(token))
	hash, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CompareRefreshToken reports whether the presented raw refresh token
// matches the stored salted hash.
func CompareRefreshToken(storedHash, token string) bool {
	if storedHash == "" || token == "" {
		return false
	}
	sum := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(storedHash), sum[:]) == nil
}
