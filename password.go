package auth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt work factor applied to stored credentials
const PasswordHashCost = 14

// HashPassword derives a bcrypt hash for a cleartext password. Empty
// passwords are rejected before they ever reach the hasher.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// ComparePasswordAndHash checks a cleartext password against a stored
// hash. A mismatch surfaces as the uniform bad-credentials error.
func ComparePasswordAndHash(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatchedHashAndPassword
	}

	return err
}

// RandomPasswordHash fills the credential slot for accounts that will
// only ever log in through an external provider. The cleartext is a
// throwaway UUID that is never stored or disclosed.
func RandomPasswordHash() string {
	for {
		hash, err := HashPassword(uuid.NewString())
		if err == nil {
			return hash
		}
	}
}
