package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one security-critical primitive in the auth flow. Keeping it
// behind an interface lets the cost factor or algorithm change without
// touching callers.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hashedPassword string) (bool, error)
}

// BcryptHasher hashes passwords with bcrypt. The zero value uses cost 10.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) cost() int {
	if h.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return h.Cost
}

// Hash hashes a password with a random per-call salt, so hashing the same
// password twice yields different encodings.
func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hashedPassword. A mismatch is a
// normal false result, not an error; only a malformed hash fails.
func (h BcryptHasher) Verify(password, hashedPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
