// Package hashing stores user passwords as salted one-way hashes.
package hashing

import (
	"errors"
	"strings"
)

// DriverName identifies a hashing algorithm.
type DriverName string

const (
	DriverBcrypt   DriverName = "bcrypt"
	DriverArgon2id DriverName = "argon2id"
)

var (
	// ErrInvalidHash is returned when a stored hash cannot be decoded.
	ErrInvalidHash = errors.New("hashing: invalid hash format")
	// ErrUnknownDriver is returned for a driver name with no registered hasher.
	ErrUnknownDriver = errors.New("hashing: unknown driver")
	// ErrInvalidOption is returned for out-of-range driver options.
	ErrInvalidOption = errors.New("hashing: invalid option")
)

// Hasher hashes and verifies passwords. Implementations are safe for
// concurrent use.
type Hasher interface {
	// Make returns a new salted hash of password.
	Make(password string) (string, error)
	// Check reports whether password produced hash. A mismatch is (false, nil);
	// a malformed hash is (false, err).
	Check(password, hash string) (bool, error)
	Driver() DriverName
}

// DetectDriver returns the driver that produced hash, judged by its prefix.
func DetectDriver(hash string) (DriverName, bool) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return DriverArgon2id, true
	case strings.HasPrefix(hash, "$2a$"),
		strings.HasPrefix(hash, "$2b$"),
		strings.HasPrefix(hash, "$2y$"):
		return DriverBcrypt, true
	default:
		return "", false
	}
}
