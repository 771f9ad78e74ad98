package password

import (
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the process-wide bcrypt cost. Fixed so verification
	// latency stays predictable regardless of caller.
	DefaultCost = 11
)

// Hash hashes a password using bcrypt. bcrypt salts internally, so two
// hashes of the same password differ.
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
