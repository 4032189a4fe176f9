package utils

import (
	"errors"
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

var ErrEmptyPassword = errors.New("password must not be empty")

// passwordConfig is argon2id with the library defaults; hashes carry their
// own parameters so older hashes keep verifying if these change.
var passwordConfig = argon2.DefaultConfig()

// HashPassword returns an encoded argon2id hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	encoded, err := passwordConfig.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(encoded), nil
}

// VerifyPassword reports whether password matches encodedHash. A malformed
// hash is an error, a mismatch is not.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if encodedHash == "" {
		return false, errors.New("stored password hash is empty")
	}
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	return ok, nil
}
