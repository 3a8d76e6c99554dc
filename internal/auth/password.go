package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// credentialVersion tags the stored format; bump together with the KDF
	// parameters below so old hashes stay verifiable.
	credentialVersion = 0x01

	saltSize       = 16
	derivedKeySize = 32
	kdfIterations  = 210_000
)

// ErrEmptyPassword is returned when an empty password is offered for hashing.
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword derives a storable credential from a plaintext password using
// PBKDF2-SHA256 with a fresh random salt. The result is
// base64(version || salt || derived key); hashing the same password twice
// yields different values because the salt is fresh every call.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, kdfIterations, derivedKeySize, sha256.New)

	buf := make([]byte, 0, 1+saltSize+derivedKeySize)
	buf = append(buf, credentialVersion)
	buf = append(buf, salt...)
	buf = append(buf, key...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// VerifyPassword re-derives a key from the candidate password and the salt
// embedded in the stored credential and compares it in constant time. Any
// decoding anomaly (bad base64, wrong length, unknown version) fails closed
// with false rather than an error.
func VerifyPassword(stored, candidate string) bool {
	if stored == "" || candidate == "" {
		return false
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return false
	}
	if len(raw) != 1+saltSize+derivedKeySize || raw[0] != credentialVersion {
		return false
	}

	salt := raw[1 : 1+saltSize]
	key := raw[1+saltSize:]

	derived := pbkdf2.Key([]byte(candidate), salt, kdfIterations, derivedKeySize, sha256.New)
	return subtle.ConstantTimeCompare(key, derived) == 1
}
