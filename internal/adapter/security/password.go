package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	saltLength     = 16
	hashDelimiter  = ":"
	legacyHexWidth = sha256.Size * 2
)

var ErrEmptyPassword = errors.New("password cannot be empty")

// HashPassword returns base64(salt):base64(sha256(salt || password)) with a
// fresh 16-byte salt. The format is shared with staff files written by
// earlier releases and must not change.
func HashPassword(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	enc := base64.StdEncoding
	return enc.EncodeToString(salt) + hashDelimiter + enc.EncodeToString(hashWithSalt(plain, salt)), nil
}

// VerifyPassword checks plain against stored, which may be a salted hash,
// a legacy unsalted hex SHA-256 digest, or a legacy plain-text password.
func VerifyPassword(plain, stored string) bool {
	if IsHashed(stored) {
		saltPart, hashPart, _ := strings.Cut(stored, hashDelimiter)
		salt, err := base64.StdEncoding.DecodeString(saltPart)
		if err != nil {
			return false
		}
		want, err := base64.StdEncoding.DecodeString(hashPart)
		if err != nil {
			return false
		}
		return subtle.ConstantTimeCompare(want, hashWithSalt(plain, salt)) == 1
	}

	if isHexDigest(stored) {
		sum := sha256.Sum256([]byte(plain))
		return strings.EqualFold(hex.EncodeToString(sum[:]), stored)
	}

	return subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
}

// IsHashed reports whether stored is already in the salted format.
func IsHashed(stored string) bool {
	return strings.Contains(stored, hashDelimiter)
}

func isHexDigest(s string) bool {
	if len(s) != legacyHexWidth {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func hashWithSalt(plain string, salt []byte) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(plain))
	return h.Sum(nil)
}

// Hasher adapts the package functions to the service layer.
type Hasher struct{}

func (Hasher) Hash(plain string) (string, error) { return HashPassword(plain) }
func (Hasher) Verify(plain, stored string) bool  { return VerifyPassword(plain, stored) }
func (Hasher) IsHashed(stored string) bool       { return IsHashed(stored) }
