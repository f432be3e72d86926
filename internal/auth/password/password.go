// Package password derives and verifies salted PBKDF2-SHA256 password records.
//
// A record has the form hex(salt):hex(key). Verification never panics and
// treats any malformed record as a mismatch.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	dErrors "inkwell/pkg/domain-errors"
)

const (
	DefaultIterations = 100_000
	DefaultSaltLength = 16
	DefaultKeyLength  = 32
)

// Hasher carries the derivation parameters.
type Hasher struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

var defaultHasher = NewHasher()

func NewHasher() *Hasher {
	return &Hasher{
		Iterations: DefaultIterations,
		SaltLength: DefaultSaltLength,
		KeyLength:  DefaultKeyLength,
	}
}

// Hash derives a new record with the default parameters.
func Hash(password string) (string, error) {
	return defaultHasher.Hash(password)
}

// Verify checks a password against a record with the default parameters.
func Verify(password, record string) bool {
	return defaultHasher.Verify(password, record)
}

func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeValidation, "password is required")
	}

	salt := make([]byte, h.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate salt")
	}

	key := h.derive(password, salt)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

func (h *Hasher) Verify(password, record string) bool {
	salt, want, ok := h.parse(record)
	if !ok {
		return false
	}
	got := hex.EncodeToString(h.derive(password, salt))
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// parse returns the salt and the lowercase hex key of a well-formed record.
func (h *Hasher) parse(record string) ([]byte, string, bool) {
	parts := strings.Split(record, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, "", false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) < h.SaltLength {
		return nil, "", false
	}
	key, err := hex.DecodeString(parts[1])
	if err != nil || len(key) != h.KeyLength {
		return nil, "", false
	}
	return salt, hex.EncodeToString(key), true
}

func (h *Hasher) derive(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, h.Iterations, h.KeyLength, sha256.New)
}
