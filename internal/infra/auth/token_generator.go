package auth

import (
	"crypto/rand"
	"encoding/hex"

	"idhub/internal/domain/service"

	"github.com/pkg/errors"
)

// rawTokenBytes is the entropy of generated credential tokens; 32 bytes
// yields a 64-character hex string.
const rawTokenBytes = 32

// randomTokenGenerator produces opaque credential tokens from crypto/rand.
type randomTokenGenerator struct{}

// NewTokenGenerator is the constructor for randomTokenGenerator.
func NewTokenGenerator() service.TokenGenerator {
	return &randomTokenGenerator{}
}

// Generate returns a fresh 64-character hex token.
func (g *randomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, rawTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return hex.EncodeToString(buf), nil
}
