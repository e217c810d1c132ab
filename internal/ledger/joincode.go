package ledger

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// joinCodeAlphabet leaves out characters that are easy to misread (0/O, 1/I).
// Its 32 symbols divide 256 evenly, so masking a random byte is unbiased.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeGenerator produces candidate join codes. Uniqueness is enforced by
// the store, not the generator.
type JoinCodeGenerator func() (string, error)

// GenerateJoinCode returns a random join code of the given length.
func GenerateJoinCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate join code: %w", err)
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[b&31]
	}
	return string(buf), nil
}

// NormalizeJoinCode canonicalizes user-typed join codes.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
