// Package internal holds crypto/rand helpers shared by the engine.
package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"strings"
)

// ActivationCodeDigits is the fixed length of activation codes. The code
// charset and length are part of the activation token contract: comparison
// is exact string equality over 4 decimal digits.
const ActivationCodeDigits = 4

const resetTokenRawSize = 32

// NewActivationCode returns a uniformly random 4-digit decimal code,
// zero-padded ("0042" is valid).
func NewActivationCode() (string, error) {
	var b strings.Builder
	b.Grow(ActivationCodeDigits)

	max := big.NewInt(10)
	for i := 0; i < ActivationCodeDigits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// NewResetToken returns a random 32-byte hex token for password resets.
// Only its hash is ever persisted.
func NewResetToken() (string, error) {
	var raw [resetTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw[:]), nil
}

// HashResetToken returns the hex-encoded SHA-256 digest of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
