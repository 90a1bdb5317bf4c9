package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// GenerateOTP generates a cryptographically secure 4-digit OTP
func GenerateOTP() (string, error) {
	// Random number in [1000, 9999] - no leading zeros
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

// HashOTP returns the SHA-256 hex digest of an OTP code. The stored
// digest is compared against the digest of the submitted code - the
// plaintext code is never persisted.
func HashOTP(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
