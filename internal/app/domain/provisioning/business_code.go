package provisioning

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	businessCodeLength   = 10
	businessCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewBusinessCode returns a random 10 character code drawn from [A-Z0-9].
// Uniqueness is enforced by the profiles table.
func NewBusinessCode() (string, error) {
	max := big.NewInt(int64(len(businessCodeAlphabet)))
	code := make([]byte, businessCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate business code: %w", err)
		}
		code[i] = businessCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// ValidBusinessCode reports whether code has the generated shape.
func ValidBusinessCode(code string) bool {
	if len(code) != businessCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
