package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeLength is the number of digits in an emailed verification code.
const CodeLength = 6

// NewCode returns a zero-padded numeric code drawn from crypto/rand.
func NewCode(length int) (string, error) {
	if length <= 0 {
		length = CodeLength
	}
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
