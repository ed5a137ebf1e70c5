package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// MakeRandHexString generates a random hexadecimal string from size random
// bytes. The resulting string is twice as long as size, since every byte
// expands to two hex characters. It returns an error if the random number
// generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeRandDigits generates a random numeric string of exactly n digits,
// zero-padded on the left. Used for recovery codes sent over SMS.
func MakeRandDigits(n int) (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < n; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Useful for clearing passwords from memory after use. A nil slice
// is left alone.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
