// Package keygen produces and parses ICE key material for the commands.
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"
	symbols      = "!@#$%^&*()_+-=[]{};/.,~`:<>?"
)

const hexPrefix = "hex:"

// Generate returns a random printable key of length n, drawn uniformly from
// letters and digits and, if withSymbols is set, punctuation.
func Generate(n int, withSymbols bool) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("invalid key length %d", n)
	}
	alphabet := alphanumeric
	if withSymbols {
		alphabet += symbols
	}

	max := big.NewInt(int64(len(alphabet)))
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("error reading random data: %w", err)
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}
	return sb.String(), nil
}

// Parse converts a key as typed by the user into raw key bytes. Keys prefixed
// with "hex:" are hex-decoded; anything else is used byte for byte.
func Parse(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("empty key")
	}
	if strings.HasPrefix(strings.ToLower(s), hexPrefix) {
		b, err := hex.DecodeString(s[len(hexPrefix):])
		if err != nil {
			return nil, fmt.Errorf("error decoding hex key: %w", err)
		}
		return b, nil
	}
	return []byte(s), nil
}

// Format is the inverse of Parse: printable ASCII keys are returned as-is,
// anything else is hex encoded with the "hex:" prefix.
func Format(key []byte) string {
	for _, b := range key {
		if b < 0x20 || b > 0x7e {
			return hexPrefix + hex.EncodeToString(key)
		}
	}
	if strings.HasPrefix(strings.ToLower(string(key)), hexPrefix) {
		return hexPrefix + hex.EncodeToString(key)
	}
	return string(key)
}
