package service

import (
	"crypto/rand"
	"math/big"
)

const codeLength = 7

// codeAlphabet excludes characters that are easily confused when read aloud
// or typed by hand (0/O, 1/I/L).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode produces a random fixed-length code drawn uniformly from the
// restricted alphabet. It does not check for collisions; the registry does
// that against the store.
func GenerateCode() (string, error) {
	code := make([]byte, codeLength)
	alphabetLength := big.NewInt(int64(len(codeAlphabet)))

	for i := range code {
		num, err := rand.Int(rand.Reader, alphabetLength)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[num.Int64()]
	}
	return string(code), nil
}
