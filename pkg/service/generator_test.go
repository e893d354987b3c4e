package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	generated := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		assert.NoError(t, err)
		assert.Len(t, code, codeLength)

		// Every character must come from the restricted alphabet.
		for _, char := range code {
			assert.Contains(t, codeAlphabet, string(char))
		}

		generated[code] = true
	}

	// 100 draws from a 32^7 space colliding would point at a broken RNG.
	assert.Len(t, generated, 100)
}

func TestCodeAlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, ambiguous := range []string{"0", "O", "1", "I", "L"} {
		assert.False(t, strings.Contains(codeAlphabet, ambiguous),
			"alphabet must not contain %q", ambiguous)
	}
}
