package random

import (
	"crypto/rand"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Uint8 returns a uniformly random byte over the full range [0, 255]
	Uint8() uint8
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Uint8 returns a cryptographically random byte
func (r *CryptoRandom) Uint8() uint8 {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Fall back to 0 on error (should never happen with crypto/rand)
		return 0
	}
	return b[0]
}
