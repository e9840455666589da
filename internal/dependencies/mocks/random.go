package mocks

import (
	"github.com/mcoot/hiddengrid/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// Uint8Results is a queue of results to return from Uint8
	Uint8Results []uint8
	uint8Index   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Uint8 returns the next queued result, or 0 if none remaining
func (r *MockRandom) Uint8() uint8 {
	if r.uint8Index >= len(r.Uint8Results) {
		return 0
	}
	result := r.Uint8Results[r.uint8Index]
	r.uint8Index++
	return result
}

// QueueUint8 adds values to the Uint8 result queue
func (r *MockRandom) QueueUint8(values ...uint8) {
	r.Uint8Results = append(r.Uint8Results, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.Uint8Results = nil
	r.uint8Index = 0
}
