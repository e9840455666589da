package testutil

import (
	"testing"

	"github.com/mcoot/hiddengrid/internal/dependencies/random"
	"github.com/mcoot/hiddengrid/internal/fhe"
)

// Fixed key material for tests
var (
	Seed                 = []byte("hiddengrid-shared-test-seed-0001")
	Contract fhe.Account = "0x00000000000000000000000000000000000c0de0"
)

// NewExecutor builds an executor over store with the shared test keys
func NewExecutor(t testing.TB, store fhe.Store, rnd random.Random) *fhe.Executor {
	t.Helper()
	keys, err := fhe.NewKeyset(Seed)
	if err != nil {
		t.Fatalf("keyset: %v", err)
	}
	return fhe.NewExecutor(keys, store, rnd, Contract, NopLogger())
}
