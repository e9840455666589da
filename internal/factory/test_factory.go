package factory

import (
	"time"

	"github.com/mcoot/hiddengrid/internal/dependencies/mocks"
	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/services/auth"
	"github.com/mcoot/hiddengrid/internal/storage/memory"
	"github.com/mcoot/hiddengrid/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The hub is not running; call go app.Hub.Run() when streaming is exercised.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	keys, err := fhe.NewKeyset(testutil.Seed)
	if err != nil {
		panic(err)
	}

	app := newWithDependencies(store, keys, testutil.Contract, mockClock, mockRandom, auth.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
