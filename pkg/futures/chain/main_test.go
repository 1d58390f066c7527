package chain

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection. Worker and generator stages
// must finish before a test returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
