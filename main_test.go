package gosolve_test

import (
	"testing"

	"go.uber.org/goleak"
)

// The engine never starts goroutines; any leak is a regression.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
