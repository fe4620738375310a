// Package testing switches the process into test mode when imported by a test
// binary.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("USERPANEL_TEST_MODE", "1")
		if os.Getenv("PANEL_LOCALE") == "" {
			_ = os.Setenv("PANEL_LOCALE", "en")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
