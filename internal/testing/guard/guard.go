// Package guard flips the runtime into test mode when imported. Test
// packages that transitively pull in main-package wiring import it for
// side effects so no server or worker ever starts under `go test`.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("MERIDIAN_TEST_MODE") == "" {
			_ = os.Setenv("MERIDIAN_TEST_MODE", "1")
		}
	})
}
