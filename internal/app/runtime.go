package app

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

// testModeEnv puts every binary in a side-effect free mode: the commands
// exit before serving and storage never leaves the process.
const testModeEnv = "CELTIS_TEST_MODE"

var testMode struct {
	once sync.Once
	on   atomic.Bool
}

func readTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(testModeEnv))
	return err == nil && on
}

// InTestMode reports whether CELTIS_TEST_MODE is set to a true value.
func InTestMode() bool {
	testMode.once.Do(RefreshTestMode)
	return testMode.on.Load()
}

// RefreshTestMode re-reads CELTIS_TEST_MODE after the environment changed.
func RefreshTestMode() {
	testMode.on.Store(readTestMode())
}

// EffectiveStorageDriver is the backend OpenStorage will use: the configured
// driver, or memory in test mode so no snapshot or catalog reaches disk,
// Redis or Postgres.
func (c *Config) EffectiveStorageDriver() string {
	if InTestMode() {
		return StorageMemory
	}
	return c.StorageDriver
}
