package state

import (
	"os"
	"time"

	"go.uber.org/zap"
)

// newLocalEnv creates a new LocalEnv instance with default values. Logger
// is replaced once configuration is loaded.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		Log:    zap.NewNop(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		start:  time.Now(),
	}
}
