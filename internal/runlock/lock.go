// pattern: Imperative Shell
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".vmapps.lock"

// Acquire takes an exclusive file lock next to the apps directory so two
// sync runs cannot race on the same identifiers. Returns the flock handle
// (caller must defer Release) or an error if another run holds the lock.
func Acquire(appsDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(appsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating apps directory: %w", err)
	}
	lockPath := filepath.Join(appsDir, lockFileName)
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another vmapps run is already syncing %s", appsDir)
	}
	return fl, nil
}

// Release unlocks and removes the lock file.
func Release(appsDir string, fl *flock.Flock) {
	if fl != nil {
		_ = fl.Unlock()
	}
	_ = os.Remove(filepath.Join(appsDir, lockFileName))
}
