package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("output directory is in use by another extraction")

// OutputLock guards an output root against concurrent extractions.
// The lock file lives next to the root ("<root>.lock") so it never shows
// up inside the extracted tree.
type OutputLock struct {
	path string
	lock *flock.Flock
}

// New creates a lock for outputDir. Nothing is touched on disk until TryLock.
func New(outputDir string) *OutputLock {
	path := filepath.Clean(outputDir) + ".lock"
	return &OutputLock{
		path: path,
		lock: flock.New(path),
	}
}

// Path returns the lock file path.
func (l *OutputLock) Path() string {
	return l.path
}

// TryLock attempts to acquire the lock without blocking.
// Returns ErrLocked if another process already holds it.
func (l *OutputLock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, l.path)
	}
	return nil
}

// Release releases the lock and removes the lock file.
func (l *OutputLock) Release() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}
