// Package dirguard gives one owner exclusive use of a root directory,
// across goroutines and across processes.
package dirguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// LockFileName is the reserved name of the lock file inside a guarded
// root. It is never used for a chunk.
const LockFileName = "lock"

// ErrLocked reports that another instance already owns the directory.
var ErrLocked = errors.New("dirguard: directory already locked")

// Guard holds the exclusive lock on a root directory until Release.
type Guard struct {
	root string
	fl   *flock.Flock
}

// Acquire creates root if needed, takes a non-blocking exclusive lock on
// its lock file, verifies the filesystem accepts file names of
// probeNameLen bytes, and clears every pre-existing entry except the lock
// file. Opening a guarded directory is destructive: it is scratch space
// for the new owner.
//
// If the lock is held elsewhere, Acquire fails immediately with ErrLocked
// and leaves the directory untouched.
func Acquire(root string, probeNameLen int) (*Guard, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create root dir: %w", err)
	}

	lockPath := filepath.Join(root, LockFileName)
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, ErrLocked
	}

	// The filesystem must host the longest chunk file name the naming
	// scheme may produce. The probe is swept up with the rest below.
	probe := filepath.Join(root, strings.Repeat("0", probeNameLen))
	f, err := os.Create(probe)
	if err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("file name probe: %w", err)
	}
	f.Close()

	if err := clear(root, lockPath); err != nil {
		_ = fl.Unlock()
		return nil, err
	}

	return &Guard{root: root, fl: fl}, nil
}

// Root returns the guarded directory.
func (g *Guard) Root() string { return g.root }

// Release unlocks the directory and removes it with everything in it.
func (g *Guard) Release() error {
	if err := g.fl.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", g.fl.Path(), err)
	}
	if err := os.RemoveAll(g.root); err != nil {
		return fmt.Errorf("remove root dir: %w", err)
	}
	return nil
}

// clear removes every entry in root except the lock file.
func clear(root, lockPath string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read root dir: %w", err)
	}
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if path == lockPath {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("clear %s: %w", path, err)
		}
	}
	return nil
}
