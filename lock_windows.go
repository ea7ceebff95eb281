//go:build windows

package bytepatch

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// lockFile takes an exclusive, non-blocking lock on the first byte of path,
// creating it if needed. The returned func releases the lock. The lock file
// is left behind, as on unix.
func lockFile(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("lock: %w", writeErr(err))
	}

	handle := windows.Handle(f.Fd())
	var ol windows.Overlapped
	err = windows.LockFileEx(handle, windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, &ol)
	if err != nil {
		f.Close()
		if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("lock: %w", writeErr(err))
	}

	return func() {
		windows.UnlockFileEx(handle, 0, 1, 0, &ol)
		f.Close()
	}, nil
}
