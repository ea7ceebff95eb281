package bytepatch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// PatchFile applies patch to the file at path.
//
// The whole file is read into memory, patched with Apply, written back and
// read again to check that only the patched byte changed. If path is a
// symlink the file it points to is patched, and the backup is saved next to
// path. With the default options the new contents go to a temporary file in
// the same directory which is then renamed over the file, so a failed write
// never leaves it half written.
//
// An existing backup is never overwritten.
//
// Errors can be matched with errors.Is against ErrFileNotFound,
// ErrReadFailed, ErrMalformedSignature, ErrEmptyPattern, ErrPatternNotFound,
// ErrAmbiguousMatch, ErrOffsetOutOfBounds, ErrWritePermissionDenied,
// ErrWriteFailed and ErrLocked. The underlying OS error is wrapped too.
func PatchFile(path string, patch Patch, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrReadFailed, path)
	}

	// Patch the file a symlink points to, not the link. Renaming over a
	// link would replace the link and leave the real file untouched.
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	// A dry run writes nothing, so it doesn't need (or get to fail on)
	// the lock file either.
	if o.lock && !o.dryRun {
		unlock, err := lockFile(target + ".lock")
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	buf, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	var original []byte
	if !o.dryRun {
		original = make([]byte, len(buf))
		copy(original, buf)
	}

	res, err := apply(buf, patch, o)
	if err != nil {
		return nil, err
	}

	if o.dryRun {
		return &res, nil
	}

	if o.backupSuffix != "" {
		if err := writeBackup(path+o.backupSuffix, original, info.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("backup: %w", err)
		}
	}

	if o.atomic {
		err = replaceFile(target, buf, info.Mode().Perm())
	} else {
		err = overwriteFile(target, buf)
	}
	if err != nil {
		return nil, err
	}

	// Read it back to make sure the write landed and nothing else changed.
	written, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("%w: verify: %w", ErrWriteFailed, err)
	}
	if err := Verify(original, written, res); err != nil {
		return nil, fmt.Errorf("%w: verify: %w", ErrWriteFailed, err)
	}

	return &res, nil
}

// writeErr classifies an error from the write side of a patch.
func writeErr(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrWritePermissionDenied, err)
	}
	return fmt.Errorf("%w: %w", ErrWriteFailed, err)
}

// writeBackup saves buf to path unless path already exists. A file that was
// patched before may match again, and overwriting the backup then would
// lose the only unpatched copy.
func writeBackup(path string, buf []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return writeErr(err)
	}

	_, err = f.Write(buf)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return writeErr(err)
	}
	return nil
}

// overwriteFile rewrites path in place. The file must already exist.
func overwriteFile(path string, buf []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return writeErr(err)
	}

	err = f.Truncate(int64(len(buf)))
	if err == nil {
		_, err = f.WriteAt(buf, 0)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return writeErr(err)
	}
	return nil
}

// replaceFile writes buf to a temporary file next to path and renames it over
// path.
func replaceFile(path string, buf []byte, perm fs.FileMode) error {
	// Fail early, and with the right error, if path itself isn't writable.
	// Otherwise the rename below would happily replace a read-only file.
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return writeErr(err)
	}
	f.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return writeErr(err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Only does anything if the rename didn't happen.
		os.Remove(tmpName)
	}()

	_, err = tmp.Write(buf)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, perm)
	}
	if err == nil {
		err = os.Rename(tmpName, path)
	}
	if err != nil {
		return writeErr(err)
	}
	return nil
}
