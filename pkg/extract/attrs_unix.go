//go:build linux || darwin || freebsd || netbsd || openbsd

package extract

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/ssargent/fsbx/pkg/codec"
)

// restoreMetadata applies ownership, mode and times in that order. Chown
// clears setuid/setgid on most systems, so the mode is set after it.
// Every step is attempted; the returned errors are informational.
func restoreMetadata(path string, meta codec.FileMeta) []error {
	var errs []error

	if err := os.Lchown(path, int(meta.UID), int(meta.GID)); err != nil {
		errs = append(errs, fmt.Errorf("chown %d:%d: %w", meta.UID, meta.GID, err))
	}
	// a zero value means no mode was recorded
	if meta.Perm != 0 {
		if err := os.Chmod(path, meta.Mode()); err != nil {
			errs = append(errs, fmt.Errorf("chmod %v: %w", meta.Mode(), err))
		}
	}

	atime, err := unix.TimeToTimespec(meta.AccessTime())
	if err != nil {
		return append(errs, fmt.Errorf("atime %d: %w", meta.Atime, err))
	}
	mtime, err := unix.TimeToTimespec(meta.ModTime())
	if err != nil {
		return append(errs, fmt.Errorf("mtime %d: %w", meta.Mtime, err))
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, []unix.Timespec{atime, mtime}, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		errs = append(errs, fmt.Errorf("utimes: %w", err))
	}

	return errs
}
