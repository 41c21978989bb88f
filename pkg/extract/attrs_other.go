//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package extract

import (
	"fmt"
	"os"

	"github.com/ssargent/fsbx/pkg/codec"
)

// restoreMetadata restores mode and times only; ownership ids from the
// volume are not meaningful here.
func restoreMetadata(path string, meta codec.FileMeta) []error {
	var errs []error
	if meta.Perm != 0 {
		if err := os.Chmod(path, meta.Mode()); err != nil {
			errs = append(errs, fmt.Errorf("chmod %v: %w", meta.Mode(), err))
		}
	}
	if err := os.Chtimes(path, meta.AccessTime(), meta.ModTime()); err != nil {
		errs = append(errs, fmt.Errorf("chtimes: %w", err))
	}
	return errs
}
