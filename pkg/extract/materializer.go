// Package extract writes decoded records to disk.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ssargent/fsbx/pkg/codec"
)

// Outcome describes what Materialize did with a record
type Outcome int

const (
	OutcomeWritten Outcome = iota
	OutcomeSkipped         // destination existed and overwrite was off
	OutcomeDryRun          // nothing touched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWritten:
		return "written"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDryRun:
		return "dry_run"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ErrUnsafePath is returned in strict mode for record names that would be
// written outside the output root.
var ErrUnsafePath = errors.New("record name escapes output directory")

// Options control how records are written
type Options struct {
	Root            string // Output directory; records land in Root/<kind>/<name>
	Overwrite       bool   // Replace existing files instead of skipping them
	DryRun          bool   // Never touch the filesystem
	SkipMetadata    bool   // Leave mode, times and ownership of file records at their defaults
	StrictPaths     bool   // Refuse names and symlinks that lead outside Root
}

// Materializer writes records to the filesystem. It keeps no per-record
// state and is safe for concurrent use as long as two goroutines never
// write the same destination.
type Materializer struct {
	opts   Options
	logger zerolog.Logger
}

// NewMaterializer creates a materializer. An empty Root means the working directory.
func NewMaterializer(opts Options, logger zerolog.Logger) *Materializer {
	if opts.Root == "" {
		opts.Root = "."
	}
	return &Materializer{opts: opts, logger: logger}
}

// Options returns the options the materializer was built with
func (m *Materializer) Options() Options {
	return m.opts
}

// Destination joins the output root, the record kind and the record name.
//
// Names are used as stored in the volume. A name such as "../x" resolves
// outside Root; see Materialize for how that is handled.
func (m *Materializer) Destination(rec codec.Record) string {
	return filepath.Join(m.opts.Root, string(rec.Kind()), filepath.FromSlash(rec.Name()))
}

// escapesRoot reports whether dst lies outside Root
func (m *Materializer) escapesRoot(dst string) bool {
	return outside(m.opts.Root, dst)
}

func outside(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel)
}

// resolvesOutside reports whether the nearest existing ancestor of dir
// resolves, through symlinks, to a location outside Root.
func (m *Materializer) resolvesOutside(dir string) (bool, error) {
	root, err := filepath.EvalSymlinks(m.opts.Root)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for p := dir; ; p = filepath.Dir(p) {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			return outside(root, resolved), nil
		}
		if !os.IsNotExist(err) {
			return false, err
		}
		if parent := filepath.Dir(p); parent == p {
			return false, nil
		}
	}
}

// Materialize writes rec to its destination.
func (m *Materializer) Materialize(rec codec.Record) (Outcome, error) {
	dst := m.Destination(rec)
	log := m.logger.With().Str("kind", string(rec.Kind())).Str("name", rec.Name()).Str("path", dst).Logger()

	if m.escapesRoot(dst) {
		if m.opts.StrictPaths {
			return 0, fmt.Errorf("%s %q: %w", rec.Kind(), rec.Name(), ErrUnsafePath)
		}
		log.Warn().Msg("record name escapes output directory")
	}

	if m.opts.DryRun {
		log.Debug().Msg("dry run")
		return OutcomeDryRun, nil
	}

	if m.opts.StrictPaths {
		escapes, err := m.resolvesOutside(filepath.Dir(dst))
		if err != nil {
			return 0, fmt.Errorf("failed to resolve %s: %w", dst, err)
		}
		if escapes {
			return 0, fmt.Errorf("%s %q: symlinked directory: %w", rec.Kind(), rec.Name(), ErrUnsafePath)
		}
	}

	if fi, err := os.Lstat(dst); err == nil {
		if !m.opts.Overwrite {
			log.Debug().Msg("exists, skipping")
			return OutcomeSkipped, nil
		}
		// replace the link itself rather than writing through it
		if fi.Mode()&os.ModeSymlink != 0 {
			if err := os.Remove(dst); err != nil {
				return 0, fmt.Errorf("failed to remove symlink %s: %w", dst, err)
			}
		}
	} else if !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to stat %s: %w", dst, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, rec.Payload(), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", dst, err)
	}

	if fr, ok := rec.(*codec.FileRecord); ok && !m.opts.SkipMetadata {
		for _, err := range restoreMetadata(dst, fr.Meta) {
			log.Warn().Err(err).Msg("metadata not restored")
		}
	}

	log.Debug().Int("bytes", len(rec.Payload())).Msg("written")
	return OutcomeWritten, nil
}
