// Package content finds class name candidates in project files: templates,
// markup and scripts, either on disk or packed in zip archives.
package content

import (
	"archive/zip"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"twdefaults/archive"
)

// Scanner extracts candidates from files matching configured glob patterns.
type Scanner struct {
	log     *zap.Logger
	matcher glob.Glob
	pattern string
}

// NewScanner compiles patterns ("**.html", "src/*.{js,ts}"). Patterns are
// matched against slash separated paths relative to the scanned root or
// against entry names inside archives.
func NewScanner(patterns []string, log *zap.Logger) (*Scanner, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no content patterns specified")
	}

	pattern := patterns[0]
	if len(patterns) > 1 {
		pattern = "{" + strings.Join(patterns, ",") + "}"
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("bad content pattern %q: %w", pattern, err)
	}
	return &Scanner{log: log.Named("content"), matcher: g, pattern: pattern}, nil
}

// Match reports whether slash separated relative path should be scanned.
func (s *Scanner) Match(name string) bool {
	return s.matcher.Match(name)
}

// Pattern returns combined glob pattern.
func (s *Scanner) Pattern() string {
	return s.pattern
}

// Scan walks root (skipping hidden directories) and archives, returning
// de-duplicated candidates in natural order. Files which could not be read
// do not stop the scan, their errors are combined and returned along with
// whatever was found.
func (s *Scanner) Scan(ctx context.Context, root string, archives ...string) ([]string, error) {
	var (
		errs  error
		files int
		found = make(map[string]struct{})
	)
	collect := func(candidates []string) {
		for _, c := range candidates {
			found[c] = struct{}{}
		}
	}

	if root != "" {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = multierr.Append(errs, err)
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			if !s.Match(filepath.ToSlash(rel)) {
				return nil
			}
			files++
			candidates, err := s.scanFile(p)
			if err != nil {
				errs = multierr.Append(errs, err)
				return nil
			}
			collect(candidates)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("unable to scan %s: %w", root, err)
		}
	}

	for _, a := range archives {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := archive.Walk(a, s.pattern, func(name string, f *zip.File) error {
			files++
			candidates, err := s.scanEntry(name, f)
			if err != nil {
				errs = multierr.Append(errs, err)
				return nil
			}
			collect(candidates)
			return nil
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("unable to scan archive %s: %w", a, err))
		}
	}

	out := make([]string, 0, len(found))
	for c := range found {
		out = append(out, c)
	}
	sort.Sort(natural.StringSlice(out))

	s.log.Debug("Content scanned", zap.Int("files", files), zap.Int("candidates", len(out)), zap.Error(errs))
	return out, errs
}

func (s *Scanner) scanFile(p string) ([]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	candidates, err := Extract(p, f)
	if err != nil {
		return nil, fmt.Errorf("unable to extract candidates from %s: %w", p, err)
	}
	return candidates, nil
}

func (s *Scanner) scanEntry(a string, f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open %s in %s: %w", f.Name, a, err)
	}
	defer rc.Close()

	candidates, err := Extract(f.Name, rc)
	if err != nil {
		return nil, fmt.Errorf("unable to extract candidates from %s in %s: %w", f.Name, a, err)
	}
	return candidates, nil
}
