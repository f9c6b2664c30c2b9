// Package tempfile tracks temporary files for one request so they can be
// released together on every exit path.
package tempfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
)

// Scope owns a private directory under the configured temp root.
type Scope struct {
	mu     sync.Mutex
	dir    string
	paths  []string
	closed bool
}

// New creates a scope rooted in a fresh directory under root (os.TempDir when empty).
func New(root string) (*Scope, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("tempfile: prepare root: %w", err)
	}
	dir, err := os.MkdirTemp(root, "tailor-"+util.RandomToken(3)+"-")
	if err != nil {
		return nil, fmt.Errorf("tempfile: create scope: %w", err)
	}
	return &Scope{dir: dir}, nil
}

// Dir returns the scope directory.
func (s *Scope) Dir() string {
	return s.dir
}

// Path reserves a unique path inside the scope without creating it.
func (s *Scope) Path(name string) string {
	clean, err := util.SanitizeFileName(name)
	if err != nil {
		clean = "file"
	}
	p := filepath.Join(s.dir, util.UniqueName(clean))
	s.track(p)
	return p
}

// WriteFile stores data under a unique name and returns its path.
func (s *Scope) WriteFile(name string, data []byte) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", errors.New("tempfile: scope closed")
	}
	p := s.Path(name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("tempfile: write %s: %w", filepath.Base(p), err)
	}
	return p, nil
}

func (s *Scope) track(p string) {
	s.mu.Lock()
	s.paths = append(s.paths, p)
	s.mu.Unlock()
}

// Close removes every tracked file and the scope directory. Failures are
// logged and returned joined; callers treat them as non-fatal.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			telemetry.Warn("pipeline.cleanup_failed", map[string]any{"path": p, "err": err})
		}
	}
	if err := os.RemoveAll(s.dir); err != nil {
		errs = append(errs, err)
		telemetry.Warn("pipeline.cleanup_failed", map[string]any{"path": s.dir, "err": err})
	}
	return errors.Join(errs...)
}
