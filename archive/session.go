// CLAUDE:SUMMARY Session is the per-run ephemeral workspace: isolated temp root, named subscopes, guaranteed teardown.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// Session is an isolated ephemeral workspace for one batch run. Every
// extraction and copy tree lives under its root; Close removes the whole
// root, so cleanup is a single deferred call on every exit path.
type Session struct {
	root string
}

// NewSession creates a workspace under baseDir (the system temp
// directory when empty).
func NewSession(baseDir string) (*Session, error) {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o755); err != nil {
			return nil, fmt.Errorf("archive: create work dir: %w", err)
		}
	}
	root, err := os.MkdirTemp(baseDir, "duplicator_")
	if err != nil {
		return nil, fmt.Errorf("archive: create session: %w", err)
	}
	return &Session{root: root}, nil
}

// Root returns the session's root directory.
func (s *Session) Root() string { return s.root }

// Sub creates (if needed) and returns a named subdirectory of the session.
func (s *Session) Sub(name string) (string, error) {
	dir := filepath.Join(s.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create session subdir %s: %w", name, err)
	}
	return dir, nil
}

// Close removes the session root and everything under it.
func (s *Session) Close() error {
	return os.RemoveAll(s.root)
}
