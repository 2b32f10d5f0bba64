// Package envfile reads and writes the per-project key=value config file.
package envfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/claspx/cli/internal/fileio"
)

// Recognized project config keys. Unknown keys are preserved verbatim.
const (
	KeyAccount      = "account"
	KeyDeploymentID = "deploymentId"
)

// Store is a flat key=value configuration file. Key matching is anchored to
// the start of a line, so one key being a prefix of another never matches.
type Store struct {
	Path string
}

func New(path string) *Store {
	return &Store{Path: path}
}

// Exists reports whether the config file is present.
func (s *Store) Exists() bool {
	return fileio.FileExists(s.Path)
}

// Read returns the value for key and whether the key was present.
// Values are trimmed of surrounding whitespace and trailing carriage
// returns, tolerating files authored with CRLF line endings.
func (s *Store) Read(key string) (string, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}

	prefix := key + "="
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true, nil
		}
	}
	return "", false, nil
}

// Write sets key to value. An existing line for the key is rewritten in
// place; a new key is appended. All other lines are preserved as-is. The
// file is replaced atomically and created if absent.
func (s *Store) Write(key, value string) error {
	var lines []string
	data, err := os.ReadFile(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	if err == nil {
		lines = strings.Split(string(data), "\n")
		// Drop the empty tail produced by a trailing newline.
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
	}

	entry := key + "=" + value
	prefix := key + "="
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSuffix(line, "\r"), prefix) {
			lines[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, entry)
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := fileio.WriteFileAtomic(s.Path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.Path, err)
	}
	return nil
}
