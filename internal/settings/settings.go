// Package settings loads the ~/.claspx/config.yaml global configuration.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// HomeEnv overrides the claspx base directory. When set, the active
	// credential slot also defaults to a path inside it, so nothing
	// outside the override is ever touched.
	HomeEnv = "CLASPX_HOME"

	defaultClaspBin = "clasp"
	configFile      = "config.yaml"
)

// Settings holds resolved global configuration. Zero fields in the config
// file fall back to the defaults below.
type Settings struct {
	// ClaspBin is the clasp executable to invoke (name or absolute path).
	ClaspBin string `yaml:"clasp_bin,omitempty"`
	// VaultDir is the directory holding per-account credential files.
	VaultDir string `yaml:"vault_dir,omitempty"`
	// CredentialsPath is the active credential slot clasp reads.
	CredentialsPath string `yaml:"credentials_path,omitempty"`
}

// BaseDir returns the claspx directory, honoring the CLASPX_HOME override.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".claspx"), nil
}

// Load reads config.yaml from the base directory and applies defaults.
// A missing config file is not an error.
func Load() (Settings, error) {
	base, err := BaseDir()
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		ClaspBin: defaultClaspBin,
		VaultDir: filepath.Join(base, "accounts"),
	}
	if os.Getenv(HomeEnv) != "" {
		s.CredentialsPath = filepath.Join(base, ".clasprc.json")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return Settings{}, fmt.Errorf("failed to determine home directory: %w", err)
		}
		s.CredentialsPath = filepath.Join(home, ".clasprc.json")
	}

	path := filepath.Join(base, configFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var override Settings
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Settings{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if v := strings.TrimSpace(override.ClaspBin); v != "" {
		s.ClaspBin = v
	}
	if v := strings.TrimSpace(override.VaultDir); v != "" {
		s.VaultDir = v
	}
	if v := strings.TrimSpace(override.CredentialsPath); v != "" {
		s.CredentialsPath = v
	}
	return s, nil
}
