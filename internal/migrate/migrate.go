// Package migrate converts the legacy single-value deployment file into
// the multi-key project config.
package migrate

import (
	"fmt"
	"os"
	"strings"

	"github.com/claspx/cli/internal/envfile"
	"github.com/claspx/cli/internal/fileio"
)

// Engine performs the one-shot legacy migration. Its precondition (new
// config absent) makes it naturally idempotent: after the first successful
// run Needed reports false forever.
type Engine struct {
	// LegacyPath is the old single-line deployment-id file.
	LegacyPath string
	// Config is the new multi-key project config store.
	Config *envfile.Store
}

// Needed reports whether the legacy file exists and the new config does not.
func (e *Engine) Needed() bool {
	return fileio.FileExists(e.LegacyPath) && !e.Config.Exists()
}

// Run reads the legacy deployment id, resolves an account via the supplied
// callback, writes both into the new config and deletes the legacy file.
// There is no path back.
func (e *Engine) Run(resolveAccount func() (string, error)) error {
	data, err := os.ReadFile(e.LegacyPath)
	if err != nil {
		return fmt.Errorf("failed to read legacy deployment file %s: %w", e.LegacyPath, err)
	}
	deploymentID := strings.TrimSpace(string(data))
	if deploymentID == "" {
		return fmt.Errorf("legacy deployment file %s is empty", e.LegacyPath)
	}

	name, err := resolveAccount()
	if err != nil {
		return err
	}

	if err := e.Config.Write(envfile.KeyDeploymentID, deploymentID); err != nil {
		return err
	}
	if err := e.Config.Write(envfile.KeyAccount, name); err != nil {
		return err
	}
	if err := os.Remove(e.LegacyPath); err != nil {
		return fmt.Errorf("failed to remove legacy deployment file %s: %w", e.LegacyPath, err)
	}
	return nil
}
