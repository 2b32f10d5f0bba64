// Package account validates account names and provisions new accounts by
// driving the external login flow and committing its output to the vault.
package account

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/claspx/cli/internal/clasp"
	"github.com/claspx/cli/internal/vault"
)

var nameRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateName checks an account name against the allowed pattern:
// letters, digits, hyphen and underscore only.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("account name cannot be empty")
	}
	if !nameRE.MatchString(name) {
		return fmt.Errorf("invalid account name %q: only letters, digits, '-' and '_' are allowed", name)
	}
	return nil
}

// Provisioner creates new accounts. The login flow writes credentials to
// the vault's active slot; Commit copies them into the vault afterwards,
// so a failed login never leaves a partial account behind.
type Provisioner struct {
	Vault  *vault.Vault
	Runner clasp.LoginRunner
}

// Validate checks the proposed name and rejects duplicates.
func (p *Provisioner) Validate(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if p.Vault.Has(name) {
		return fmt.Errorf("account %q already exists", name)
	}
	return nil
}

// Create validates the name, runs the interactive login flow and stores
// the resulting credentials under the name.
func (p *Provisioner) Create(name string) error {
	if err := p.Validate(name); err != nil {
		return err
	}
	if err := p.Runner.Login(); err != nil {
		return err
	}
	return p.Commit(name)
}

// Commit copies the credentials the login flow wrote to the active slot
// into the vault under the given name.
func (p *Provisioner) Commit(name string) error {
	data, err := os.ReadFile(p.Vault.SlotPath())
	if err != nil {
		return fmt.Errorf("login completed but no credentials found at %s: %w", p.Vault.SlotPath(), err)
	}
	return p.Vault.Store(name, data)
}
