// Package vault persists one opaque credential file per named account and
// swaps the chosen account's credentials into the file clasp reads.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claspx/cli/internal/fileio"
)

// ErrNotFound indicates no stored credentials exist for a named account.
var ErrNotFound = errors.New("account not found")

// fileExt is appended to the account name to form the vault file name.
const fileExt = ".json"

// Vault is a directory of per-account credential blobs plus the active
// credential slot path that the external clasp tool reads.
type Vault struct {
	dir      string
	slotPath string
}

// New ensures the vault directory exists with owner-only permissions.
func New(dir, slotPath string) (*Vault, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory %s: %w", dir, err)
	}
	return &Vault{dir: dir, slotPath: slotPath}, nil
}

// SlotPath returns the active credential slot location.
func (v *Vault) SlotPath() string {
	return v.slotPath
}

func (v *Vault) path(name string) string {
	return filepath.Join(v.dir, name+fileExt)
}

// Store saves an opaque credential blob under the account name.
// The blob is never parsed, only copied.
func (v *Vault) Store(name string, blob []byte) error {
	if err := fileio.WriteFileAtomic(v.path(name), blob, 0o600); err != nil {
		return fmt.Errorf("failed to store credentials for %q: %w", name, err)
	}
	return nil
}

// Fetch returns the stored blob for the account, or ErrNotFound.
func (v *Vault) Fetch(name string) ([]byte, error) {
	data, err := os.ReadFile(v.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("account %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read credentials for %q: %w", name, err)
	}
	return data, nil
}

// Has reports whether credentials are stored for the account.
func (v *Vault) Has(name string) bool {
	return fileio.FileExists(v.path(name))
}

// List returns the sorted names of all stored accounts.
func (v *Vault) List() ([]string, error) {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault directory %s: %w", v.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the account's credential file. Deleting an unknown
// account returns ErrNotFound.
func (v *Vault) Delete(name string) error {
	if err := os.Remove(v.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("account %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("failed to delete credentials for %q: %w", name, err)
	}
	return nil
}

// Activate copies the account's blob into the active credential slot, so
// the next clasp invocation runs as this account. Activating the same
// account twice is a no-op in effect.
//
// The slot is a single per-user path shared with every other claspx and
// clasp process; concurrent activations race and the last rename wins.
// That matches how clasp itself treats the file, so no lock is taken.
func (v *Vault) Activate(name string) error {
	blob, err := v.Fetch(name)
	if err != nil {
		return err
	}
	if err := fileio.WriteFileAtomic(v.slotPath, blob, 0o600); err != nil {
		return fmt.Errorf("failed to activate account %q: %w", name, err)
	}
	return nil
}
