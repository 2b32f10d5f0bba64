package account

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claspx/cli/internal/fileio"
	"github.com/claspx/cli/internal/vault"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectedErr string
	}{
		{name: "Simple name", input: "work", expectedErr: ""},
		{name: "Hyphen and underscore", input: "client-abc_2", expectedErr: ""},
		{name: "Digits only", input: "2024", expectedErr: ""},
		{name: "Empty", input: "", expectedErr: "cannot be empty"},
		{name: "Whitespace only", input: "   ", expectedErr: "cannot be empty"},
		{name: "Inner space", input: "my account", expectedErr: "only letters"},
		{name: "Path separator", input: "../escape", expectedErr: "only letters"},
		{name: "Shell metachar", input: "work;rm", expectedErr: "only letters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.expectedErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			}
		})
	}
}

// fakeLogin stands in for the clasp login subprocess: on success it writes
// a canned blob to the slot path, exactly like the real flow does.
type fakeLogin struct {
	slotPath string
	blob     []byte
	err      error
	calls    int
}

func (f *fakeLogin) Login() error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fileio.WriteFileAtomic(f.slotPath, f.blob, 0o600)
}

func newTestVault(t *testing.T) *vault.Vault {
	t.Helper()
	base := t.TempDir()
	v, err := vault.New(filepath.Join(base, "accounts"), filepath.Join(base, ".clasprc.json"))
	require.NoError(t, err)
	return v
}

func TestProvisionerCreate(t *testing.T) {
	v := newTestVault(t)
	login := &fakeLogin{slotPath: v.SlotPath(), blob: []byte(`{"tokens":"xyz"}`)}
	p := &Provisioner{Vault: v, Runner: login}

	require.NoError(t, p.Create("work"))
	assert.Equal(t, 1, login.calls)

	blob, err := v.Fetch("work")
	require.NoError(t, err)
	assert.Equal(t, `{"tokens":"xyz"}`, string(blob))
}

func TestProvisionerRejectsInvalidName(t *testing.T) {
	v := newTestVault(t)
	login := &fakeLogin{slotPath: v.SlotPath(), blob: []byte("x")}
	p := &Provisioner{Vault: v, Runner: login}

	err := p.Create("bad name")
	assert.Error(t, err)
	assert.Equal(t, 0, login.calls, "login must not run for an invalid name")
}

func TestProvisionerRejectsDuplicate(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.Store("work", []byte("existing")))
	login := &fakeLogin{slotPath: v.SlotPath(), blob: []byte("new")}
	p := &Provisioner{Vault: v, Runner: login}

	err := p.Create("work")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, 0, login.calls)

	// The stored blob is untouched.
	blob, err := v.Fetch("work")
	require.NoError(t, err)
	assert.Equal(t, "existing", string(blob))
}

func TestProvisionerLoginFailureLeavesNoAccount(t *testing.T) {
	v := newTestVault(t)
	login := &fakeLogin{slotPath: v.SlotPath(), err: errors.New("browser flow aborted")}
	p := &Provisioner{Vault: v, Runner: login}

	err := p.Create("work")
	assert.Error(t, err)
	assert.False(t, v.Has("work"))
}

func TestProvisionerCommitWithoutSlot(t *testing.T) {
	v := newTestVault(t)
	p := &Provisioner{Vault: v}

	err := p.Commit("work")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no credentials found")
}
