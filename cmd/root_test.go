package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claspx/cli/internal/settings"
	"github.com/claspx/cli/internal/testutils"
)

// executeCommand executes a cobra command and captures its output.
// It also mocks os.Exit to prevent the test from exiting.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (output string, err error) {
	t.Helper()

	// Capture stdout and stderr
	oldStdout := os.Stdout
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stdout = w
	os.Stderr = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	// Mock os.Exit
	oldOsExit := exit
	exit = func(code int) {
		// We don't want to actually exit during tests, so we panic and recover.
		// The executeCommand defer function will catch this panic.
		panic(fmt.Sprintf("os.Exit called with code %d", code))
	}

	defer func() {
		// Restore os.Exit
		exit = oldOsExit

		// Restore stdout and stderr
		w.Close()
		os.Stdout = oldStdout
		os.Stderr = oldStderr
		output = <-outC

		// Recover from panic if os.Exit was called
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "os.Exit called with code") {
				err = fmt.Errorf("%s", s) // Convert panic to error
			} else {
				panic(r) // Not our panic, re-panic
			}
		}
	}()

	cmd.SetArgs(args)
	err = cmd.Execute()

	return output, err
}

// setupWorkspace points CLASPX_HOME at a fresh directory and switches the
// working directory to a fresh project dir.
func setupWorkspace(t *testing.T) (home string, project string) {
	t.Helper()
	home = t.TempDir()
	project = t.TempDir()
	cleanup := testutils.SetEnv(t, map[string]string{settings.HomeEnv: home})
	t.Cleanup(cleanup)
	t.Chdir(project)
	return home, project
}

func seedAccount(t *testing.T, home, name, blob string) {
	t.Helper()
	dir := filepath.Join(home, "accounts")
	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(blob), 0o600))
}

func resetFlags() {
	listAccounts = false
	editAccounts = false
}

func TestVersionCommand(t *testing.T) {
	resetFlags()
	output, err := executeCommand(t, rootCmd, "version")
	assert.NoError(t, err)
	assert.Contains(t, output, "claspx v")
}

func TestListEmptyVault(t *testing.T) {
	resetFlags()
	setupWorkspace(t)

	output, err := executeCommand(t, rootCmd, "--list")
	assert.NoError(t, err)
	assert.Contains(t, output, "No accounts stored")
}

func TestListMarksActiveAccount(t *testing.T) {
	resetFlags()
	home, _ := setupWorkspace(t)
	seedAccount(t, home, "work", "{}")
	seedAccount(t, home, "personal", "{}")
	require.NoError(t, os.WriteFile(".claspx", []byte("account=work\n"), 0o644))

	output, err := executeCommand(t, rootCmd, "--list")
	assert.NoError(t, err)
	assert.Contains(t, output, "* work")
	assert.Contains(t, output, "  personal")
}

func TestEditWithoutTerminal(t *testing.T) {
	resetFlags()
	setupWorkspace(t)

	// Test processes have no TTY on stdin, so the manager must fail fast.
	_, err := executeCommand(t, rootCmd, "--edit")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestDeployWithoutConfigOrTerminal(t *testing.T) {
	resetFlags()
	setupWorkspace(t)

	_, err := executeCommand(t, rootCmd)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no interactive terminal")
}

func TestDeployMissingCredentialsReportsNotFound(t *testing.T) {
	resetFlags()
	setupWorkspace(t)
	require.NoError(t, os.WriteFile(".claspx", []byte("account=ghost\n"), 0o644))

	output, err := executeCommand(t, rootCmd)
	assert.Error(t, err)
	assert.ErrorContains(t, err, "ghost")
	assert.Contains(t, output, `No stored credentials for account "ghost"`)
}

func TestDeployConfirmsActiveAccount(t *testing.T) {
	resetFlags()
	home, _ := setupWorkspace(t)
	seedAccount(t, home, "work", `{"tokens":"abc"}`)
	require.NoError(t, os.WriteFile(".claspx", []byte("account=work\n"), 0o644))

	output, err := executeCommand(t, rootCmd)
	assert.NoError(t, err)
	assert.Contains(t, output, "Active account: work")

	// Activation copied the blob into the slot.
	data, err := os.ReadFile(filepath.Join(home, ".clasprc.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"tokens":"abc"}`, string(data))
}

func TestDeployPassesArgumentsThrough(t *testing.T) {
	resetFlags()
	home, _ := setupWorkspace(t)
	seedAccount(t, home, "work", "{}")
	require.NoError(t, os.WriteFile(".claspx", []byte("account=work\n"), 0o644))
	// Point the external tool at the shell so the test controls exit codes.
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("clasp_bin: sh\n"), 0o644))

	_, err := executeCommand(t, rootCmd, "--", "-c", "exit 0")
	assert.NoError(t, err)
}

func TestDeployMirrorsExitCode(t *testing.T) {
	resetFlags()
	home, _ := setupWorkspace(t)
	seedAccount(t, home, "work", "{}")
	require.NoError(t, os.WriteFile(".claspx", []byte("account=work\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("clasp_bin: sh\n"), 0o644))

	_, err := executeCommand(t, rootCmd, "--", "-c", "exit 3")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "os.Exit called with code 3")
}

func TestDeployPreservesUnknownConfigKeys(t *testing.T) {
	resetFlags()
	home, _ := setupWorkspace(t)
	seedAccount(t, home, "work", "{}")
	require.NoError(t, os.WriteFile(".claspx", []byte("custom=kept\naccount=work\n"), 0o644))

	_, err := executeCommand(t, rootCmd)
	assert.NoError(t, err)

	data, err := os.ReadFile(".claspx")
	require.NoError(t, err)
	assert.Equal(t, "custom=kept\naccount=work\n", string(data))
}
