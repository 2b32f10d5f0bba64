// Package clasp is the boundary to the external clasp tool. Everything
// here treats clasp as an opaque subprocess: it performs its own network
// authentication and owns the format of the credential file it writes.
package clasp

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// LoginRunner is the capability the provisioner needs: run the
// interactive login flow to completion. Tests substitute an
// implementation that writes a canned credential blob instead.
type LoginRunner interface {
	Login() error
}

// CLI invokes the real clasp executable.
type CLI struct {
	Bin string
}

// Check verifies the clasp executable can be found before any
// state-mutating step runs.
func (c CLI) Check() error {
	if _, err := exec.LookPath(c.Bin); err != nil {
		return fmt.Errorf("%s not found in PATH (install it with 'npm install -g @google/clasp'): %w", c.Bin, err)
	}
	return nil
}

// Login runs 'clasp login', which blocks until the operator completes the
// browser authentication flow. On success clasp has written fresh
// credentials to its own rc file.
func (c CLI) Login() error {
	if err := c.Check(); err != nil {
		return err
	}
	cmd := c.LoginCommand()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s login failed: %w", c.Bin, err)
	}
	return nil
}

// LoginCommand builds the login invocation with the terminal attached,
// for callers that manage the subprocess themselves (the TUI hands it to
// tea.ExecProcess so the screen is released during the flow).
func (c CLI) LoginCommand() *exec.Cmd {
	cmd := exec.Command(c.Bin, "login")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

// Exec runs clasp with the given arguments, relaying stdio unchanged, and
// returns the subprocess exit code. A non-zero exit is not an error here;
// the caller mirrors the code.
func (c CLI) Exec(args []string) (int, error) {
	if err := c.Check(); err != nil {
		return 1, err
	}

	cmd := exec.Command(c.Bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("failed to run %s: %w", c.Bin, err)
}
