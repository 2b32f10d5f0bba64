// Package interaction centralizes user prompts and TTY detection so the
// command layer stays focused on orchestration.
package interaction

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// CreateNew is returned by ChooseAccount when the operator picks the
// "create a new account" entry instead of an existing one.
const CreateNew = "\x00create-new"

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PromptYesNo prints a confirmation prompt on stderr and returns true for yes.
func PromptYesNo(message string) (bool, error) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", message)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	trimmed := strings.TrimSpace(strings.ToLower(line))
	return trimmed == "y" || trimmed == "yes", nil
}

// ChooseAccount presents a keyboard selection over the known accounts plus
// a "create new" entry. It returns the chosen name, or CreateNew.
func ChooseAccount(title string, names []string) (string, error) {
	options := make([]huh.Option[string], 0, len(names)+1)
	for _, name := range names {
		options = append(options, huh.NewOption(name, name))
	}
	options = append(options, huh.NewOption("+ Create a new account", CreateNew))

	var selected string
	err := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		return "", err
	}
	return selected, nil
}

// PromptNewName asks for a new account name. Validation failures re-prompt
// in place until the input passes or the operator aborts.
func PromptNewName(validate func(string) error) (string, error) {
	var name string
	err := huh.NewInput().
		Title("New account name").
		Description("Letters, digits, '-' and '_' only").
		Validate(validate).
		Value(&name).
		Run()
	if err != nil {
		return "", err
	}
	return name, nil
}
