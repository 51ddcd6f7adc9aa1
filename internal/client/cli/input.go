package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the terminal helpers.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

var errNotTerminal = errors.New("stdin is not a terminal")

// GetSecret prompts on w and reads a value from the terminal without echo.
// It refuses to read from pipes so that secrets never end up in scripts.
func GetSecret(prompt string, w io.Writer) (string, error) {
	fd := stdinFd()
	if !isTerminal(fd) {
		return "", errNotTerminal
	}

	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	b, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
