package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/term"

	"github.com/sells-group/leadscout/internal/messenger"
)

// codePrompt asks for the login code on in.
func codePrompt(in io.Reader, out io.Writer) messenger.CodeFunc {
	r := bufio.NewReader(in)
	return func(_ context.Context, phone string) (string, error) {
		fmt.Fprintf(out, "Enter the code sent to %s: ", phone)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return "", eris.Wrap(err, "read login code")
		}
		return strings.TrimSpace(line), nil
	}
}

// passwordPrompt returns the configured 2FA password, or asks for it
// without echo when stdin is a terminal.
func passwordPrompt(configured string, out io.Writer) messenger.PasswordFunc {
	return func(context.Context) (string, error) {
		if configured != "" {
			return configured, nil
		}
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", eris.New("two-factor password required: set telegram.password or run from a terminal")
		}
		fmt.Fprint(out, "Two-factor password: ")
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", eris.Wrap(err, "read password")
		}
		return string(pw), nil
	}
}
