package client

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Environment variables read in place of an interactive prompt, for
// scripts and tests.
const (
	EnvUser        = "ZKVAULT_USER"
	EnvPassword    = "ZKVAULT_PASSWORD"
	EnvNewPassword = "ZKVAULT_NEW_PASSWORD"
	EnvRecoveryKey = "ZKVAULT_RECOVERY_KEY"
)

type terminalPrompt struct {
	in  *os.File
	out io.Writer
}

func newTerminalPrompt() SecretPrompt {
	return &terminalPrompt{in: os.Stdin, out: os.Stderr}
}

func (p *terminalPrompt) ReadSecret(prompt, env string) (string, error) {
	if v, ok := os.LookupEnv(env); ok && env != "" {
		return v, nil
	}

	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: set %s", ErrNoTerminal, env)
	}

	fmt.Fprint(p.out, prompt)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("error reading from terminal: %w", err)
	}
	return string(secret), nil
}
