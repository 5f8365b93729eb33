// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run executes the sub-command in args and returns when it is done.
	Run(ctx context.Context, args []string) error
}

// SecretPrompt reads a secret without echoing it.
type SecretPrompt interface {
	// ReadSecret returns the value of the env variable if it is set,
	// otherwise prompts on the terminal.
	ReadSecret(prompt, env string) (string, error)
}
