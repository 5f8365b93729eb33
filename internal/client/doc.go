// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the zkvault command-line application.
//
// It parses sub-commands, reads the master password from the terminal,
// and drives the auth and document services. The interactive shell keeps
// the session unlocked between commands and locks it again after the
// configured idle timeout.
package client
