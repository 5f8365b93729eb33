// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session holds the per-session key lifecycle.
//
// A KeyManager owns at most one KEK for the lifetime of an unlocked session.
// It is created per session (never a process-wide singleton) and passed
// explicitly to the services that need the key. The KEK never leaves process
// memory: it is stored as a *crypto.KEK handle and nothing here can export
// its bytes.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
)

// ErrNoKEK is returned by GetKEK when the session is locked.
var ErrNoKEK = fmt.Errorf("%w: no key-encrypting key in session", crypto.ErrPrecondition)

// State describes whether the session currently holds a key.
type State int

const (
	// StateEmpty means no KEK is held: fresh, cleared or logged out.
	StateEmpty State = iota
	// StateActive means a KEK is held and document operations may proceed.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// KeyManager is safe for concurrent use.
type KeyManager struct {
	mu       sync.Mutex
	kek      *crypto.KEK
	lastUsed time.Time

	now    func() time.Time
	logger *logger.Logger
}

// NewKeyManager returns an empty KeyManager.
func NewKeyManager(log *logger.Logger) *KeyManager {
	if log == nil {
		log = logger.Nop()
	}
	return &KeyManager{
		now:    time.Now,
		logger: log,
	}
}

// SetKEK stores kek as the session key, destroying any previously held key.
// The manager takes ownership of kek.
func (m *KeyManager) SetKEK(kek *crypto.KEK) error {
	if kek == nil || !kek.Alive() {
		return fmt.Errorf("%w: key-encrypting key is not usable", crypto.ErrValidation)
	}

	m.mu.Lock()
	prev := m.kek
	m.kek = kek
	m.lastUsed = m.now()
	m.mu.Unlock()

	if prev != nil && prev != kek {
		prev.Destroy()
	}
	m.logger.Debug().Str("func", "KeyManager.SetKEK").Bool("replaced", prev != nil).Msg("session key set")
	return nil
}

// GetKEK returns the session key handle. It fails with ErrNoKEK when the
// session is locked. Every successful call counts as activity for idle
// tracking.
func (m *KeyManager) GetKEK() (*crypto.KEK, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.kek == nil {
		return nil, ErrNoKEK
	}
	m.lastUsed = m.now()
	return m.kek, nil
}

// HasKEK reports whether a key is held.
func (m *KeyManager) HasKEK() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kek != nil
}

// State returns the current lifecycle state.
func (m *KeyManager) State() State {
	if m.HasKEK() {
		return StateActive
	}
	return StateEmpty
}

// LastUsed returns the time of the last SetKEK or successful GetKEK. It is
// zero when the session never held a key.
func (m *KeyManager) LastUsed() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUsed
}

// ClearKEK destroys the held key, if any. Handles previously returned by
// GetKEK become unusable.
func (m *KeyManager) ClearKEK() {
	m.mu.Lock()
	kek := m.kek
	m.kek = nil
	m.mu.Unlock()

	if kek != nil {
		kek.Destroy()
		m.logger.Debug().Str("func", "KeyManager.ClearKEK").Msg("session key cleared")
	}
}

// EndSession clears the key when the session ends (window close, process
// exit).
func (m *KeyManager) EndSession(ctx context.Context) error {
	m.ClearKEK()
	logger.FromContext(ctx).Info().Str("func", "KeyManager.EndSession").Msg("session ended")
	return nil
}

// FullLogout clears the key on explicit sign-out. It also resets idle
// tracking so a later unlock starts from a clean state.
func (m *KeyManager) FullLogout(ctx context.Context) error {
	m.ClearKEK()

	m.mu.Lock()
	m.lastUsed = time.Time{}
	m.mu.Unlock()

	logger.FromContext(ctx).Info().Str("func", "KeyManager.FullLogout").Msg("logged out")
	return nil
}

// ClearIfIdle clears the key if it has not been used for at least timeout.
// It reports whether a key was cleared. A non-positive timeout never clears.
func (m *KeyManager) ClearIfIdle(timeout time.Duration) bool {
	if timeout <= 0 {
		return false
	}

	m.mu.Lock()
	if m.kek == nil || m.now().Sub(m.lastUsed) < timeout {
		m.mu.Unlock()
		return false
	}
	kek := m.kek
	m.kek = nil
	m.mu.Unlock()

	kek.Destroy()
	m.logger.Info().Str("func", "KeyManager.ClearIfIdle").Dur("timeout", timeout).Msg("session locked after inactivity")
	return true
}
