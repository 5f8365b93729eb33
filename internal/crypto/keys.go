// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// Key is symmetric key material accepted by [Encrypt] and [Decrypt].
// It is implemented only by [KEK] and [DEK]; raw bytes are lent to the AEAD
// for the duration of one call and never handed out.
type Key interface {
	withRaw(fn func(raw []byte) error) error
}

// KEK is the password-derived key-encrypting key.
//
// The key bytes live in a memguard enclave (encrypted at rest in memory) and
// are decrypted into an mlock'ed buffer only while an AEAD call runs. There is
// no method that returns the raw key. After [KEK.Destroy] every operation
// fails with [ErrPrecondition].
type KEK struct {
	mu      sync.RWMutex
	enclave *memguard.Enclave
}

// newKEK seals raw into an enclave. memguard wipes raw in the process.
func newKEK(raw []byte) *KEK {
	return &KEK{enclave: memguard.NewEnclave(raw)}
}

func (k *KEK) withRaw(fn func(raw []byte) error) error {
	if k == nil {
		return fmt.Errorf("%w: no key-encrypting key", ErrPrecondition)
	}

	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.enclave == nil {
		return fmt.Errorf("%w: key-encrypting key destroyed", ErrPrecondition)
	}

	buf, err := k.enclave.Open()
	if err != nil {
		return fmt.Errorf("%w: open key enclave", ErrPrecondition)
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

// Alive reports whether the key can still be used.
func (k *KEK) Alive() bool {
	if k == nil {
		return false
	}
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.enclave != nil
}

// Destroy drops the enclave. Operations running concurrently finish first;
// later ones fail with [ErrPrecondition]. Destroy is idempotent.
func (k *KEK) Destroy() {
	if k == nil {
		return
	}
	k.mu.Lock()
	k.enclave = nil
	k.mu.Unlock()
}

// DEK is a per-document data-encrypting key. It exists unwrapped only for the
// duration of an encrypt or decrypt call; call [DEK.Wipe] when done.
type DEK struct {
	raw []byte
}

func (d *DEK) withRaw(fn func(raw []byte) error) error {
	if d == nil || d.raw == nil {
		return fmt.Errorf("%w: data-encrypting key wiped", ErrPrecondition)
	}
	return fn(d.raw)
}

// Wipe zeroes the key bytes. The DEK is unusable afterwards.
func (d *DEK) Wipe() {
	if d == nil || d.raw == nil {
		return
	}
	memguard.WipeBytes(d.raw)
	d.raw = nil
}
