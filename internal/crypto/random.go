// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// randomBytes reads n bytes from the OS CSPRNG.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}

// GenerateSalt returns a fresh 16-byte KDF salt. The salt is not a secret;
// it is stored next to the user's KDF parameters and changes only when the
// password is reset.
func GenerateSalt() ([]byte, error) {
	return randomBytes(SaltSize)
}

// GenerateIV returns a fresh 12-byte AES-GCM nonce. Every encryption call
// draws its own IV; an IV is never reused under the same key.
func GenerateIV() ([]byte, error) {
	return randomBytes(IVSize)
}

// GenerateDEK returns a fresh random 256-bit data-encryption key. The caller
// owns the key and should call [DEK.Wipe] once the single document operation
// it belongs to is finished.
func GenerateDEK() (*DEK, error) {
	raw, err := randomBytes(KeySize)
	if err != nil {
		return nil, err
	}
	return &DEK{raw: raw}, nil
}
