// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Encrypt seals plaintext under key with AES-256-GCM and a fresh random
// 96-bit IV. aad is mandatory: it binds the ciphertext to its context and an
// empty value is rejected with [ErrValidation]. The 128-bit tag is appended
// to the returned ciphertext.
func Encrypt(plaintext []byte, key Key, aad []byte) (ciphertext, iv []byte, err error) {
	if key == nil {
		return nil, nil, fmt.Errorf("%w: nil key", ErrValidation)
	}
	if len(aad) == 0 {
		return nil, nil, fmt.Errorf("%w: additional authenticated data is required", ErrValidation)
	}

	iv, err = GenerateIV()
	if err != nil {
		return nil, nil, err
	}

	err = key.withRaw(func(raw []byte) error {
		gcm, err := newGCM(raw)
		if err != nil {
			return err
		}
		ciphertext = gcm.Seal(nil, iv, plaintext, aad)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return ciphertext, iv, nil
}

// Decrypt opens ciphertext produced by [Encrypt]. Any mismatch in key, IV,
// ciphertext or aad yields [ErrAuthentication] and nothing else; a malformed
// IV or a ciphertext shorter than the tag is reported the same way.
func Decrypt(ciphertext, iv []byte, key Key, aad []byte) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil key", ErrValidation)
	}
	if len(aad) == 0 {
		return nil, fmt.Errorf("%w: additional authenticated data is required", ErrValidation)
	}
	if len(iv) != IVSize || len(ciphertext) < TagSize {
		return nil, ErrAuthentication
	}

	var plaintext []byte
	err := key.withRaw(func(raw []byte) error {
		gcm, err := newGCM(raw)
		if err != nil {
			return err
		}
		plaintext, err = gcm.Open(nil, iv, ciphertext, aad)
		if err != nil {
			return ErrAuthentication
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes, got %d", ErrValidation, KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}
