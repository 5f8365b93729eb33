// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"fmt"

	"github.com/awnumar/memguard"
)

// WrapDEK seals the DEK's raw bytes under the KEK with AES-256-GCM and a
// fresh IV. The wrap uses a fixed label as AAD; per-document binding is
// enforced on the content layer by [EncryptDocument].
func WrapDEK(dek *DEK, kek *KEK) (wrapped, iv []byte, err error) {
	if dek == nil {
		return nil, nil, fmt.Errorf("%w: nil data-encrypting key", ErrValidation)
	}
	if kek == nil {
		return nil, nil, fmt.Errorf("%w: no key-encrypting key", ErrPrecondition)
	}

	err = dek.withRaw(func(raw []byte) error {
		wrapped, iv, err = Encrypt(raw, kek, []byte(wrappedDEKAAD))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return wrapped, iv, nil
}

// UnwrapDEK opens a DEK sealed by [WrapDEK]. A KEK other than the one used
// to wrap fails with [ErrAuthentication]. The returned DEK is scoped to one
// document operation; the caller must [DEK.Wipe] it.
func UnwrapDEK(wrapped, iv []byte, kek *KEK) (*DEK, error) {
	if kek == nil {
		return nil, fmt.Errorf("%w: no key-encrypting key", ErrPrecondition)
	}

	raw, err := Decrypt(wrapped, iv, kek, []byte(wrappedDEKAAD))
	if err != nil {
		return nil, err
	}
	if len(raw) != KeySize {
		memguard.WipeBytes(raw)
		return nil, ErrAuthentication
	}
	return &DEK{raw: raw}, nil
}
