// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// Algorithm names a password-based KDF.
type Algorithm string

const (
	// AlgorithmPBKDF2SHA256 is PBKDF2 with HMAC-SHA-256. Default.
	AlgorithmPBKDF2SHA256 Algorithm = "pbkdf2-sha256"
	// AlgorithmArgon2id is Argon2id (RFC 9106).
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Minimum accepted costs. Parameters are stored next to the salt, so they
// may be raised later without breaking old data; they are validated on every
// derivation so that tampered storage cannot downgrade the cost.
const (
	MinPBKDF2Iterations = 600_000
	MinArgon2Time       = 1
	MinArgon2MemoryKiB  = 19 * 1024
)

// KDFParams selects the password KDF and its cost.
type KDFParams struct {
	Algorithm Algorithm `json:"algorithm"`
	// Iterations is the PBKDF2 iteration count or the Argon2id time cost.
	Iterations uint32 `json:"iterations"`
	// MemoryKiB and Threads are used by Argon2id only.
	MemoryKiB uint32 `json:"memory_kib,omitempty"`
	Threads   uint8  `json:"threads,omitempty"`
}

// DefaultKDFParams returns PBKDF2-HMAC-SHA-256 with 600,000 iterations.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Algorithm:  AlgorithmPBKDF2SHA256,
		Iterations: MinPBKDF2Iterations,
	}
}

// DefaultArgon2idParams returns the OWASP-recommended Argon2id parameters:
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
func DefaultArgon2idParams() KDFParams {
	return KDFParams{
		Algorithm:  AlgorithmArgon2id,
		Iterations: 1,
		MemoryKiB:  64 * 1024,
		Threads:    4,
	}
}

// Validate checks that p names a known algorithm with at least the minimum cost.
func (p KDFParams) Validate() error {
	switch p.Algorithm {
	case AlgorithmPBKDF2SHA256:
		if p.Iterations < MinPBKDF2Iterations {
			return fmt.Errorf("%w: pbkdf2 iterations %d below minimum %d", ErrValidation, p.Iterations, MinPBKDF2Iterations)
		}
	case AlgorithmArgon2id:
		if p.Iterations < MinArgon2Time {
			return fmt.Errorf("%w: argon2id time cost %d below minimum %d", ErrValidation, p.Iterations, MinArgon2Time)
		}
		if p.MemoryKiB < MinArgon2MemoryKiB {
			return fmt.Errorf("%w: argon2id memory %d KiB below minimum %d KiB", ErrValidation, p.MemoryKiB, MinArgon2MemoryKiB)
		}
		if p.Threads == 0 {
			return fmt.Errorf("%w: argon2id needs at least one thread", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown kdf algorithm %q", ErrValidation, p.Algorithm)
	}
	return nil
}

// DeriveKEK derives the session KEK from password and salt with
// [DefaultKDFParams]. Same inputs always give the same key.
func DeriveKEK(password string, salt []byte) (*KEK, error) {
	kek, verifier, err := DeriveKeys(DefaultKDFParams(), password, salt)
	if err != nil {
		return nil, err
	}
	memguard.WipeBytes(verifier)
	return kek, nil
}

// DeriveAuthVerifier derives the 32-byte login verifier from password and
// salt with [DefaultKDFParams]. The verifier can be disclosed to a server;
// it does not reveal the KEK, but being a function of the password it should
// still be handled as sensitive.
func DeriveAuthVerifier(password string, salt []byte) ([]byte, error) {
	kek, verifier, err := DeriveKeys(DefaultKDFParams(), password, salt)
	if err != nil {
		return nil, err
	}
	kek.Destroy()
	return verifier, nil
}

// DeriveKeys runs the password KDF once and expands the result into the KEK
// and the auth verifier with HKDF-SHA-256 under distinct labels.
func DeriveKeys(params KDFParams, password string, salt []byte) (*KEK, []byte, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	return deriveKeys(params, password, salt)
}

// deriveKeys is DeriveKeys without the minimum-cost check.
func deriveKeys(params KDFParams, password string, salt []byte) (*KEK, []byte, error) {
	if password == "" {
		return nil, nil, fmt.Errorf("%w: empty password", ErrValidation)
	}
	if len(salt) != SaltSize {
		return nil, nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrValidation, SaltSize, len(salt))
	}

	master, err := passwordHash(params, []byte(password), salt)
	if err != nil {
		return nil, nil, err
	}
	defer memguard.WipeBytes(master)

	kekRaw, err := expand(master, kekInfo)
	if err != nil {
		return nil, nil, err
	}
	verifier, err := expand(master, authVerifierInfo)
	if err != nil {
		memguard.WipeBytes(kekRaw)
		return nil, nil, err
	}

	return newKEK(kekRaw), verifier, nil
}

func passwordHash(params KDFParams, password, salt []byte) ([]byte, error) {
	defer memguard.WipeBytes(password)

	switch params.Algorithm {
	case AlgorithmPBKDF2SHA256:
		return pbkdf2.Key(password, salt, int(params.Iterations), KeySize, sha256.New), nil
	case AlgorithmArgon2id:
		return argon2.IDKey(password, salt, params.Iterations, params.MemoryKiB, params.Threads, KeySize), nil
	default:
		return nil, fmt.Errorf("%w: unknown kdf algorithm %q", ErrValidation, params.Algorithm)
	}
}

// expand derives a KeySize output from a pseudorandom key with HKDF-Expand.
func expand(prk []byte, info string) ([]byte, error) {
	out := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, []byte(info)), out); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return out, nil
}
