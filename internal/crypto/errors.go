package crypto

import "errors"

var (
	// ErrValidation is returned for malformed input: an empty password, a salt
	// of the wrong length, a missing AAD, a bad recovery key or a KDF parameter
	// set below the minimum cost. The caller may fix the input and retry.
	ErrValidation = errors.New("crypto: validation failed")

	// ErrAuthentication is returned whenever an AEAD open fails, whatever the
	// cause (wrong key, tampered ciphertext, wrong AAD, corrupted IV).
	// It never carries detail about which input was wrong and must not be
	// retried with the same inputs.
	ErrAuthentication = errors.New("crypto: message authentication failed")

	// ErrPrecondition is returned when an operation needs key material that is
	// not available, e.g. a destroyed KEK or a session with no key set.
	ErrPrecondition = errors.New("crypto: precondition failed")
)
