// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto is the client-side zero-knowledge encryption core.
//
// Everything that can decrypt user data is derived from the user's password
// and never leaves process memory:
//
//	Salt          = GenerateSalt()                          (stored openly)
//	KEK, Verifier = DeriveKeys(params, password, Salt)      (KEK stays in memory)
//	DEK           = GenerateDEK()                           (one per document version)
//	Ciphertext    = Encrypt(content, DEK, "user:doc:version")
//	WrappedDEK    = WrapDEK(DEK, KEK)
//
// Only the [EncryptedDocument] (ciphertext, IV, wrapped DEK, wrap IV, version)
// is persisted. The Verifier may be sent to a server for login comparison;
// it is an independent HKDF expansion of the password hash and does not
// yield the KEK.
//
// The KEK is held in a memguard enclave and has no export method. Go cannot
// stop code in the same process from reading its own memory, so the
// non-extractable property is a best-effort boundary: the raw key exists
// in a locked buffer only for the duration of a single AEAD call.
//
// All failures are reported through three sentinels: [ErrValidation],
// [ErrAuthentication] and [ErrPrecondition].
package crypto
