// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the human-readable messages printed by the zkvault
// command line when an operation fails.
//
// Messages never carry key material, passwords or document content.
package app

const (
	// MsgInvalidDataProvided is shown when an id, version or imported
	// document fails validation.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgWrongPassword is shown when the master password does not match the
	// stored auth verifier.
	MsgWrongPassword = "wrong password"

	// MsgWrongRecoveryKey is shown when a recovery key cannot open the
	// recovery artifact.
	MsgWrongRecoveryKey = "recovery key does not match"

	// MsgNotEnrolled is shown when the user has no key setup yet.
	MsgNotEnrolled = "user is not enrolled; run zkvault enroll"

	// MsgAlreadyEnrolled is shown on a second enroll for the same user.
	MsgAlreadyEnrolled = "user is already enrolled"

	// MsgSessionLocked is shown when an operation needs the key after the
	// session was locked or timed out.
	MsgSessionLocked = "session is locked"

	// MsgDocumentNotFound is shown when the document id is unknown.
	MsgDocumentNotFound = "document not found"

	// MsgVersionConflict is shown when the stored document changed while it
	// was being saved.
	MsgVersionConflict = "document was changed concurrently; retry"

	// MsgAuthenticationFailed is shown when a document or key does not
	// authenticate: it was modified, or it belongs to another user, id or
	// version.
	MsgAuthenticationFailed = "decryption failed: data was modified or does not belong here"
)
