// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	// params are used for new enrollments. Stored in the struct so they can
	// be tuned per deployment target (e.g. Argon2id on desktops).
	params KDFParams
	// derive is DeriveKeys in production; package tests swap in the unchecked
	// variant to keep the KDF cheap.
	derive func(params KDFParams, password string, salt []byte) (*KEK, []byte, error)
}

// NewKeyChainService constructs a [KeyChainService] that enrolls new users
// with params. Returns [ErrValidation] if params are below the minimum cost.
func NewKeyChainService(params KDFParams) (KeyChainService, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &keyChainService{params: params, derive: DeriveKeys}, nil
}

// Params implements [KeyChainService].
func (k *keyChainService) Params() KDFParams {
	return k.params
}

// GenerateSalt implements [KeyChainService].
func (k *keyChainService) GenerateSalt() ([]byte, error) {
	return GenerateSalt()
}

// DeriveKeys implements [KeyChainService].
func (k *keyChainService) DeriveKeys(params KDFParams, password string, salt []byte) (*KEK, []byte, error) {
	return k.derive(params, password, salt)
}

// EncryptDocument implements [KeyChainService].
func (k *keyChainService) EncryptDocument(content []byte, kek *KEK, aad AADContext) (EncryptedDocument, error) {
	return EncryptDocument(content, kek, aad)
}

// DecryptDocument implements [KeyChainService].
func (k *keyChainService) DecryptDocument(doc EncryptedDocument, kek *KEK, aad AADContext) ([]byte, error) {
	return DecryptDocument(doc, kek, aad)
}

// RewrapDocument implements [KeyChainService].
func (k *keyChainService) RewrapDocument(doc EncryptedDocument, oldKEK, newKEK *KEK) (EncryptedDocument, error) {
	return RewrapDocument(doc, oldKEK, newKEK)
}

// GenerateRecoveryKey implements [KeyChainService].
func (k *keyChainService) GenerateRecoveryKey() (string, error) {
	return GenerateRecoveryKey()
}

// SealRecoveryArtifact implements [KeyChainService].
func (k *keyChainService) SealRecoveryArtifact(recoveryKey string, payload []byte) ([]byte, []byte, error) {
	return SealRecoveryArtifact(recoveryKey, payload)
}

// OpenRecoveryArtifact implements [KeyChainService].
func (k *keyChainService) OpenRecoveryArtifact(recoveryKey string, ciphertext, iv []byte) ([]byte, error) {
	return OpenRecoveryArtifact(recoveryKey, ciphertext, iv)
}
