package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/keychain_service_mock.go -package=mock

// KeyChainService bundles the crypto core behind one injectable value.
// It knows nothing about storage, network or sessions; its only job is to
// derive, generate and apply keys.
//
// Flow:
//
//	Salt           = GenerateSalt()                        (enrollment)
//	KEK, Verifier  = DeriveKeys(Params(), password, Salt)  (enrollment and every unlock)
//	Doc            = EncryptDocument(content, KEK, ctx)    (save)
//	content        = DecryptDocument(Doc, KEK, ctx)        (load)
type KeyChainService interface {
	// Params returns the KDF parameters used for new enrollments.
	Params() KDFParams

	// GenerateSalt returns a fresh random 16-byte salt.
	GenerateSalt() ([]byte, error)

	// DeriveKeys derives the KEK and the auth verifier from password and
	// salt. params normally come from the stored enrollment and are checked
	// against the minimum cost.
	DeriveKeys(params KDFParams, password string, salt []byte) (*KEK, []byte, error)

	// EncryptDocument seals content under a fresh DEK bound to aad and wraps
	// the DEK under kek.
	EncryptDocument(content []byte, kek *KEK, aad AADContext) (EncryptedDocument, error)

	// DecryptDocument reverses EncryptDocument. Any mismatch yields
	// ErrAuthentication.
	DecryptDocument(doc EncryptedDocument, kek *KEK, aad AADContext) ([]byte, error)

	// RewrapDocument moves the document's DEK from oldKEK to newKEK.
	RewrapDocument(doc EncryptedDocument, oldKEK, newKEK *KEK) (EncryptedDocument, error)

	// GenerateRecoveryKey returns a new XXXX-...-XXXX recovery key.
	GenerateRecoveryKey() (string, error)

	// SealRecoveryArtifact encrypts payload under the recovery key.
	SealRecoveryArtifact(recoveryKey string, payload []byte) (ciphertext, iv []byte, err error)

	// OpenRecoveryArtifact decrypts an artifact sealed under the recovery key.
	OpenRecoveryArtifact(recoveryKey string, ciphertext, iv []byte) ([]byte, error)
}
