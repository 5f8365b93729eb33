package service

import (
	"context"

	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/models"
)

// AuthService manages a user's enrollment and the session key.
//
// The master password is only ever an argument: it is fed to the KDF and
// dropped. What is stored is the salt, the KDF parameters, a bcrypt hash of
// the auth verifier and the sealed recovery artifact.
type AuthService interface {
	// Enroll creates the user's key setup, unlocks the session and returns
	// the recovery key, which is shown once and never stored.
	Enroll(ctx context.Context, credentials models.Credentials) (models.EnrollmentResult, error)
	// Unlock derives the KEK from the password and puts it into the session.
	Unlock(ctx context.Context, credentials models.Credentials) error
	// Lock destroys the session KEK.
	Lock(ctx context.Context) error
	// ChangePassword re-wraps every document key under a KEK derived from
	// newPassword. Document ciphertext is not touched.
	ChangePassword(ctx context.Context, credentials models.Credentials, newPassword string) error
	// VerifyRecoveryKey checks that recoveryKey opens the user's recovery
	// artifact.
	VerifyRecoveryKey(ctx context.Context, userID, recoveryKey string) error
	// RegenerateRecoveryKey replaces the recovery key and returns the new one.
	RegenerateRecoveryKey(ctx context.Context, credentials models.Credentials) (string, error)
}

// DocumentService encrypts documents before they reach storage and decrypts
// them after. Every method that touches content needs an unlocked session.
type DocumentService interface {
	// Save encrypts content as the next version of docID. An empty docID
	// creates a new document with a generated id.
	Save(ctx context.Context, userID, docID string, content []byte) (models.DocumentInfo, error)
	// Load decrypts the stored document.
	Load(ctx context.Context, userID, docID string) (models.Document, error)
	// LoadVersion decrypts the stored document only if it is the expected
	// version; a rolled-back document fails authentication.
	LoadVersion(ctx context.Context, userID, docID string, version int64) (models.Document, error)
	List(ctx context.Context, userID string) ([]models.DocumentInfo, error)
	Delete(ctx context.Context, userID, docID string) error
	// Export returns the document in its JSON wire form, still encrypted.
	Export(ctx context.Context, userID, docID string) ([]byte, error)
	// Import stores a document in JSON wire form after checking that it
	// decrypts under the session KEK.
	Import(ctx context.Context, userID, docID string, data []byte) (models.DocumentInfo, error)
}

// DocumentServiceWrapper defines middleware composition for DocumentService.
type DocumentServiceWrapper interface {
	Wrap(DocumentService) DocumentService
}

// KeyHolder is the session key store the services write to and read from.
// It is satisfied by *session.KeyManager.
type KeyHolder interface {
	SetKEK(kek *crypto.KEK) error
	GetKEK() (*crypto.KEK, error)
	FullLogout(ctx context.Context) error
}

// IDGenerator produces new document ids.
type IDGenerator interface {
	Generate() string
}
