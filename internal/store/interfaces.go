package store

import (
	"context"

	"github.com/MKhiriev/go-zk-vault/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// DocumentRepository persists encrypted documents. It never sees plaintext
// or unwrapped keys.
type DocumentRepository interface {
	// CreateDocument inserts a new document. Returns [ErrDocumentExists] if
	// (UserID, DocID) is taken.
	CreateDocument(ctx context.Context, doc models.DocumentRecord) error
	// GetDocument returns the stored document or [ErrDocumentNotFound].
	GetDocument(ctx context.Context, userID, docID string) (models.DocumentRecord, error)
	// GetAllDocuments returns every document of the user, ordered by DocID.
	GetAllDocuments(ctx context.Context, userID string) ([]models.DocumentRecord, error)
	// ListDocuments returns metadata only, ordered by DocID.
	ListDocuments(ctx context.Context, userID string) ([]models.DocumentInfo, error)
	// UpdateDocument replaces the document if the stored version is exactly
	// doc.Version-1; otherwise it returns [ErrVersionConflict], or
	// [ErrDocumentNotFound] when there is nothing to update.
	UpdateDocument(ctx context.Context, doc models.DocumentRecord) error
	// DeleteDocument removes the document or returns [ErrDocumentNotFound].
	DeleteDocument(ctx context.Context, userID, docID string) error
}

// EnrollmentRepository persists per-user key setup.
type EnrollmentRepository interface {
	// CreateEnrollment stores a new enrollment or returns [ErrEnrollmentExists].
	CreateEnrollment(ctx context.Context, enrollment models.Enrollment) error
	// GetEnrollment returns the user's enrollment or [ErrEnrollmentNotFound].
	GetEnrollment(ctx context.Context, userID string) (models.Enrollment, error)
	// RotateKeys replaces the enrollment and the wrapped keys of docs in one
	// transaction. docs must be exactly the user's stored documents, each at
	// its stored Version; otherwise nothing is written and
	// [ErrVersionConflict] is returned.
	RotateKeys(ctx context.Context, enrollment models.Enrollment, docs []models.DocumentRecord) error
	// UpdateRecoveryArtifact replaces the sealed recovery artifact or
	// returns [ErrEnrollmentNotFound].
	UpdateRecoveryArtifact(ctx context.Context, userID string, artifact, iv []byte) error
}

// ErrorClassificator tells driver errors apart for retry and conflict
// handling.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
	IsUniqueViolation(err error) bool
}
