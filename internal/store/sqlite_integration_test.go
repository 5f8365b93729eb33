package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-zk-vault/internal/config"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/MKhiriev/go-zk-vault/migrations"
	"github.com/MKhiriev/go-zk-vault/models"
)

func newSQLiteStorages(t *testing.T) *Storages {
	t.Helper()
	cfg := config.Storage{DB: config.DBConfig{DSN: filepath.Join(t.TempDir(), "vault.db")}}

	s, err := NewStorages(testContext(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_DocumentLifecycle(t *testing.T) {
	s := newSQLiteStorages(t)
	ctx := testContext()
	require.Equal(t, migrations.DialectSQLite, s.db.Dialect())
	require.NoError(t, s.EnrollmentRepository.CreateEnrollment(ctx, testEnrollment()))

	docs := s.DocumentRepository

	require.NoError(t, docs.CreateDocument(ctx, testRecord("doc456", 1)))
	assert.ErrorIs(t, docs.CreateDocument(ctx, testRecord("doc456", 1)), ErrDocumentExists)

	got, err := docs.GetDocument(ctx, "user123", "doc456")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, []byte("ciphertext-with-tag"), got.Ciphertext)
	assert.False(t, got.CreatedAt.IsZero())

	// skipping a version is a conflict
	assert.ErrorIs(t, docs.UpdateDocument(ctx, testRecord("doc456", 3)), ErrVersionConflict)
	require.NoError(t, docs.UpdateDocument(ctx, testRecord("doc456", 2)))
	// replaying the same write is a conflict too
	assert.ErrorIs(t, docs.UpdateDocument(ctx, testRecord("doc456", 2)), ErrVersionConflict)
	assert.ErrorIs(t, docs.UpdateDocument(ctx, testRecord("missing", 2)), ErrDocumentNotFound)

	require.NoError(t, docs.CreateDocument(ctx, testRecord("another", 1)))
	infos, err := docs.ListDocuments(ctx, "user123")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "another", infos[0].DocID)
	assert.Equal(t, "doc456", infos[1].DocID)
	assert.Equal(t, int64(2), infos[1].Version)
	assert.Equal(t, int64(len("ciphertext-with-tag")), infos[1].CiphertextSize)

	require.NoError(t, docs.DeleteDocument(ctx, "user123", "doc456"))
	assert.ErrorIs(t, docs.DeleteDocument(ctx, "user123", "doc456"), ErrDocumentNotFound)
	_, err = docs.GetDocument(ctx, "user123", "doc456")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestSQLite_EnrollmentAndRotation(t *testing.T) {
	s := newSQLiteStorages(t)
	ctx := testContext()

	_, err := s.EnrollmentRepository.GetEnrollment(ctx, "user123")
	assert.ErrorIs(t, err, ErrEnrollmentNotFound)

	e := testEnrollment()
	require.NoError(t, s.EnrollmentRepository.CreateEnrollment(ctx, e))
	assert.ErrorIs(t, s.EnrollmentRepository.CreateEnrollment(ctx, e), ErrEnrollmentExists)

	require.NoError(t, s.DocumentRepository.CreateDocument(ctx, testRecord("a", 1)))
	require.NoError(t, s.DocumentRepository.CreateDocument(ctx, testRecord("b", 1)))

	rotated := e
	rotated.Salt = []byte("fedcba9876543210")
	rotated.VerifierHash = []byte("new-hash")

	a := testRecord("a", 1)
	a.WrappedDEK = []byte("rewrapped-a")
	b := testRecord("b", 1)
	b.WrappedDEK = []byte("rewrapped-b")

	require.NoError(t, s.EnrollmentRepository.RotateKeys(ctx, rotated, []models.DocumentRecord{a, b}))

	stored, err := s.EnrollmentRepository.GetEnrollment(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, rotated.Salt, stored.Salt)
	assert.Equal(t, uint32(600000), stored.KDFIterations)

	gotA, err := s.DocumentRepository.GetDocument(ctx, "user123", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("rewrapped-a"), gotA.WrappedDEK)
	assert.Equal(t, a.Ciphertext, gotA.Ciphertext)

	// a stale version aborts the whole rotation and leaves everything as-is
	stale := testRecord("b", 9)
	stale.WrappedDEK = []byte("never")
	again := rotated
	again.Salt = []byte("XXXXXXXXXXXXXXXX")
	err = s.EnrollmentRepository.RotateKeys(ctx, again, []models.DocumentRecord{a, stale})
	assert.ErrorIs(t, err, ErrVersionConflict)

	stored, err = s.EnrollmentRepository.GetEnrollment(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, rotated.Salt, stored.Salt)

	// a document written after the list was read would keep the old wrap
	require.NoError(t, s.DocumentRepository.CreateDocument(ctx, testRecord("c", 1)))
	err = s.EnrollmentRepository.RotateKeys(ctx, again, []models.DocumentRecord{a, b})
	assert.ErrorIs(t, err, ErrVersionConflict)

	stored, err = s.EnrollmentRepository.GetEnrollment(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, rotated.Salt, stored.Salt)
	gotA, err = s.DocumentRepository.GetDocument(ctx, "user123", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("rewrapped-a"), gotA.WrappedDEK)
}

func TestSQLite_UpdateRecoveryArtifact(t *testing.T) {
	s := newSQLiteStorages(t)
	ctx := testContext()

	assert.ErrorIs(t, s.EnrollmentRepository.UpdateRecoveryArtifact(ctx, "user123", []byte("x"), []byte("y")), ErrEnrollmentNotFound)

	e := testEnrollment()
	require.NoError(t, s.EnrollmentRepository.CreateEnrollment(ctx, e))
	require.NoError(t, s.DocumentRepository.CreateDocument(ctx, testRecord("a", 1)))

	require.NoError(t, s.EnrollmentRepository.UpdateRecoveryArtifact(ctx, "user123", []byte("new-artifact"), []byte("new-iv")))

	stored, err := s.EnrollmentRepository.GetEnrollment(ctx, "user123")
	require.NoError(t, err)
	assert.Equal(t, []byte("new-artifact"), stored.RecoveryArtifact)
	assert.Equal(t, []byte("new-iv"), stored.RecoveryIV)
	assert.Equal(t, e.Salt, stored.Salt)
	assert.Equal(t, e.VerifierHash, stored.VerifierHash)
}

func TestNewStorages_UnsupportedDSN(t *testing.T) {
	_, err := NewStorages(testContext(), config.Storage{DB: config.DBConfig{DSN: "mysql://localhost/db"}}, logger.Nop())
	assert.ErrorIs(t, err, ErrUnsupportedDSN)

	_, err = NewStorages(testContext(), config.Storage{}, logger.Nop())
	assert.ErrorIs(t, err, ErrUnsupportedDSN)
}

func TestStorages_CloseNil(t *testing.T) {
	var s *Storages
	assert.NoError(t, s.Close())
}
