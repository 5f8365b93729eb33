package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/store"
	"github.com/MKhiriev/go-zk-vault/models"
)

var creds = models.Credentials{UserID: "user123", Password: "Secret123!"}

// ── Enroll ───────────────────────────────────────────────────────────────────

func TestAuthService_Enroll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)
	ctx := testContext()

	kek, verifier := deriveTestKeys(t, creds.Password)

	gomock.InOrder(
		m.keyChain.EXPECT().GenerateSalt().Return(testSalt, nil),
		m.keyChain.EXPECT().Params().Return(cheapParams),
		m.keyChain.EXPECT().DeriveKeys(cheapParams, creds.Password, testSalt).Return(kek, verifier, nil),
		m.keyChain.EXPECT().GenerateRecoveryKey().Return("RECOVERY", nil),
		m.keyChain.EXPECT().SealRecoveryArtifact("RECOVERY", recoveryPayload("user123")).
			Return([]byte("artifact"), []byte("artifact-iv!"), nil),
		m.enrollments.EXPECT().CreateEnrollment(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, e models.Enrollment) error {
				assert.Equal(t, "user123", e.UserID)
				assert.Equal(t, "argon2id", e.KDFAlgorithm)
				assert.Equal(t, cheapParams.MemoryKiB, e.KDFMemoryKiB)
				assert.Equal(t, testSalt, e.Salt)
				assert.Equal(t, []byte("artifact"), e.RecoveryArtifact)
				// only a hash of the verifier is stored
				assert.NotEqual(t, verifier, e.VerifierHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword(e.VerifierHash, encodeVerifier(verifier)))
				return nil
			},
		),
	)

	res, err := svc.Enroll(ctx, creds)
	require.NoError(t, err)

	assert.Equal(t, "RECOVERY", res.RecoveryKey)
	assert.Equal(t, verifier, res.AuthVerifier)
	assert.Equal(t, testSalt, res.Salt)

	got, err := m.keys.GetKEK()
	require.NoError(t, err)
	assert.Same(t, kek, got)
}

func TestAuthService_Enroll_InvalidData(t *testing.T) {
	tests := []struct {
		name  string
		creds models.Credentials
	}{
		{name: "empty user id", creds: models.Credentials{Password: "x"}},
		{name: "colon in user id", creds: models.Credentials{UserID: "a:b", Password: "x"}},
		{name: "empty password", creds: models.Credentials{UserID: "user123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc, m := newTestAuthSvc(t, ctrl)

			_, err := svc.Enroll(testContext(), tt.creds)
			assert.ErrorIs(t, err, ErrInvalidDataProvided)
			assert.False(t, m.keys.HasKEK())
		})
	}
}

func TestAuthService_Enroll_AlreadyEnrolled(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)

	kek, verifier := deriveTestKeys(t, creds.Password)

	m.keyChain.EXPECT().GenerateSalt().Return(testSalt, nil)
	m.keyChain.EXPECT().Params().Return(cheapParams)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, creds.Password, testSalt).Return(kek, verifier, nil)
	m.keyChain.EXPECT().GenerateRecoveryKey().Return("RECOVERY", nil)
	m.keyChain.EXPECT().SealRecoveryArtifact(gomock.Any(), gomock.Any()).Return([]byte("a"), []byte("b"), nil)
	m.enrollments.EXPECT().CreateEnrollment(gomock.Any(), gomock.Any()).Return(store.ErrEnrollmentExists)

	_, err := svc.Enroll(testContext(), creds)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.False(t, kek.Alive(), "derived key must be destroyed on failure")
	assert.False(t, m.keys.HasKEK())
}

func TestAuthService_Enroll_SaltFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)

	m.keyChain.EXPECT().GenerateSalt().Return(nil, errors.New("entropy exhausted"))

	_, err := svc.Enroll(testContext(), creds)
	assert.Error(t, err)
	assert.False(t, m.keys.HasKEK())
}

// ── Unlock / Lock ────────────────────────────────────────────────────────────

func TestAuthService_Unlock_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)

	kek, verifier := deriveTestKeys(t, creds.Password)
	e := testEnrollment(t, verifier)

	m.enrollments.EXPECT().GetEnrollment(gomock.Any(), "user123").Return(e, nil)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, creds.Password, testSalt).Return(kek, verifier, nil)

	require.NoError(t, svc.Unlock(testContext(), creds))

	got, err := m.keys.GetKEK()
	require.NoError(t, err)
	assert.Same(t, kek, got)

	require.NoError(t, svc.Lock(testContext()))
	assert.False(t, m.keys.HasKEK())
	assert.False(t, kek.Alive())
}

func TestAuthService_Unlock_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)

	_, verifier := deriveTestKeys(t, creds.Password)
	wrongKEK, wrongVerifier := deriveTestKeys(t, "wrong")
	e := testEnrollment(t, verifier)

	m.enrollments.EXPECT().GetEnrollment(gomock.Any(), "user123").Return(e, nil)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, "wrong", testSalt).Return(wrongKEK, wrongVerifier, nil)

	err := svc.Unlock(testContext(), models.Credentials{UserID: "user123", Password: "wrong"})
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.False(t, wrongKEK.Alive())
	assert.False(t, m.keys.HasKEK())
}

func TestAuthService_Unlock_NotEnrolled(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)

	m.enrollments.EXPECT().GetEnrollment(gomock.Any(), "user123").Return(models.Enrollment{}, store.ErrEnrollmentNotFound)

	err := svc.Unlock(testContext(), creds)
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

func TestAuthService_Unlock_StoredParamsBelowMinimum(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)

	_, verifier := deriveTestKeys(t, creds.Password)
	e := testEnrollment(t, verifier)
	e.KDFAlgorithm, e.KDFIterations = string(crypto.AlgorithmPBKDF2SHA256), 1000

	m.enrollments.EXPECT().GetEnrollment(gomock.Any(), "user123").Return(e, nil)
	m.keyChain.EXPECT().DeriveKeys(gomock.Any(), creds.Password, testSalt).
		Return(nil, nil, crypto.ErrValidation)

	err := svc.Unlock(testContext(), creds)
	assert.ErrorIs(t, err, crypto.ErrValidation)
	assert.False(t, m.keys.HasKEK())
}

// ── ChangePassword ───────────────────────────────────────────────────────────

func TestAuthService_ChangePassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)
	ctx := testContext()

	oldKEK, oldVerifier := deriveTestKeys(t, creds.Password)
	newKEK, newVerifier := deriveTestKeys(t, "N3w-password")
	e := testEnrollment(t, oldVerifier)
	newSalt := []byte("fedcba9876543210")

	records := []models.DocumentRecord{
		{UserID: "user123", DocID: "a", Version: 1, Ciphertext: []byte("ct-a"), WrappedDEK: []byte("old-a")},
		{UserID: "user123", DocID: "b", Version: 4, Ciphertext: []byte("ct-b"), WrappedDEK: []byte("old-b")},
	}

	m.enrollments.EXPECT().GetEnrollment(ctx, "user123").Return(e, nil)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, creds.Password, testSalt).Return(oldKEK, oldVerifier, nil)
	m.keyChain.EXPECT().GenerateSalt().Return(newSalt, nil)
	m.keyChain.EXPECT().Params().Return(cheapParams)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, "N3w-password", newSalt).Return(newKEK, newVerifier, nil)
	m.documents.EXPECT().GetAllDocuments(ctx, "user123").Return(records, nil)
	m.keyChain.EXPECT().RewrapDocument(gomock.Any(), oldKEK, newKEK).DoAndReturn(
		func(doc crypto.EncryptedDocument, _, _ *crypto.KEK) (crypto.EncryptedDocument, error) {
			doc.WrappedDEK = append([]byte("new-"), doc.Ciphertext...)
			doc.WrappedDEKIV = []byte("new-iv")
			return doc, nil
		},
	).Times(2)
	m.enrollments.EXPECT().RotateKeys(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, got models.Enrollment, docs []models.DocumentRecord) error {
			assert.Equal(t, newSalt, got.Salt)
			assert.NoError(t, bcrypt.CompareHashAndPassword(got.VerifierHash, encodeVerifier(newVerifier)))
			// recovery is independent of the password
			assert.Equal(t, e.RecoveryArtifact, got.RecoveryArtifact)

			require.Len(t, docs, 2)
			assert.Equal(t, []byte("new-ct-a"), docs[0].WrappedDEK)
			assert.Equal(t, []byte("new-ct-b"), docs[1].WrappedDEK)
			// content ciphertext and versions are untouched
			assert.Equal(t, []byte("ct-b"), docs[1].Ciphertext)
			assert.Equal(t, int64(4), docs[1].Version)
			return nil
		},
	)

	require.NoError(t, svc.ChangePassword(ctx, creds, "N3w-password"))

	got, err := m.keys.GetKEK()
	require.NoError(t, err)
	assert.Same(t, newKEK, got)
	assert.False(t, oldKEK.Alive())
}

func TestAuthService_ChangePassword_RotationFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)

	sessionKEK, _ := deriveTestKeys(t, "session")
	require.NoError(t, m.keys.SetKEK(sessionKEK))

	oldKEK, oldVerifier := deriveTestKeys(t, creds.Password)
	newKEK, newVerifier := deriveTestKeys(t, "N3w-password")
	e := testEnrollment(t, oldVerifier)

	m.enrollments.EXPECT().GetEnrollment(gomock.Any(), "user123").Return(e, nil)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, creds.Password, testSalt).Return(oldKEK, oldVerifier, nil)
	m.keyChain.EXPECT().GenerateSalt().Return(testSalt, nil)
	m.keyChain.EXPECT().Params().Return(cheapParams)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, "N3w-password", testSalt).Return(newKEK, newVerifier, nil)
	m.documents.EXPECT().GetAllDocuments(gomock.Any(), "user123").Return(nil, nil)
	m.enrollments.EXPECT().RotateKeys(gomock.Any(), gomock.Any(), gomock.Any()).Return(store.ErrVersionConflict)

	err := svc.ChangePassword(testContext(), creds, "N3w-password")
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	assert.False(t, newKEK.Alive())
	got, err := m.keys.GetKEK()
	require.NoError(t, err)
	assert.Same(t, sessionKEK, got, "session keeps the old key when rotation fails")
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)

	_, verifier := deriveTestKeys(t, creds.Password)
	wrongKEK, wrongVerifier := deriveTestKeys(t, "wrong")

	m.enrollments.EXPECT().GetEnrollment(gomock.Any(), "user123").Return(testEnrollment(t, verifier), nil)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, "wrong", testSalt).Return(wrongKEK, wrongVerifier, nil)

	err := svc.ChangePassword(testContext(), models.Credentials{UserID: "user123", Password: "wrong"}, "N3w-password")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestAuthService_ChangePassword_EmptyNewPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := newTestAuthSvc(t, ctrl)

	err := svc.ChangePassword(testContext(), creds, "")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

// ── Recovery ─────────────────────────────────────────────────────────────────

func TestAuthService_VerifyRecoveryKey(t *testing.T) {
	key, err := crypto.GenerateRecoveryKey()
	require.NoError(t, err)
	artifact, iv, err := crypto.SealRecoveryArtifact(key, recoveryPayload("user123"))
	require.NoError(t, err)
	foreignArtifact, foreignIV, err := crypto.SealRecoveryArtifact(key, recoveryPayload("someone-else"))
	require.NoError(t, err)
	otherKey, err := crypto.GenerateRecoveryKey()
	require.NoError(t, err)

	tests := []struct {
		name       string
		key        string
		artifact   []byte
		artifactIV []byte
		wantErr    error
	}{
		{name: "correct key", key: key, artifact: artifact, artifactIV: iv},
		{name: "lowercase key", key: strings.ToLower(key), artifact: artifact, artifactIV: iv},
		{name: "wrong key", key: otherKey, artifact: artifact, artifactIV: iv, wantErr: ErrWrongRecoveryKey},
		{name: "artifact of another user", key: key, artifact: foreignArtifact, artifactIV: foreignIV, wantErr: ErrWrongRecoveryKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc, m := newTestAuthSvc(t, ctrl)
			svc.keyChain = realKeyChain(t)

			m.enrollments.EXPECT().GetEnrollment(gomock.Any(), "user123").Return(models.Enrollment{
				UserID:           "user123",
				RecoveryArtifact: tt.artifact,
				RecoveryIV:       tt.artifactIV,
			}, nil)

			err := svc.VerifyRecoveryKey(testContext(), "user123", tt.key)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_VerifyRecoveryKey_Malformed(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := newTestAuthSvc(t, ctrl)

	err := svc.VerifyRecoveryKey(testContext(), "user123", "not-a-recovery-key")
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestAuthService_RegenerateRecoveryKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, m := newTestAuthSvc(t, ctrl)
	ctx := testContext()

	kek, verifier := deriveTestKeys(t, creds.Password)
	e := testEnrollment(t, verifier)

	m.enrollments.EXPECT().GetEnrollment(ctx, "user123").Return(e, nil)
	m.keyChain.EXPECT().DeriveKeys(cheapParams, creds.Password, testSalt).Return(kek, verifier, nil)
	m.keyChain.EXPECT().GenerateRecoveryKey().Return("NEW-KEY", nil)
	m.keyChain.EXPECT().SealRecoveryArtifact("NEW-KEY", recoveryPayload("user123")).
		Return([]byte("new-artifact"), []byte("new-iv"), nil)
	// only the artifact changes; the password material is not rewritten
	m.enrollments.EXPECT().UpdateRecoveryArtifact(ctx, "user123", []byte("new-artifact"), []byte("new-iv")).Return(nil)
	m.enrollments.EXPECT().RotateKeys(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	key, err := svc.RegenerateRecoveryKey(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, "NEW-KEY", key)
	assert.False(t, kek.Alive(), "the key derived for authentication is not kept")
	assert.False(t, m.keys.HasKEK())
}
