package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/MKhiriev/go-zk-vault/internal/mock"
	"github.com/MKhiriev/go-zk-vault/internal/session"
	"github.com/MKhiriev/go-zk-vault/models"
)

// cheapParams is the cheapest setting that still passes validation.
var cheapParams = crypto.KDFParams{
	Algorithm:  crypto.AlgorithmArgon2id,
	Iterations: crypto.MinArgon2Time,
	MemoryKiB:  crypto.MinArgon2MemoryKiB,
	Threads:    1,
}

var testSalt = []byte("0123456789abcdef")

func testContext() context.Context {
	return logger.Nop().WithContext(context.Background())
}

func realKeyChain(t *testing.T) crypto.KeyChainService {
	t.Helper()
	kc, err := crypto.NewKeyChainService(cheapParams)
	require.NoError(t, err)
	return kc
}

// deriveTestKeys returns a live KEK and its verifier for password.
func deriveTestKeys(t *testing.T, password string) (*crypto.KEK, []byte) {
	t.Helper()
	kek, verifier, err := realKeyChain(t).DeriveKeys(cheapParams, password, testSalt)
	require.NoError(t, err)
	t.Cleanup(kek.Destroy)
	return kek, verifier
}

func verifierHash(t *testing.T, verifier []byte) []byte {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword(encodeVerifier(verifier), bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func testEnrollment(t *testing.T, verifier []byte) models.Enrollment {
	t.Helper()
	return models.Enrollment{
		UserID:           "user123",
		KDFAlgorithm:     string(cheapParams.Algorithm),
		KDFIterations:    cheapParams.Iterations,
		KDFMemoryKiB:     cheapParams.MemoryKiB,
		KDFThreads:       cheapParams.Threads,
		Salt:             testSalt,
		VerifierHash:     verifierHash(t, verifier),
		RecoveryArtifact: []byte("artifact"),
		RecoveryIV:       []byte("artifact-iv!"),
	}
}

type authMocks struct {
	keyChain    *mock.MockKeyChainService
	enrollments *mock.MockEnrollmentRepository
	documents   *mock.MockDocumentRepository
	keys        *session.KeyManager
}

// newTestAuthSvc creates an authService wired to mocks and a real session.
func newTestAuthSvc(t *testing.T, ctrl *gomock.Controller) (*authService, authMocks) {
	t.Helper()
	m := authMocks{
		keyChain:    mock.NewMockKeyChainService(ctrl),
		enrollments: mock.NewMockEnrollmentRepository(ctrl),
		documents:   mock.NewMockDocumentRepository(ctrl),
		keys:        session.NewKeyManager(logger.Nop()),
	}
	t.Cleanup(m.keys.ClearKEK)

	svc := NewAuthService(m.enrollments, m.documents, m.keyChain, m.keys, logger.Nop()).(*authService)
	svc.bcryptCost = bcrypt.MinCost
	return svc, m
}
