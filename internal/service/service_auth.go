package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/MKhiriev/go-zk-vault/internal/store"
	"github.com/MKhiriev/go-zk-vault/internal/validators"
	"github.com/MKhiriev/go-zk-vault/models"
)

// recoveryPayloadPrefix is sealed, followed by the user id, under the
// recovery key. Opening the artifact and finding this payload proves the key.
const recoveryPayloadPrefix = "zkvault:recovery-check:v1:"

// authService is the concrete implementation of AuthService.
type authService struct {
	// enrollments persists salts, KDF parameters and verifier hashes.
	enrollments store.EnrollmentRepository

	// documents is read during a password change to re-wrap every DEK.
	documents store.DocumentRepository

	// keyChain performs all key derivation and encryption.
	keyChain crypto.KeyChainService

	// keys is the session key holder that receives the unlocked KEK.
	keys KeyHolder

	validator validators.Validator

	// bcryptCost is the cost used when hashing the auth verifier.
	bcryptCost int

	logger *logger.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	enrollments store.EnrollmentRepository,
	documents store.DocumentRepository,
	keyChain crypto.KeyChainService,
	keys KeyHolder,
	logger *logger.Logger,
) AuthService {
	return &authService{
		enrollments: enrollments,
		documents:   documents,
		keyChain:    keyChain,
		keys:        keys,
		validator:   validators.NewVaultValidator(),
		bcryptCost:  bcrypt.DefaultCost,
		logger:      logger,
	}
}

// Enroll creates the user's enrollment.
//
// One KDF run yields both the KEK and the auth verifier. Only a bcrypt hash of
// the verifier is stored. A recovery key is generated and a check artifact
// sealed under it, so a later VerifyRecoveryKey can tell a right key from a
// wrong one. On success the KEK is handed to the session.
//
// Returns:
//   - ErrInvalidDataProvided if the user id or password is unusable.
//   - ErrAlreadyEnrolled if the user already has an enrollment.
func (a *authService) Enroll(ctx context.Context, credentials models.Credentials) (models.EnrollmentResult, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, credentials); err != nil {
		log.Error().Err(err).Str("user_id", credentials.UserID).Msg("invalid enrollment data provided")
		return models.EnrollmentResult{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	salt, err := a.keyChain.GenerateSalt()
	if err != nil {
		return models.EnrollmentResult{}, fmt.Errorf("error generating salt: %w", err)
	}

	params := a.keyChain.Params()
	kek, verifier, err := a.keyChain.DeriveKeys(params, credentials.Password, salt)
	if err != nil {
		return models.EnrollmentResult{}, fmt.Errorf("error deriving keys: %w", err)
	}

	verifierHash, err := a.hashVerifier(verifier)
	if err != nil {
		kek.Destroy()
		return models.EnrollmentResult{}, err
	}

	recoveryKey, err := a.keyChain.GenerateRecoveryKey()
	if err != nil {
		kek.Destroy()
		return models.EnrollmentResult{}, fmt.Errorf("error generating recovery key: %w", err)
	}

	artifact, artifactIV, err := a.keyChain.SealRecoveryArtifact(recoveryKey, recoveryPayload(credentials.UserID))
	if err != nil {
		kek.Destroy()
		return models.EnrollmentResult{}, fmt.Errorf("error sealing recovery artifact: %w", err)
	}

	enrollment := models.Enrollment{
		UserID:           credentials.UserID,
		KDFAlgorithm:     string(params.Algorithm),
		KDFIterations:    params.Iterations,
		KDFMemoryKiB:     params.MemoryKiB,
		KDFThreads:       params.Threads,
		Salt:             salt,
		VerifierHash:     verifierHash,
		RecoveryArtifact: artifact,
		RecoveryIV:       artifactIV,
	}

	if err = a.enrollments.CreateEnrollment(ctx, enrollment); err != nil {
		kek.Destroy()
		if errors.Is(err, store.ErrEnrollmentExists) {
			return models.EnrollmentResult{}, ErrAlreadyEnrolled
		}
		log.Err(err).Str("user_id", credentials.UserID).Msg("enrollment creation ended with error")
		return models.EnrollmentResult{}, fmt.Errorf("enrollment creation ended with error: %w", err)
	}

	if err = a.keys.SetKEK(kek); err != nil {
		kek.Destroy()
		return models.EnrollmentResult{}, fmt.Errorf("error activating session key: %w", err)
	}

	log.Info().
		Str("user_id", credentials.UserID).
		Str("kdf", string(params.Algorithm)).
		Msg("user enrolled")

	return models.EnrollmentResult{
		RecoveryKey:  recoveryKey,
		AuthVerifier: verifier,
		Salt:         salt,
	}, nil
}

// Unlock authenticates the password against the stored verifier hash and,
// on success, puts the derived KEK into the session.
//
// Returns ErrNotEnrolled for an unknown user and ErrWrongPassword for a
// mismatch. A wrong password leaves the session untouched.
func (a *authService) Unlock(ctx context.Context, credentials models.Credentials) error {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, credentials); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	_, kek, err := a.authenticate(ctx, credentials)
	if err != nil {
		return err
	}

	if err = a.keys.SetKEK(kek); err != nil {
		kek.Destroy()
		return fmt.Errorf("error activating session key: %w", err)
	}

	log.Info().Str("user_id", credentials.UserID).Msg("session unlocked")
	return nil
}

// Lock destroys the session KEK.
func (a *authService) Lock(ctx context.Context) error {
	return a.keys.FullLogout(ctx)
}

// ChangePassword verifies the old password, derives a new KEK under a fresh
// salt and the current KDF parameters, re-wraps every document key and
// persists the result atomically. The session then holds the new KEK.
//
// The recovery artifact is sealed under the recovery key, not the password,
// so it is kept as is.
func (a *authService) ChangePassword(ctx context.Context, credentials models.Credentials, newPassword string) error {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, credentials); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if err := a.validator.Validate(ctx, models.Credentials{UserID: credentials.UserID, Password: newPassword}); err != nil {
		return fmt.Errorf("%w: new password: %w", ErrInvalidDataProvided, err)
	}

	enrollment, oldKEK, err := a.authenticate(ctx, credentials)
	if err != nil {
		return err
	}
	defer oldKEK.Destroy()

	salt, err := a.keyChain.GenerateSalt()
	if err != nil {
		return fmt.Errorf("error generating salt: %w", err)
	}

	params := a.keyChain.Params()
	newKEK, verifier, err := a.keyChain.DeriveKeys(params, newPassword, salt)
	if err != nil {
		return fmt.Errorf("error deriving keys: %w", err)
	}

	rotated, err := a.rotate(ctx, credentials.UserID, enrollment, params, salt, verifier, oldKEK, newKEK)
	if err != nil {
		newKEK.Destroy()
		return err
	}

	if err = a.keys.SetKEK(newKEK); err != nil {
		newKEK.Destroy()
		return fmt.Errorf("error activating session key: %w", err)
	}

	log.Info().
		Str("user_id", credentials.UserID).
		Int("documents_count", rotated).
		Msg("password changed")
	return nil
}

// rotate re-wraps every document of userID from oldKEK to newKEK and
// stores the new enrollment in one transaction. It returns the number of
// documents re-wrapped.
func (a *authService) rotate(
	ctx context.Context,
	userID string,
	enrollment models.Enrollment,
	params crypto.KDFParams,
	salt, verifier []byte,
	oldKEK, newKEK *crypto.KEK,
) (int, error) {
	log := logger.FromContext(ctx)

	verifierHash, err := a.hashVerifier(verifier)
	if err != nil {
		return 0, err
	}

	records, err := a.documents.GetAllDocuments(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error loading documents for re-wrapping: %w", err)
	}

	for i := range records {
		doc, rewrapErr := a.keyChain.RewrapDocument(toEncryptedDocument(records[i]), oldKEK, newKEK)
		if rewrapErr != nil {
			log.Err(rewrapErr).
				Str("func", "authService.rotate").
				Str("doc_id", records[i].DocID).
				Msg("failed to re-wrap document key")
			return 0, fmt.Errorf("error re-wrapping document %s: %w", records[i].DocID, rewrapErr)
		}
		records[i].WrappedDEK = doc.WrappedDEK
		records[i].WrappedDEKIV = doc.WrappedDEKIV
	}

	enrollment.KDFAlgorithm = string(params.Algorithm)
	enrollment.KDFIterations = params.Iterations
	enrollment.KDFMemoryKiB = params.MemoryKiB
	enrollment.KDFThreads = params.Threads
	enrollment.Salt = salt
	enrollment.VerifierHash = verifierHash

	if err = a.enrollments.RotateKeys(ctx, enrollment, records); err != nil {
		return 0, fmt.Errorf("error storing rotated keys: %w", err)
	}

	return len(records), nil
}

// VerifyRecoveryKey opens the recovery artifact with recoveryKey.
//
// Returns ErrInvalidDataProvided for a malformed key, ErrWrongRecoveryKey
// when the key is well-formed but does not open the artifact.
func (a *authService) VerifyRecoveryKey(ctx context.Context, userID, recoveryKey string) error {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, models.Credentials{UserID: userID}, validators.FieldUserID); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	if _, err := crypto.ParseRecoveryKey(recoveryKey); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	enrollment, err := a.getEnrollment(ctx, userID)
	if err != nil {
		return err
	}

	payload, err := a.keyChain.OpenRecoveryArtifact(recoveryKey, enrollment.RecoveryArtifact, enrollment.RecoveryIV)
	if errors.Is(err, crypto.ErrAuthentication) {
		log.Warn().Str("user_id", userID).Msg("recovery key does not open the artifact")
		return ErrWrongRecoveryKey
	}
	if err != nil {
		return fmt.Errorf("error opening recovery artifact: %w", err)
	}

	if !bytes.Equal(payload, recoveryPayload(userID)) {
		log.Warn().Str("user_id", userID).Msg("recovery artifact belongs to another user")
		return ErrWrongRecoveryKey
	}

	return nil
}

// RegenerateRecoveryKey authenticates the password, seals a fresh artifact
// under a new recovery key and stores it. The old recovery key stops working.
func (a *authService) RegenerateRecoveryKey(ctx context.Context, credentials models.Credentials) (string, error) {
	log := logger.FromContext(ctx)

	if err := a.validator.Validate(ctx, credentials); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	enrollment, kek, err := a.authenticate(ctx, credentials)
	if err != nil {
		return "", err
	}
	kek.Destroy()

	recoveryKey, err := a.keyChain.GenerateRecoveryKey()
	if err != nil {
		return "", fmt.Errorf("error generating recovery key: %w", err)
	}

	enrollment.RecoveryArtifact, enrollment.RecoveryIV, err = a.keyChain.SealRecoveryArtifact(recoveryKey, recoveryPayload(credentials.UserID))
	if err != nil {
		return "", fmt.Errorf("error sealing recovery artifact: %w", err)
	}

	if err = a.enrollments.UpdateRecoveryArtifact(ctx, credentials.UserID, enrollment.RecoveryArtifact, enrollment.RecoveryIV); err != nil {
		return "", fmt.Errorf("error storing recovery artifact: %w", err)
	}

	log.Info().Str("user_id", credentials.UserID).Msg("recovery key regenerated")
	return recoveryKey, nil
}

// authenticate loads the enrollment, derives keys with the stored parameters
// and compares the verifier. The caller owns the returned KEK.
func (a *authService) authenticate(ctx context.Context, credentials models.Credentials) (models.Enrollment, *crypto.KEK, error) {
	log := logger.FromContext(ctx)

	enrollment, err := a.getEnrollment(ctx, credentials.UserID)
	if err != nil {
		return models.Enrollment{}, nil, err
	}

	kek, verifier, err := a.keyChain.DeriveKeys(enrollmentParams(enrollment), credentials.Password, enrollment.Salt)
	if err != nil {
		log.Err(err).Str("user_id", credentials.UserID).Msg("key derivation failed")
		return models.Enrollment{}, nil, fmt.Errorf("error deriving keys: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword(enrollment.VerifierHash, encodeVerifier(verifier)); err != nil {
		kek.Destroy()
		log.Warn().Str("user_id", credentials.UserID).Msg("wrong password")
		return models.Enrollment{}, nil, ErrWrongPassword
	}

	return enrollment, kek, nil
}

func (a *authService) getEnrollment(ctx context.Context, userID string) (models.Enrollment, error) {
	enrollment, err := a.enrollments.GetEnrollment(ctx, userID)
	if errors.Is(err, store.ErrEnrollmentNotFound) {
		return models.Enrollment{}, ErrNotEnrolled
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("user_id", userID).Msg("enrollment lookup failed")
		return models.Enrollment{}, fmt.Errorf("enrollment lookup failed: %w", err)
	}
	return enrollment, nil
}

func (a *authService) hashVerifier(verifier []byte) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword(encodeVerifier(verifier), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing auth verifier: %w", err)
	}
	return hash, nil
}

// encodeVerifier keeps the verifier under bcrypt's 72-byte input limit and
// free of NUL bytes.
func encodeVerifier(verifier []byte) []byte {
	return []byte(base64.StdEncoding.EncodeToString(verifier))
}

func enrollmentParams(e models.Enrollment) crypto.KDFParams {
	return crypto.KDFParams{
		Algorithm:  crypto.Algorithm(e.KDFAlgorithm),
		Iterations: e.KDFIterations,
		MemoryKiB:  e.KDFMemoryKiB,
		Threads:    e.KDFThreads,
	}
}

func recoveryPayload(userID string) []byte {
	return []byte(recoveryPayloadPrefix + userID)
}
