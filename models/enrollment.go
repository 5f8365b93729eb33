package models

import "time"

// Enrollment holds everything stored about a user's key setup. None of it is
// secret by itself:
//   - Salt and the KDF parameters are public inputs to key derivation;
//   - VerifierHash is a bcrypt hash of the auth verifier, so a stolen
//     database does not even give out the verifier;
//   - RecoveryArtifact is sealed under the recovery key.
type Enrollment struct {
	UserID           string
	KDFAlgorithm     string
	KDFIterations    uint32
	KDFMemoryKiB     uint32
	KDFThreads       uint8
	Salt             []byte
	VerifierHash     []byte
	RecoveryArtifact []byte
	RecoveryIV       []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EnrollmentResult is returned once, at enrollment time.
type EnrollmentResult struct {
	// RecoveryKey must be shown to the user exactly once and never stored.
	RecoveryKey string
	// AuthVerifier may be sent to a server for login; it cannot decrypt data.
	AuthVerifier []byte
	Salt         []byte
}
