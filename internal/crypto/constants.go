package crypto

const (
	// SaltSize is the length of the per-user KDF salt (128 bits).
	SaltSize = 16

	// KeySize is the length of KEKs, DEKs, auth verifiers and recovery keys (256 bits).
	KeySize = 32

	// IVSize is the AES-GCM nonce length (96 bits).
	IVSize = 12

	// TagSize is the AES-GCM authentication tag length (128 bits).
	TagSize = 16

	// WrappedDEKSize is the length of a DEK sealed under a KEK.
	WrappedDEKSize = KeySize + TagSize

	// RecoveryKeyGroups and RecoveryKeyGroupSize describe the
	// XXXX-XXXX-XXXX-XXXX-XXXX-XXXX-XXXX-XXXX recovery key layout.
	RecoveryKeyGroups    = 8
	RecoveryKeyGroupSize = 4

	// RecoveryKeySize is the number of random bytes behind a recovery key:
	// two hex digits per byte (128 bits).
	RecoveryKeySize = RecoveryKeyGroups * RecoveryKeyGroupSize / 2
)

// HKDF labels. Changing any of them makes existing data unreadable.
const (
	kekInfo            = "zkvault:kek:v1"
	authVerifierInfo   = "zkvault:auth-verifier:v1"
	recoveryKeyInfo    = "zkvault:recovery-key:v1"
	wrappedDEKAAD      = "zkvault:wrapped-dek:v1"
	recoveryArtifactAD = "zkvault:recovery-artifact:v1"
)
