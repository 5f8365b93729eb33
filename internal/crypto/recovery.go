package crypto

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"
)

// GenerateRecoveryKey returns [RecoveryKeySize] bytes of CSPRNG output
// formatted as eight hyphen-separated groups of four uppercase hex
// characters. The key is independent of the password and is meant to be
// written down by the user.
func GenerateRecoveryKey() (string, error) {
	raw, err := randomBytes(RecoveryKeySize)
	if err != nil {
		return "", err
	}
	defer memguard.WipeBytes(raw)

	digits := strings.ToUpper(hex.EncodeToString(raw))

	var sb strings.Builder
	sb.Grow(len(digits) + RecoveryKeyGroups - 1)
	for g := range RecoveryKeyGroups {
		if g > 0 {
			sb.WriteByte('-')
		}
		sb.WriteString(digits[g*RecoveryKeyGroupSize : (g+1)*RecoveryKeyGroupSize])
	}
	return sb.String(), nil
}

// ParseRecoveryKey decodes a recovery key back into its [RecoveryKeySize]
// bytes. Hyphens,
// spaces and letter case are ignored so a hand-typed key still parses.
func ParseRecoveryKey(key string) ([]byte, error) {
	normalized := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, strings.TrimSpace(key))

	if len(normalized) != 2*RecoveryKeySize {
		return nil, fmt.Errorf("%w: recovery key must have %d hex digits", ErrValidation, 2*RecoveryKeySize)
	}

	raw, err := hex.DecodeString(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: recovery key is not hex", ErrValidation)
	}
	return raw, nil
}

// recoveryDEK stretches the 128-bit recovery key into a 256-bit AEAD key
// via HKDF so the transcribed bytes are never used as a cipher key
// directly.
func recoveryDEK(key string) (*DEK, error) {
	raw, err := ParseRecoveryKey(key)
	if err != nil {
		return nil, err
	}
	defer memguard.WipeBytes(raw)

	derived, err := expand(raw, recoveryKeyInfo)
	if err != nil {
		return nil, err
	}
	return &DEK{raw: derived}, nil
}

// SealRecoveryArtifact encrypts payload under the recovery key. The result
// can be escrowed with the storage service; only the holder of the
// recovery key can open it.
func SealRecoveryArtifact(recoveryKey string, payload []byte) (ciphertext, iv []byte, err error) {
	key, err := recoveryDEK(recoveryKey)
	if err != nil {
		return nil, nil, err
	}
	defer key.Wipe()

	return Encrypt(payload, key, []byte(recoveryArtifactAD))
}

// OpenRecoveryArtifact decrypts an artifact sealed by [SealRecoveryArtifact].
// A wrong recovery key fails with [ErrAuthentication].
func OpenRecoveryArtifact(recoveryKey string, ciphertext, iv []byte) ([]byte, error) {
	key, err := recoveryDEK(recoveryKey)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	return Decrypt(ciphertext, iv, key, []byte(recoveryArtifactAD))
}
