package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeys_Deterministic(t *testing.T) {
	salt := bytes.Repeat([]byte{0xAB}, SaltSize)
	aad := []byte("determinism")

	kek1, v1, err := deriveKeys(testParams, "correct horse battery staple", salt)
	require.NoError(t, err)
	kek2, v2, err := deriveKeys(testParams, "correct horse battery staple", salt)
	require.NoError(t, err)

	assert.Len(t, v1, KeySize)
	assert.Equal(t, v1, v2)

	// identical KEKs open each other's ciphertexts
	ct, iv, err := Encrypt([]byte("payload"), kek1, aad)
	require.NoError(t, err)
	pt, err := Decrypt(ct, iv, kek2, aad)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), pt)
}

func TestDeriveKeys_InputsChangeOutput(t *testing.T) {
	salt1 := bytes.Repeat([]byte{0x01}, SaltSize)
	salt2 := bytes.Repeat([]byte{0x02}, SaltSize)
	aad := []byte("inputs")

	base, vBase, err := deriveKeys(testParams, "same password", salt1)
	require.NoError(t, err)
	otherSalt, vSalt, err := deriveKeys(testParams, "same password", salt2)
	require.NoError(t, err)
	otherPass, vPass, err := deriveKeys(testParams, "other password", salt1)
	require.NoError(t, err)

	assert.NotEqual(t, vBase, vSalt)
	assert.NotEqual(t, vBase, vPass)

	ct, iv, err := Encrypt([]byte("payload"), base, aad)
	require.NoError(t, err)

	_, err = Decrypt(ct, iv, otherSalt, aad)
	assert.ErrorIs(t, err, ErrAuthentication)
	_, err = Decrypt(ct, iv, otherPass, aad)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestDeriveKeys_VerifierIsNotTheKEK(t *testing.T) {
	salt := testSalt(t)
	kek, verifier, err := deriveKeys(testParams, "Secret123!", salt)
	require.NoError(t, err)

	aad := []byte("separation")
	ct, iv, err := Encrypt([]byte("payload"), kek, aad)
	require.NoError(t, err)

	// a holder of the verifier cannot use it as the KEK
	_, err = Decrypt(ct, iv, &DEK{raw: verifier}, aad)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestDeriveKeys_Argon2id(t *testing.T) {
	params := KDFParams{Algorithm: AlgorithmArgon2id, Iterations: 1, MemoryKiB: 1024, Threads: 1}
	salt := testSalt(t)

	_, v1, err := deriveKeys(params, "pw", salt)
	require.NoError(t, err)
	_, v2, err := deriveKeys(params, "pw", salt)
	require.NoError(t, err)
	_, vPBKDF2, err := deriveKeys(testParams, "pw", salt)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.NotEqual(t, v1, vPBKDF2)
}

func TestDeriveKeys_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		password string
		salt     []byte
	}{
		{name: "empty password", password: "", salt: make([]byte, SaltSize)},
		{name: "nil salt", password: "pw", salt: nil},
		{name: "short salt", password: "pw", salt: make([]byte, SaltSize-1)},
		{name: "long salt", password: "pw", salt: make([]byte, SaltSize+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kek, verifier, err := deriveKeys(testParams, tt.password, tt.salt)
			require.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, kek)
			assert.Nil(t, verifier)
		})
	}
}

func TestKDFParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  KDFParams
		wantErr bool
	}{
		{name: "default", params: DefaultKDFParams()},
		{name: "default argon2id", params: DefaultArgon2idParams()},
		{name: "more pbkdf2 iterations", params: KDFParams{Algorithm: AlgorithmPBKDF2SHA256, Iterations: 1_000_000}},
		{name: "pbkdf2 below minimum", params: KDFParams{Algorithm: AlgorithmPBKDF2SHA256, Iterations: 599_999}, wantErr: true},
		{name: "argon2id low memory", params: KDFParams{Algorithm: AlgorithmArgon2id, Iterations: 1, MemoryKiB: 1024, Threads: 1}, wantErr: true},
		{name: "argon2id zero time", params: KDFParams{Algorithm: AlgorithmArgon2id, MemoryKiB: 64 * 1024, Threads: 1}, wantErr: true},
		{name: "argon2id zero threads", params: KDFParams{Algorithm: AlgorithmArgon2id, Iterations: 1, MemoryKiB: 64 * 1024}, wantErr: true},
		{name: "unknown algorithm", params: KDFParams{Algorithm: "scrypt", Iterations: 1 << 20}, wantErr: true},
		{name: "zero value", params: KDFParams{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDeriveKeys_RejectsDowngradedParams(t *testing.T) {
	_, _, err := DeriveKeys(testParams, "pw", testSalt(t))
	assert.ErrorIs(t, err, ErrValidation)
}

// Runs the production 600k-iteration KDF.
func TestDeriveKEKAndVerifier_DefaultParams(t *testing.T) {
	if testing.Short() {
		t.Skip("full-cost KDF")
	}
	salt := testSalt(t)
	aad := []byte("default-params")

	kek1, err := DeriveKEK("Secret123!", salt)
	require.NoError(t, err)
	defer kek1.Destroy()
	kek2, err := DeriveKEK("Secret123!", salt)
	require.NoError(t, err)
	defer kek2.Destroy()

	ct, iv, err := Encrypt([]byte("payload"), kek1, aad)
	require.NoError(t, err)
	pt, err := Decrypt(ct, iv, kek2, aad)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), pt)

	v1, err := DeriveAuthVerifier("Secret123!", salt)
	require.NoError(t, err)
	v2, err := DeriveAuthVerifier("Secret123!", salt)
	require.NoError(t, err)
	assert.Len(t, v1, KeySize)
	assert.Equal(t, v1, v2)

	_, err = DeriveKEK("", salt)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = DeriveAuthVerifier("Secret123!", salt[:8])
	assert.ErrorIs(t, err, ErrValidation)
}
