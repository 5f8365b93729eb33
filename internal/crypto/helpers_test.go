package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// testParams keeps the KDF cheap; only reachable through deriveKeys, which
// skips the minimum-cost check.
var testParams = KDFParams{Algorithm: AlgorithmPBKDF2SHA256, Iterations: 1000}

func testKEK(t *testing.T, password string, salt []byte) *KEK {
	t.Helper()
	kek, _, err := deriveKeys(testParams, password, salt)
	require.NoError(t, err)
	t.Cleanup(kek.Destroy)
	return kek
}

func fixedKEK(b byte) *KEK {
	return newKEK(bytes.Repeat([]byte{b}, KeySize))
}

func testSalt(t *testing.T) []byte {
	t.Helper()
	salt, err := GenerateSalt()
	require.NoError(t, err)
	return salt
}

// flipped returns a copy of b with byte i inverted.
func flipped(b []byte, i int) []byte {
	out := append([]byte(nil), b...)
	out[i] ^= 0xFF
	return out
}
