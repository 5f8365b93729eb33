package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-zk-vault/internal/crypto"
	"github.com/MKhiriev/go-zk-vault/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKEK derives a real KEK once per test; the full-cost KDF is the only
// public way to obtain one.
func testKEK(t *testing.T) *crypto.KEK {
	t.Helper()
	salt, err := crypto.GenerateSalt()
	require.NoError(t, err)
	kek, err := crypto.DeriveKEK("Secret123!", salt)
	require.NoError(t, err)
	return kek
}

func TestKeyManager_InitialState(t *testing.T) {
	m := NewKeyManager(logger.Nop())

	assert.False(t, m.HasKEK())
	assert.Equal(t, StateEmpty, m.State())
	assert.True(t, m.LastUsed().IsZero())

	kek, err := m.GetKEK()
	assert.Nil(t, kek)
	assert.ErrorIs(t, err, ErrNoKEK)
	assert.ErrorIs(t, err, crypto.ErrPrecondition)
}

func TestKeyManager_SetKEK_Rejects(t *testing.T) {
	m := NewKeyManager(nil)

	assert.ErrorIs(t, m.SetKEK(nil), crypto.ErrValidation)

	dead := testKEK(t)
	dead.Destroy()
	assert.ErrorIs(t, m.SetKEK(dead), crypto.ErrValidation)
	assert.False(t, m.HasKEK())
}

func TestKeyManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewKeyManager(logger.Nop())
	kek := testKEK(t)

	require.NoError(t, m.SetKEK(kek))
	assert.True(t, m.HasKEK())
	assert.Equal(t, StateActive, m.State())

	got, err := m.GetKEK()
	require.NoError(t, err)
	assert.Same(t, kek, got)

	aad := crypto.AADContext{UserID: "user123", DocID: "doc456", Version: 1}
	doc, err := crypto.EncryptDocument([]byte("scene"), got, aad)
	require.NoError(t, err)

	require.NoError(t, m.FullLogout(ctx))
	assert.False(t, m.HasKEK())
	assert.Equal(t, StateEmpty, m.State())
	assert.True(t, m.LastUsed().IsZero())

	// handles obtained before logout are dead as well
	_, err = crypto.DecryptDocument(doc, got, aad)
	assert.ErrorIs(t, err, crypto.ErrPrecondition)

	_, err = m.GetKEK()
	assert.ErrorIs(t, err, ErrNoKEK)
}

func TestKeyManager_SetKEK_ReplacesAndDestroysPrevious(t *testing.T) {
	m := NewKeyManager(logger.Nop())
	first := testKEK(t)
	second := testKEK(t)

	require.NoError(t, m.SetKEK(first))
	require.NoError(t, m.SetKEK(second))

	assert.False(t, first.Alive())
	assert.True(t, second.Alive())

	got, err := m.GetKEK()
	require.NoError(t, err)
	assert.Same(t, second, got)

	// setting the same key twice keeps it alive
	require.NoError(t, m.SetKEK(second))
	assert.True(t, second.Alive())

	m.ClearKEK()
}

func TestKeyManager_EndSessionAndClearAreIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewKeyManager(logger.Nop())
	kek := testKEK(t)
	require.NoError(t, m.SetKEK(kek))

	require.NoError(t, m.EndSession(ctx))
	assert.False(t, kek.Alive())
	assert.False(t, m.HasKEK())

	assert.NotPanics(t, func() {
		m.ClearKEK()
		_ = m.EndSession(ctx)
		_ = m.FullLogout(ctx)
	})
}

func TestKeyManager_ClearIfIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewKeyManager(logger.Nop())
	m.now = func() time.Time { return now }

	assert.False(t, m.ClearIfIdle(time.Minute), "empty session has nothing to clear")

	kek := testKEK(t)
	require.NoError(t, m.SetKEK(kek))
	assert.Equal(t, now, m.LastUsed())

	now = now.Add(30 * time.Second)
	assert.False(t, m.ClearIfIdle(time.Minute))

	// activity pushes the deadline
	_, err := m.GetKEK()
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	assert.False(t, m.ClearIfIdle(time.Minute))
	assert.False(t, m.ClearIfIdle(0))

	now = now.Add(15 * time.Second)
	assert.True(t, m.ClearIfIdle(time.Minute))
	assert.False(t, kek.Alive())
	assert.False(t, m.HasKEK())
}

func TestKeyManager_ConcurrentAccess(t *testing.T) {
	m := NewKeyManager(logger.Nop())
	require.NoError(t, m.SetKEK(testKEK(t)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if kek, err := m.GetKEK(); err == nil {
					_ = kek.Alive()
				}
				_ = m.State()
			}
		}()
	}
	m.ClearKEK()
	wg.Wait()

	assert.False(t, m.HasKEK())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "State(7)", State(7).String())
}
