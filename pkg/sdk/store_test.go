package sdk_test

import (
	"errors"
	"testing"

	"github.com/snipbox/snipbox/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := sdk.NewMemoryStore()
	assert.Empty(t, store.Get(sdk.KeyAccessToken))

	require.NoError(t, store.Set(sdk.KeyAccessToken, "A"))
	assert.Equal(t, "A", store.Get(sdk.KeyAccessToken), "write is visible to the next read")

	require.NoError(t, store.Remove(sdk.KeyAccessToken))
	assert.Empty(t, store.Get(sdk.KeyAccessToken))
	require.NoError(t, store.Remove(sdk.KeyAccessToken), "removing a missing key is not an error")
}

func TestSetTokens(t *testing.T) {
	t.Run("writes both slots", func(t *testing.T) {
		store := sdk.NewMemoryStore()
		require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))
		assert.Equal(t, "A", store.Get(sdk.KeyAccessToken))
		assert.Equal(t, "R", store.Get(sdk.KeyRefreshToken))
	})

	t.Run("rejects a partial pair", func(t *testing.T) {
		store := sdk.NewMemoryStore()
		assert.Error(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A"}))
		assert.Empty(t, store.Get(sdk.KeyAccessToken))
	})
}

// failingStore is a MemoryStore whose writes to one slot fail.
type failingStore struct {
	*sdk.MemoryStore
	failKey sdk.SessionKey
}

func (s *failingStore) Set(key sdk.SessionKey, value string) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(key, value)
}

func TestSetTokens_PartialWriteFailure(t *testing.T) {
	t.Run("refresh slot fails", func(t *testing.T) {
		store := &failingStore{MemoryStore: sdk.NewMemoryStore(), failKey: sdk.KeyRefreshToken}
		err := sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"})
		require.Error(t, err)
		assert.Empty(t, store.Get(sdk.KeyAccessToken), "no access token without a refresh token")
		assert.Empty(t, store.Get(sdk.KeyRefreshToken))
	})

	t.Run("access slot fails restores previous refresh token", func(t *testing.T) {
		store := &failingStore{MemoryStore: sdk.NewMemoryStore(), failKey: sdk.KeyAccessToken}
		require.NoError(t, store.MemoryStore.Set(sdk.KeyRefreshToken, "R0"))

		err := sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R1"})
		require.Error(t, err)
		assert.Empty(t, store.Get(sdk.KeyAccessToken))
		assert.Equal(t, "R0", store.Get(sdk.KeyRefreshToken))
	})

	t.Run("access slot fails on an empty store", func(t *testing.T) {
		store := &failingStore{MemoryStore: sdk.NewMemoryStore(), failKey: sdk.KeyAccessToken}
		require.Error(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))
		assert.Empty(t, store.Get(sdk.KeyRefreshToken))
	})
}

func TestClearTokens(t *testing.T) {
	store := sdk.NewMemoryStore()
	require.NoError(t, sdk.SetTokens(store, sdk.TokenPair{AccessToken: "A", RefreshToken: "R"}))
	require.NoError(t, store.Set(sdk.KeyRedirectURL, "/posts"))

	require.NoError(t, sdk.ClearTokens(store))
	assert.Empty(t, store.Get(sdk.KeyAccessToken))
	assert.Empty(t, store.Get(sdk.KeyRefreshToken))
	assert.Equal(t, "/posts", store.Get(sdk.KeyRedirectURL))
}

func TestClearSession(t *testing.T) {
	store := sdk.NewMemoryStore()
	require.NoError(t, store.Set(sdk.KeyAccessToken, "A"))
	require.NoError(t, store.Set(sdk.KeyRefreshToken, "R"))
	require.NoError(t, store.Set(sdk.KeyRedirectURL, "/posts"))
	require.NoError(t, store.Set(sdk.KeyPendingVerificationEmail, "ada@example.com"))

	require.NoError(t, sdk.ClearSession(store))
	assert.Empty(t, store.Get(sdk.KeyAccessToken))
	assert.Empty(t, store.Get(sdk.KeyRefreshToken))
	assert.Empty(t, store.Get(sdk.KeyRedirectURL))
	assert.Equal(t, "ada@example.com", store.Get(sdk.KeyPendingVerificationEmail))
}
