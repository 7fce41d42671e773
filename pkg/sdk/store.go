package sdk

import (
	"fmt"
	"sync"
)

// SessionKey names a slot in the SessionStore.
type SessionKey string

const (
	KeyAccessToken  SessionKey = "accessToken"
	KeyRefreshToken SessionKey = "refreshToken"
	// KeyRedirectURL remembers where the user was headed when a guard sent them to login.
	KeyRedirectURL SessionKey = "redirectUrl"
	// KeyPendingVerificationEmail is a hint for the verify-email step after registration.
	KeyPendingVerificationEmail SessionKey = "pendingVerificationEmail"
)

// SessionStore is the durable, synchronous key/value persistence behind the
// session. A value written with Set must be returned by the next Get.
// Implementations hold no expiry logic and perform no network calls.
type SessionStore interface {
	Get(key SessionKey) string
	Set(key SessionKey, value string) error
	Remove(key SessionKey) error
}

// SetTokens writes both token slots. The refresh token goes first so an
// access token is never stored without its refresh token; if the access
// write fails the previous refresh token is put back.
func SetTokens(store SessionStore, pair TokenPair) error {
	if !pair.Complete() {
		return fmt.Errorf("token pair requires both access and refresh token")
	}
	previousRefresh := store.Get(KeyRefreshToken)
	if err := store.Set(KeyRefreshToken, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	if err := store.Set(KeyAccessToken, pair.AccessToken); err != nil {
		if rerr := restore(store, KeyRefreshToken, previousRefresh); rerr != nil {
			return fmt.Errorf("failed to store access token: %w (restoring refresh token: %v)", err, rerr)
		}
		return fmt.Errorf("failed to store access token: %w", err)
	}
	return nil
}

func restore(store SessionStore, key SessionKey, value string) error {
	if value == "" {
		return store.Remove(key)
	}
	return store.Set(key, value)
}

// ClearTokens removes the token slots, access token first. Other slots,
// such as the redirect hint, are kept.
func ClearTokens(store SessionStore) error {
	return remove(store, KeyAccessToken, KeyRefreshToken)
}

// ClearSession removes the token slots and the redirect hint.
func ClearSession(store SessionStore) error {
	return remove(store, KeyAccessToken, KeyRefreshToken, KeyRedirectURL)
}

func remove(store SessionStore, keys ...SessionKey) error {
	for _, key := range keys {
		if err := store.Remove(key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

// MemoryStore is a process-local SessionStore.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[SessionKey]string
}

var _ SessionStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[SessionKey]string)}
}

func (s *MemoryStore) Get(key SessionKey) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

func (s *MemoryStore) Set(key SessionKey, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, key)
		return nil
	}
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
