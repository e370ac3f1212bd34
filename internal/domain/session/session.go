// Package session wraps the persisted key-value entries behind typed helpers.
//
// The dashboard is reachable only while the logged-in flag is set. The flag
// is a convenience gate for the demo, not a security boundary.
package session

import (
	"errors"
	"sync"
)

// Persisted keys.
const (
	KeyLoggedIn   = "isLoggedIn"
	KeyRememberMe = "rememberMe"
	KeySavedEmail = "savedEmail"
)

const truthy = "true"

// ErrUnknownKey is returned by stores that only persist the known keys.
var ErrUnknownKey = errors.New("unknown session key")

// Store is a string key-value store scoped to one client.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// LoggedIn reports whether the flag is present and non-empty.
func LoggedIn(s Store) bool {
	v, ok := s.Get(KeyLoggedIn)
	return ok && v != ""
}

// SetLoggedIn persists the flag as "true".
func SetLoggedIn(s Store) error {
	return s.Set(KeyLoggedIn, truthy)
}

// ClearLoggedIn removes the flag.
func ClearLoggedIn(s Store) error {
	return s.Delete(KeyLoggedIn)
}

// Remember persists the remember-me preference and the email.
func Remember(s Store, email string) error {
	if err := s.Set(KeyRememberMe, truthy); err != nil {
		return err
	}
	return s.Set(KeySavedEmail, email)
}

// Forget removes the remember-me preference and the saved email.
func Forget(s Store) error {
	return errors.Join(s.Delete(KeyRememberMe), s.Delete(KeySavedEmail))
}

// RememberedEmail returns the saved email when remember-me is "true".
func RememberedEmail(s Store) (string, bool) {
	if v, ok := s.Get(KeyRememberMe); !ok || v != truthy {
		return "", false
	}
	email, ok := s.Get(KeySavedEmail)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}

// MemoryStore is a Store held in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Len reports how many keys are set.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
