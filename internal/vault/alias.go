package vault

import (
	"context"
	"sort"
	"sync"
)

// AliasName is the registry name of the alias vault.
const AliasName = "ALIAS"

// Alias holds secrets in memory, seeded from configuration. It is safe for
// concurrent use.
type Alias struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewAlias creates an alias vault with a copy of seed.
func NewAlias(seed map[string]string) *Alias {
	values := make(map[string]string, len(seed))
	for key, value := range seed {
		values[key] = value
	}

	return &Alias{values: values}
}

// Name implements Vault.
func (a *Alias) Name() string {
	return AliasName
}

// Get implements Vault.
func (a *Alias) Get(_ context.Context, key string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	value, ok := a.values[key]
	if !ok {
		return "", &Error{Vault: AliasName, Op: "get", Key: key, Err: ErrKeyNotFound}
	}

	return value, nil
}

// Set implements Vault.
func (a *Alias) Set(_ context.Context, key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.values[key] = value

	return nil
}

// Delete implements Vault. Deleting an absent key is not an error.
func (a *Alias) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.values, key)

	return nil
}

// Keys returns the stored keys in sorted order.
func (a *Alias) Keys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	keys := make([]string, 0, len(a.values))
	for key := range a.values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
