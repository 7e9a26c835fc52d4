// Package vault stores and resolves installer secrets.
//
// A vault is a flat name/value store. The environment vault reads process
// environment variables, the alias vault holds in-memory values seeded
// from configuration, and the NATS vault persists values in a JetStream
// key-value bucket shared between installer runs.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Static errors for err113 compliance.
var (
	ErrKeyNotFound      = errors.New("key not found")
	ErrUnknownVault     = errors.New("unknown vault")
	ErrInvalidReference = errors.New("invalid vault reference")
)

// ReferencePrefix marks a configuration value as a vault lookup, for
// example "VAULT:db_password".
const ReferencePrefix = "VAULT:"

// Vault stores named secrets.
type Vault interface {
	Name() string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Error reports a failed vault operation.
type Error struct {
	Vault string
	Op    string
	Key   string
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("vault %s: %s %s: %s", e.Vault, e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Manager routes operations to named vaults and expands VAULT: references.
// It is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	vaults map[string]Vault
}

// NewManager creates a manager holding the given vaults.
func NewManager(vaults ...Vault) *Manager {
	manager := &Manager{vaults: make(map[string]Vault, len(vaults))}
	for _, v := range vaults {
		manager.vaults[v.Name()] = v
	}

	return manager
}

// DefaultManager returns a manager with the environment and alias vaults.
func DefaultManager() *Manager {
	return NewManager(NewEnvironment(), NewAlias(nil))
}

// Register adds or replaces a vault under its own name.
func (m *Manager) Register(v Vault) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.vaults[v.Name()] = v
}

// Get returns the vault registered under name.
func (m *Manager) Get(name string) (Vault, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vaults[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVault, name)
	}

	return v, nil
}

// Names returns the registered vault names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.vaults))
	for name := range m.vaults {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Resolve expands value through the named vault when it carries the
// VAULT: prefix; any other value passes through unchanged.
func (m *Manager) Resolve(ctx context.Context, vaultName, value string) (string, error) {
	key, ok := strings.CutPrefix(value, ReferencePrefix)
	if !ok {
		return value, nil
	}

	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, value)
	}

	v, err := m.Get(vaultName)
	if err != nil {
		return "", err
	}

	return v.Get(ctx, key)
}
