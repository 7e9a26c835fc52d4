package vault

import (
	"context"
	"os"
)

// EnvironmentName is the registry name of the environment vault.
const EnvironmentName = "VARIABLE"

// Environment reads and writes process environment variables.
type Environment struct{}

// NewEnvironment creates the environment vault.
func NewEnvironment() *Environment {
	return &Environment{}
}

// Name implements Vault.
func (e *Environment) Name() string {
	return EnvironmentName
}

// Get implements Vault.
func (e *Environment) Get(_ context.Context, key string) (string, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", &Error{Vault: EnvironmentName, Op: "get", Key: key, Err: ErrKeyNotFound}
	}

	return value, nil
}

// Set implements Vault.
func (e *Environment) Set(_ context.Context, key, value string) error {
	err := os.Setenv(key, value)
	if err != nil {
		return &Error{Vault: EnvironmentName, Op: "set", Key: key, Err: err}
	}

	return nil
}

// Delete implements Vault. Deleting an unset variable is not an error.
func (e *Environment) Delete(_ context.Context, key string) error {
	err := os.Unsetenv(key)
	if err != nil {
		return &Error{Vault: EnvironmentName, Op: "delete", Key: key, Err: err}
	}

	return nil
}
