package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInstallCommand(t *testing.T) {
	cmd := NewInstallCommand()
	assert.Equal(t, "install [PRODUCT]", cmd.Use)
	assert.Equal(t, []string{"installer"}, cmd.Aliases)
	assert.NotNil(t, cmd.RunE)

	for _, name := range []string{"product", "version", "no-recursive", "force", "providers", "accept-license"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestNewListCommand(t *testing.T) {
	cmd := NewListCommand()
	assert.Equal(t, "list", cmd.Use)
	assert.Equal(t, []string{"ls"}, cmd.Aliases)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("tree"))
}

func TestNewRepairCommand(t *testing.T) {
	cmd := NewRepairCommand()
	assert.Equal(t, "repair [PRODUCT]", cmd.Use)
	assert.NotNil(t, cmd.RunE)

	for _, name := range []string{"product", "version", "providers"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestNewVaultCommand(t *testing.T) {
	cmd := NewVaultCommand()
	assert.Equal(t, "vault", cmd.Use)

	for _, name := range []string{"vault", "nats-url", "nats-bucket"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "get")
	assert.Contains(t, names, "set")
	assert.Contains(t, names, "delete")
}

func TestNewSetupCommand(t *testing.T) {
	cmd := NewSetupCommand()
	assert.Equal(t, "setup", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.NotNil(t, cmd.Flags().Lookup("defaults"))
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3", "abc123", "2026-01-01")
	assert.Equal(t, "version", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}
