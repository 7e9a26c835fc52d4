package vault_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konverso-ai/kbot-installer/internal/vault"
)

func TestEnvironment(t *testing.T) {
	env := vault.NewEnvironment()
	ctx := context.Background()

	assert.Equal(t, "VARIABLE", env.Name())

	t.Run("get existing variable", func(t *testing.T) {
		t.Setenv("KBOT_TEST_SECRET", "s3cret")

		value, err := env.Get(ctx, "KBOT_TEST_SECRET")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", value)
	})

	t.Run("get missing variable", func(t *testing.T) {
		_, err := env.Get(ctx, "KBOT_TEST_DOES_NOT_EXIST")
		require.ErrorIs(t, err, vault.ErrKeyNotFound)

		vaultErr := &vault.Error{}
		require.ErrorAs(t, err, &vaultErr)
		assert.Equal(t, "VARIABLE", vaultErr.Vault)
		assert.Equal(t, "get", vaultErr.Op)
	})

	t.Run("set and delete", func(t *testing.T) {
		t.Setenv("KBOT_TEST_RW", "before")

		require.NoError(t, env.Set(ctx, "KBOT_TEST_RW", "after"))

		value, err := env.Get(ctx, "KBOT_TEST_RW")
		require.NoError(t, err)
		assert.Equal(t, "after", value)

		require.NoError(t, env.Delete(ctx, "KBOT_TEST_RW"))

		_, err = env.Get(ctx, "KBOT_TEST_RW")
		require.ErrorIs(t, err, vault.ErrKeyNotFound)
	})
}

func TestAlias(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("seeded values", func(t *testing.T) {
		t.Parallel()

		alias := vault.NewAlias(map[string]string{"db_password": "pg-pass"})

		value, err := alias.Get(ctx, "db_password")
		require.NoError(t, err)
		assert.Equal(t, "pg-pass", value)
	})

	t.Run("seed is copied", func(t *testing.T) {
		t.Parallel()

		seed := map[string]string{"key": "original"}
		alias := vault.NewAlias(seed)
		seed["key"] = "mutated"

		value, err := alias.Get(ctx, "key")
		require.NoError(t, err)
		assert.Equal(t, "original", value)
	})

	t.Run("set get delete", func(t *testing.T) {
		t.Parallel()

		alias := vault.NewAlias(nil)

		require.NoError(t, alias.Set(ctx, "token", "abc"))

		value, err := alias.Get(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "abc", value)

		require.NoError(t, alias.Delete(ctx, "token"))

		_, err = alias.Get(ctx, "token")
		require.ErrorIs(t, err, vault.ErrKeyNotFound)

		// Deleting again is idempotent.
		require.NoError(t, alias.Delete(ctx, "token"))
	})

	t.Run("keys are sorted", func(t *testing.T) {
		t.Parallel()

		alias := vault.NewAlias(map[string]string{"c": "3", "a": "1", "b": "2"})
		assert.Equal(t, []string{"a", "b", "c"}, alias.Keys())
	})
}

func TestManager(t *testing.T) {
	t.Run("default manager has environment and alias vaults", func(t *testing.T) {
		manager := vault.DefaultManager()
		assert.Equal(t, []string{"ALIAS", "VARIABLE"}, manager.Names())
	})

	t.Run("get unknown vault", func(t *testing.T) {
		manager := vault.DefaultManager()

		_, err := manager.Get("NATS")
		require.ErrorIs(t, err, vault.ErrUnknownVault)
	})

	t.Run("register replaces by name", func(t *testing.T) {
		manager := vault.NewManager()
		manager.Register(vault.NewAlias(map[string]string{"k": "v"}))

		v, err := manager.Get("ALIAS")
		require.NoError(t, err)

		value, err := v.Get(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, "v", value)
	})
}

func TestManager_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("plain values pass through", func(t *testing.T) {
		manager := vault.DefaultManager()

		value, err := manager.Resolve(ctx, "ALIAS", "not-a-reference")
		require.NoError(t, err)
		assert.Equal(t, "not-a-reference", value)
	})

	t.Run("reference is expanded", func(t *testing.T) {
		manager := vault.NewManager(vault.NewAlias(map[string]string{"db_password": "pg-pass"}))

		value, err := manager.Resolve(ctx, "ALIAS", "VAULT:db_password")
		require.NoError(t, err)
		assert.Equal(t, "pg-pass", value)
	})

	t.Run("reference through the environment vault", func(t *testing.T) {
		t.Setenv("KBOT_TEST_RESOLVE", "env-value")

		manager := vault.DefaultManager()

		value, err := manager.Resolve(ctx, "VARIABLE", "VAULT:KBOT_TEST_RESOLVE")
		require.NoError(t, err)
		assert.Equal(t, "env-value", value)
	})

	t.Run("missing key", func(t *testing.T) {
		manager := vault.NewManager(vault.NewAlias(nil))

		_, err := manager.Resolve(ctx, "ALIAS", "VAULT:absent")
		require.ErrorIs(t, err, vault.ErrKeyNotFound)
	})

	t.Run("empty reference", func(t *testing.T) {
		manager := vault.DefaultManager()

		_, err := manager.Resolve(ctx, "ALIAS", "VAULT:")
		require.ErrorIs(t, err, vault.ErrInvalidReference)
	})

	t.Run("unknown vault", func(t *testing.T) {
		manager := vault.DefaultManager()

		_, err := manager.Resolve(ctx, "NATS", "VAULT:key")
		require.ErrorIs(t, err, vault.ErrUnknownVault)
	})
}

func TestNewNATS_Validation(t *testing.T) {
	t.Parallel()

	_, err := vault.NewNATS(nil)
	require.ErrorIs(t, err, vault.ErrNATSURLRequired)

	_, err = vault.NewNATS(&vault.NATSConfig{})
	require.ErrorIs(t, err, vault.ErrNATSURLRequired)
}
