package factory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konverso-ai/kbot-installer/internal/factory"
)

var errBuildFailed = errors.New("build failed")

func TestRegistry_New(t *testing.T) {
	t.Parallel()
	t.Run("builds a registered component", func(t *testing.T) {
		t.Parallel()

		registry := factory.NewRegistry[string]()
		registry.Register("github", "provider", func(args factory.Args) (string, error) {
			account, err := args.String("account_name")
			if err != nil {
				return "", err
			}

			return "github:" + account, nil
		})

		component, err := registry.New("github", "provider", factory.Args{"account_name": "konverso-ai"})
		require.NoError(t, err)
		assert.Equal(t, "github:konverso-ai", component)
	})

	t.Run("unknown key", func(t *testing.T) {
		t.Parallel()

		registry := factory.NewRegistry[string]()

		_, err := registry.New("gitlab", "provider", nil)
		require.ErrorIs(t, err, factory.ErrNotFound)
		assert.Contains(t, err.Error(), "gitlab_provider")
		assert.Contains(t, err.Error(), "GitlabProvider")
	})

	t.Run("argument mismatch", func(t *testing.T) {
		t.Parallel()

		registry := factory.NewRegistry[string]()
		registry.Register("github", "provider", func(args factory.Args) (string, error) {
			_, err := args.String("account_name")
			if err != nil {
				return "", err
			}

			return "ok", nil
		})

		_, err := registry.New("github", "provider", factory.Args{})
		require.ErrorIs(t, err, factory.ErrInvalidArguments)
	})

	t.Run("builder failure is wrapped with the type name", func(t *testing.T) {
		t.Parallel()

		registry := factory.NewRegistry[string]()
		registry.Register("nexus", "provider", func(args factory.Args) (string, error) {
			return "", errBuildFailed
		})

		_, err := registry.New("nexus", "provider", nil)
		require.ErrorIs(t, err, errBuildFailed)
		assert.Contains(t, err.Error(), "NexusProvider")
	})
}

func TestRegistry_Register(t *testing.T) {
	t.Parallel()
	t.Run("duplicate registration panics", func(t *testing.T) {
		t.Parallel()

		registry := factory.NewRegistry[int]()
		registry.Register("env", "vault", func(args factory.Args) (int, error) { return 1, nil })

		assert.Panics(t, func() {
			registry.Register("env", "vault", func(args factory.Args) (int, error) { return 2, nil })
		})
	})

	t.Run("nil builder panics", func(t *testing.T) {
		t.Parallel()

		registry := factory.NewRegistry[int]()

		assert.Panics(t, func() {
			registry.Register("env", "vault", nil)
		})
	})
}

func TestRegistry_Keys(t *testing.T) {
	t.Parallel()

	registry := factory.NewRegistry[int]()
	registry.Register("nexus", "provider", func(args factory.Args) (int, error) { return 0, nil })
	registry.Register("bitbucket", "provider", func(args factory.Args) (int, error) { return 0, nil })
	registry.Register("github", "provider", func(args factory.Args) (int, error) { return 0, nil })

	assert.Equal(t, []string{"bitbucket_provider", "github_provider", "nexus_provider"}, registry.Keys())
}

func TestArgs(t *testing.T) {
	t.Parallel()

	args := factory.Args{"name": "kbot-core", "count": 3}

	t.Run("string", func(t *testing.T) {
		t.Parallel()

		value, err := args.String("name")
		require.NoError(t, err)
		assert.Equal(t, "kbot-core", value)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		_, err := args.String("missing")
		require.ErrorIs(t, err, factory.ErrInvalidArguments)
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()

		_, err := args.String("count")
		require.ErrorIs(t, err, factory.ErrInvalidArguments)
	})

	t.Run("string with fallback", func(t *testing.T) {
		t.Parallel()

		value, err := args.StringOr("missing", "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", value)

		value, err = args.StringOr("name", "fallback")
		require.NoError(t, err)
		assert.Equal(t, "kbot-core", value)
	})

	t.Run("raw value", func(t *testing.T) {
		t.Parallel()

		value, ok := args.Value("count")
		assert.True(t, ok)
		assert.Equal(t, 3, value)

		_, ok = args.Value("missing")
		assert.False(t, ok)
	})
}

func TestNaming(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		componentKey string
		pkg          string
		expectedKey  string
		expectedType string
	}{
		{name: "bare package", componentKey: "github", pkg: "provider", expectedKey: "github_provider", expectedType: "GithubProvider"},
		{name: "slash path", componentKey: "git", pkg: "internal/versioner", expectedKey: "git_versioner", expectedType: "GitVersioner"},
		{name: "dotted path", componentKey: "user_pass", pkg: "kbot.installer.auth", expectedKey: "user_pass_auth", expectedType: "UserPassAuth"},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expectedKey, factory.BuildKey(testCase.componentKey, testCase.pkg))
			assert.Equal(t, testCase.expectedType, factory.BuildTypeName(testCase.componentKey, testCase.pkg))
		})
	}

	assert.Equal(t, "NexusProvider", factory.SnakeToPascal("nexus_provider"))
	assert.Equal(t, "Alias", factory.SnakeToPascal("alias"))
	assert.Equal(t, "KeyPairAuth", factory.SnakeToPascal("key_pair_auth"))
}
