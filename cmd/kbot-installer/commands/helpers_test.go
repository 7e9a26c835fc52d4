package commands

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviders(t *testing.T) {
	t.Run("empty uses the default order", func(t *testing.T) {
		providers, err := parseProviders("")
		require.NoError(t, err)
		assert.Equal(t, []string{"nexus", "github", "bitbucket"}, providers)
	})

	t.Run("splits and normalizes", func(t *testing.T) {
		providers, err := parseProviders(" GitHub, bitbucket ")
		require.NoError(t, err)
		assert.Equal(t, []string{"github", "bitbucket"}, providers)
	})

	t.Run("single provider", func(t *testing.T) {
		providers, err := parseProviders("nexus")
		require.NoError(t, err)
		assert.Equal(t, []string{"nexus"}, providers)
	})

	t.Run("unknown provider fails", func(t *testing.T) {
		_, err := parseProviders("gitlab")
		require.ErrorIs(t, err, ErrInvalidProvider)
		assert.Contains(t, err.Error(), "gitlab")
	})

	t.Run("only separators falls back to the defaults", func(t *testing.T) {
		providers, err := parseProviders(" , ,")
		require.NoError(t, err)
		assert.Equal(t, []string{"nexus", "github", "bitbucket"}, providers)
	})
}

func TestOutputFormat(t *testing.T) {
	viper.Set("output", "")

	t.Cleanup(func() { viper.Set("output", "table") })

	assert.Equal(t, OutputFormatTable, outputFormat())

	viper.Set("output", "json")
	assert.Equal(t, OutputFormatJSON, outputFormat())
}

func TestWorkAreaDir(t *testing.T) {
	viper.Set("workarea", "/opt/kbot")

	t.Cleanup(func() { viper.Set("workarea", "") })

	dir, err := workAreaDir()
	require.NoError(t, err)
	assert.Equal(t, "/opt/kbot", dir)
}
