package provider

import (
	"os"

	"github.com/konverso-ai/kbot-installer/internal/constants"
	"github.com/konverso-ai/kbot-installer/internal/factory"
)

// Production source defaults.
const (
	DefaultGitHubBase       = "https://github.com"
	DefaultBitbucketBase    = "https://bitbucket.org"
	DefaultGitHubAccount    = "konverso-ai"
	DefaultBitbucketAccount = "konversoai"
	DefaultNexusDomain      = "nexus.konverso.ai"
)

// Config carries the connection settings for one provider source.
type Config struct {
	// Account is the git account or organization owning the repositories.
	Account string

	// Domain is the host of the nexus instance.
	Domain string

	// Repository is the nexus repository holding the product archives.
	Repository string

	// EnvVars list the environment variables carrying the source's
	// credentials.
	EnvVars []string

	// AuthParams map builder argument names to the environment variables
	// their values are read from.
	AuthParams map[string]string

	// CredentialsRequired disables the source while any of EnvVars is
	// unset. Git sources stay usable anonymously for public
	// repositories.
	CredentialsRequired bool

	// Branches are the fallback branches, tried in order. A requested
	// branch is tried first; without one only the first fallback is
	// used.
	Branches []string
}

// Configs maps provider names to their settings.
type Configs map[string]Config

// DefaultConfigs mirrors the production sources.
func DefaultConfigs() Configs {
	return Configs{
		"nexus": {
			Domain:              DefaultNexusDomain,
			Repository:          constants.DefaultNexusRepository,
			EnvVars:             []string{"NEXUS_USERNAME", "NEXUS_PASSWORD"},
			AuthParams:          map[string]string{"username": "NEXUS_USERNAME", "password": "NEXUS_PASSWORD"},
			CredentialsRequired: true,
			Branches:            []string{"master", "dev"},
		},
		"github": {
			Account:    DefaultGitHubAccount,
			EnvVars:    []string{"GITHUB_TOKEN"},
			AuthParams: map[string]string{"token": "GITHUB_TOKEN"},
			Branches:   []string{"main", "dev"},
		},
		"bitbucket": {
			Account:    DefaultBitbucketAccount,
			EnvVars:    []string{"BITBUCKET_USERNAME", "BITBUCKET_APP_PASSWORD"},
			AuthParams: map[string]string{"username": "BITBUCKET_USERNAME", "password": "BITBUCKET_APP_PASSWORD"},
			Branches:   []string{"master", "dev"},
		},
	}
}

// MissingCredentials returns the environment variables the source needs
// but that are unset.
func (c Config) MissingCredentials() []string {
	var missing []string

	for _, name := range c.EnvVars {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}

	return missing
}

// Args assembles the builder arguments for the source, resolving
// credentials from the environment. Unset credentials are left out so
// builders fall back to anonymous access.
func (c Config) Args() factory.Args {
	args := factory.Args{}

	if c.Account != "" {
		args["account"] = c.Account
	}

	if c.Domain != "" {
		args["domain"] = c.Domain
	}

	if c.Repository != "" {
		args["repository"] = c.Repository
	}

	for param, envVar := range c.AuthParams {
		if value := os.Getenv(envVar); value != "" {
			args[param] = value
		}
	}

	return args
}

// BranchesToTry returns the branches to attempt in order: the requested
// branch first when given, then the configured fallbacks. Without a
// request only the first fallback applies; without fallbacks the
// remote's default branch is used.
func (c Config) BranchesToTry(requested string) []string {
	if requested != "" {
		branches := []string{requested}

		for _, b := range c.Branches {
			if b != requested {
				branches = append(branches, b)
			}
		}

		return branches
	}

	if len(c.Branches) > 0 {
		return c.Branches[:1]
	}

	return []string{""}
}
