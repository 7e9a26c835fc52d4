package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/konverso-ai/kbot-installer/internal/factory"
)

// shortCauseLength caps the failure cause kept per attempt.
const shortCauseLength = 50

// Static errors for err113 compliance.
var (
	ErrNoProviders        = errors.New("no providers configured")
	ErrNotConfigured      = errors.New("provider has no configuration")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrAllFailed          = errors.New("all providers failed")
)

//nolint:gochecknoinits // Builder registration, mirrors database/sql driver registration.
func init() {
	Registry.Register("selector", "provider", func(args factory.Args) (Provider, error) {
		names, ok := args["providers"].([]string)
		if !ok {
			return nil, fmt.Errorf("%w: %q must be a []string, got %T",
				factory.ErrInvalidArguments, "providers", args["providers"])
		}

		configs, _ := args["configs"].(Configs)
		logger, _ := args["logger"].(Logger)

		return NewSelector(names, configs, logger), nil
	})
}

// Attempt records the outcome of one provider try.
type Attempt struct {
	Provider string
	Branch   string
	Err      error
}

// Cause returns the attempt's failure cause, reduced and truncated for
// display.
func (a Attempt) Cause() string {
	if a.Err == nil {
		return ""
	}

	return shortCause(a.Err.Error())
}

// Selector tries a list of providers in order until one serves the
// requested product. Sources whose required credentials are unset are
// skipped, and each source retries over its fallback branches before
// the next one is consulted.
type Selector struct {
	names   []string
	configs Configs
	logger  Logger

	// build is swapped in tests to inject fakes.
	build func(name string, args factory.Args) (Provider, error)
}

// NewSelector builds a selector over the named providers. Nil configs
// fall back to the production defaults.
func NewSelector(names []string, configs Configs, logger Logger) *Selector {
	if len(configs) == 0 {
		configs = DefaultConfigs()
	}

	return &Selector{
		names:   names,
		configs: configs,
		logger:  logger,
		build:   New,
	}
}

// Name implements Provider.
func (s *Selector) Name() string {
	return "selector"
}

// Fetch tries each provider in order and returns the first successful
// checkout. The target directory is wiped before every attempt so a
// partial checkout never bleeds into the next one. When every provider
// fails the error aggregates one cause per source.
//
//nolint:funlen // The provider and branch loops read better in one piece.
func (s *Selector) Fetch(ctx context.Context, repository, branch, target string) (*Fetched, error) {
	if len(s.names) == 0 {
		return nil, ErrNoProviders
	}

	var attempts []Attempt

	for _, name := range s.names {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetching %s: %w", repository, err)
		}

		cfg, ok := s.configs[name]
		if !ok {
			attempts = append(attempts, Attempt{Provider: name, Err: ErrNotConfigured})

			continue
		}

		if cfg.CredentialsRequired {
			if missing := cfg.MissingCredentials(); len(missing) > 0 {
				s.logDebug("provider skipped", map[string]interface{}{
					"provider": name,
					"missing":  strings.Join(missing, ", "),
				})
				attempts = append(attempts, Attempt{
					Provider: name,
					Err:      fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", ")),
				})

				continue
			}
		}

		p, err := s.build(name, cfg.Args())
		if err != nil {
			attempts = append(attempts, Attempt{Provider: name, Err: err})

			continue
		}

		fetched, attempt := s.fetchWithBranches(ctx, p, cfg, repository, branch, target)
		if fetched != nil {
			s.logInfo("product fetched", map[string]interface{}{
				"provider":   fetched.Provider,
				"repository": repository,
				"branch":     fetched.Branch,
			})

			return fetched, nil
		}

		attempts = append(attempts, attempt)
	}

	causes := make([]string, 0, len(attempts))
	for _, a := range attempts {
		causes = append(causes, fmt.Sprintf("%s: %s", a.Provider, a.Cause()))
	}

	return nil, fmt.Errorf("%w for %q: %s", ErrAllFailed, repository, strings.Join(causes, "; "))
}

// fetchWithBranches runs one provider over its branch fallbacks. It
// returns either the successful fetch or the attempt with the last
// error.
func (s *Selector) fetchWithBranches(ctx context.Context, p Provider, cfg Config, repository, branch, target string) (*Fetched, Attempt) {
	attempt := Attempt{Provider: p.Name()}

	for _, b := range cfg.BranchesToTry(branch) {
		if err := os.RemoveAll(target); err != nil {
			attempt.Err = fmt.Errorf("cleaning target: %w", err)

			return nil, attempt
		}

		fetched, err := p.Fetch(ctx, repository, b, target)
		if err == nil {
			return fetched, attempt
		}

		attempt.Branch = b
		attempt.Err = err
		s.logWarn("fetch attempt failed", map[string]interface{}{
			"provider":   p.Name(),
			"repository": repository,
			"branch":     b,
			"error":      err.Error(),
		})

		if !branchRetryable(err) || ctx.Err() != nil {
			break
		}
	}

	return nil, attempt
}

// RemoteExists reports whether any usable provider hosts the
// repository. Probe failures are treated as absence.
func (s *Selector) RemoteExists(ctx context.Context, repository string) (bool, error) {
	for _, name := range s.names {
		cfg, ok := s.configs[name]
		if !ok {
			continue
		}

		if cfg.CredentialsRequired && len(cfg.MissingCredentials()) > 0 {
			continue
		}

		p, err := s.build(name, cfg.Args())
		if err != nil {
			continue
		}

		found, err := p.RemoteExists(ctx, repository)
		if err == nil && found {
			return true, nil
		}
	}

	return false, nil
}

// branchRetryable reports whether an error looks like a missing branch
// or version, in which case the next fallback branch is worth trying.
// Other failures move straight to the next provider.
func branchRetryable(err error) bool {
	msg := strings.ToLower(err.Error())

	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "reference") ||
		strings.Contains(msg, "branch") ||
		strings.Contains(msg, "status 404")
}

// shortCause reduces an error message to its most specific part and
// caps its length for table display.
func shortCause(message string) string {
	if i := strings.LastIndex(message, ": "); i >= 0 {
		message = message[i+2:]
	}

	if len(message) > shortCauseLength {
		message = message[:shortCauseLength] + "..."
	}

	return message
}

func (s *Selector) logDebug(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, fields)
	}
}

func (s *Selector) logInfo(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}

func (s *Selector) logWarn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
