// Package commands implements the kbot-installer CLI commands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/konverso-ai/kbot-installer/internal/constants"
	"github.com/konverso-ai/kbot-installer/internal/installer"
	"github.com/konverso-ai/kbot-installer/internal/linker"
	"github.com/konverso-ai/kbot-installer/internal/logging"
	"github.com/konverso-ai/kbot-installer/internal/provider"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

// SharedDirName is the work-area subdirectory holding the product links.
const SharedDirName = "shared"

// Static errors for err113 compliance.
var (
	// ErrInvalidProvider reports an unknown provider name on the command line.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrLicenseDeclined aborts an install when the license agreement is
	// not accepted.
	ErrLicenseDeclined = errors.New("license agreement declined")
)

// defaultProviders is the order sources are tried in when --providers is
// not given.
//
//nolint:gochecknoglobals // Command-line default shared by install and repair
var defaultProviders = []string{"nexus", "github", "bitbucket"}

// outputFormat returns the requested output format, defaulting to table.
func outputFormat() string {
	format := viper.GetString("output")
	if format == "" {
		return OutputFormatTable
	}

	return format
}

// encodeStructured writes v to stdout as JSON or YAML.
func encodeStructured(format string, v interface{}) error {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", constants.ErrUnknownOutputFormat, format)
	}

	return nil
}

// newLogger builds the CLI logger. Verbose runs log debug output in the
// console format; quiet runs only surface warnings.
func newLogger() *logging.Logger {
	level := zerolog.WarnLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}

	return logging.New(os.Stderr, level, true)
}

// workAreaDir resolves the work area, defaulting to $HOME/dev/installer.
func workAreaDir() (string, error) {
	if dir := viper.GetString("workarea"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", installer.ErrWorkAreaRequired, err)
	}

	return filepath.Join(home, "dev", "installer"), nil
}

// parseProviders splits a comma-separated provider list and validates
// each name. An empty value yields the default order.
func parseProviders(value string) ([]string, error) {
	if value == "" {
		return defaultProviders, nil
	}

	known := map[string]bool{}
	for _, name := range defaultProviders {
		known[name] = true
	}

	var names []string

	for _, name := range strings.Split(value, ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		if !known[name] {
			return nil, fmt.Errorf("%w: %q (valid: %s)",
				ErrInvalidProvider, name, strings.Join(defaultProviders, ", "))
		}

		names = append(names, name)
	}

	if len(names) == 0 {
		return defaultProviders, nil
	}

	return names, nil
}

// newService assembles the installer service over the given providers.
func newService(providers []string) (*installer.Service, error) {
	workArea, err := workAreaDir()
	if err != nil {
		return nil, err
	}

	logger := newLogger()

	service, err := installer.New(installer.Config{
		WorkArea: workArea,
		Fetcher:  provider.NewSelector(providers, nil, logger),
		Linker:   linker.New(filepath.Join(workArea, SharedDirName)),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	return service, nil
}

// renderResults writes an installation run in the requested format,
// followed by the one-line summary on table output.
func renderResults(results installer.Results) error {
	switch format := outputFormat(); format {
	case OutputFormatJSON, OutputFormatYAML:
		return encodeStructured(format, results)
	case OutputFormatTable:
		if len(results) > 0 {
			if err := results.RenderTable(os.Stdout); err != nil {
				return err
			}
		}

		fmt.Println(results.Summary())

		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrUnknownOutputFormat, format)
	}
}
