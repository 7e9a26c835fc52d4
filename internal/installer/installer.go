// Package installer orchestrates product installation into a work area.
//
// The service fetches products through a provider selector, walks their
// parent declarations to pull dependencies, and exposes each checkout in
// the shared directory through the linker. Every product touched during a
// run is reported in a Result, which the CLI renders as a table.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/konverso-ai/kbot-installer/internal/constants"
	"github.com/konverso-ai/kbot-installer/internal/linker"
	"github.com/konverso-ai/kbot-installer/internal/product"
	"github.com/konverso-ai/kbot-installer/internal/provider"
)

// SelfName is the product name of the installer itself. It is never
// fetched or removed, even when a descriptor declares it as a parent.
const SelfName = "kbot-installer"

// Static errors for err113 compliance.
var (
	ErrWorkAreaRequired = errors.New("work area directory is required")
	ErrFetcherRequired  = errors.New("a provider fetcher is required")
	ErrNotInstalled     = errors.New("product is not installed")
)

// Fetcher places a product checkout at a local path. The provider
// selector is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, repository, branch, target string) (*provider.Fetched, error)
}

// Logger matches the logging interface shared across the installer's
// packages.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config assembles a Service.
type Config struct {
	// WorkArea is the directory products are installed into, one folder
	// per product.
	WorkArea string

	// Fetcher serves product checkouts, usually the provider selector.
	Fetcher Fetcher

	// Linker exposes checkouts in the shared directory. Optional; without
	// one no links are maintained.
	Linker *linker.Linker

	// Logger receives progress messages. Optional.
	Logger Logger
}

// Options tune a single Install run.
type Options struct {
	// IncludeDependencies walks parent declarations and installs every
	// dependency that is not present yet.
	IncludeDependencies bool

	// Force reinstalls products that are already present instead of
	// skipping them.
	Force bool
}

// Service installs, lists and repairs products in one work area.
type Service struct {
	workArea string
	fetcher  Fetcher
	linker   *linker.Linker
	logger   Logger
}

// New validates the configuration and creates a service.
func New(config Config) (*Service, error) {
	if config.WorkArea == "" {
		return nil, ErrWorkAreaRequired
	}

	if config.Fetcher == nil {
		return nil, ErrFetcherRequired
	}

	return &Service{
		workArea: config.WorkArea,
		fetcher:  config.Fetcher,
		linker:   config.Linker,
		logger:   config.Logger,
	}, nil
}

// WorkArea returns the directory the service installs into.
func (s *Service) WorkArea() string {
	return s.workArea
}

// Install fetches a product at the given version and, when requested, its
// transitive dependencies. Every product touched is reported in the
// results. The returned error is non-nil only when the requested product
// itself could not be installed; dependency failures are recorded in
// their results and the run continues.
func (s *Service) Install(ctx context.Context, name, version string, opts Options) (Results, error) {
	if err := os.MkdirAll(s.workArea, constants.WorkAreaDirPerm); err != nil {
		return nil, fmt.Errorf("creating work area: %w", err)
	}

	branch := VersionToBranch(version)

	s.logInfo("installing product", map[string]interface{}{
		"product":      name,
		"version":      version,
		"branch":       branch,
		"dependencies": opts.IncludeDependencies,
	})

	run := &installRun{
		service: s,
		branch:  branch,
		opts:    opts,
		seen:    map[string]bool{},
	}

	if err := run.install(ctx, name, true); err != nil {
		return run.results, err
	}

	return run.results, nil
}

// installRun carries the state of one Install walk. The seen set guards
// against dependency cycles: each product is visited at most once.
type installRun struct {
	service *Service
	branch  string
	opts    Options
	seen    map[string]bool
	results Results
}

// install places one product and recurses into its parents. root marks
// the product the run was started for; only its failure aborts the walk.
func (r *installRun) install(ctx context.Context, name string, root bool) error {
	if r.seen[name] {
		return nil
	}

	r.seen[name] = true

	if name == SelfName {
		r.results = append(r.results, Result{
			Product: name, Provider: "self", Status: StatusSkipped, Details: "self-installation skipped",
		})

		return nil
	}

	target := filepath.Join(r.service.workArea, name)

	switch {
	case !r.opts.Force && r.service.isInstalled(name):
		r.results = append(r.results, Result{
			Product: name, Provider: "cached", Status: StatusSkipped, Details: "already installed",
		})
	default:
		fetched, err := r.service.fetcher.Fetch(ctx, name, r.branch, target)
		if err != nil {
			r.results = append(r.results, Result{
				Product: name, Status: StatusError, Details: err.Error(),
			})

			if root {
				return fmt.Errorf("installing %s: %w", name, err)
			}

			r.service.logWarn("dependency failed", map[string]interface{}{
				"product": name,
				"error":   err.Error(),
			})

			return nil
		}

		r.results = append(r.results, Result{
			Product:  name,
			Provider: fetched.Provider,
			Branch:   fetched.Branch,
			Status:   StatusSuccess,
		})
	}

	if err := r.service.link(name, target); err != nil {
		r.service.logWarn("linking failed", map[string]interface{}{
			"product": name,
			"error":   err.Error(),
		})
	}

	if !r.opts.IncludeDependencies {
		return nil
	}

	for _, parent := range r.service.parentsOf(name) {
		if err := r.install(ctx, parent, false); err != nil {
			return err
		}
	}

	return nil
}

// List loads the descriptors of every installed product.
func (s *Service) List(_ context.Context) (*product.Collection, error) {
	if _, err := os.Stat(s.workArea); errors.Is(err, os.ErrNotExist) {
		return product.NewCollection(), nil
	}

	collection, err := product.LoadDir(s.workArea)
	if err != nil {
		return nil, err
	}

	return collection, nil
}

// Repair restores an installed product: a missing or empty checkout is
// fetched again at the given version, and the product's shared links are
// recreated. Broken links of other products found along the way are
// relinked too when their checkouts exist.
func (s *Service) Repair(ctx context.Context, name, version string) (Results, error) {
	var results Results

	target := filepath.Join(s.workArea, name)

	if s.isInstalled(name) {
		results = append(results, Result{
			Product: name, Provider: "cached", Status: StatusSkipped, Details: "checkout intact",
		})
	} else {
		if version == "" {
			return nil, fmt.Errorf("%w: %s, pass a version to reinstall it", ErrNotInstalled, name)
		}

		if err := os.RemoveAll(target); err != nil {
			return nil, fmt.Errorf("removing damaged checkout: %w", err)
		}

		fetched, err := s.fetcher.Fetch(ctx, name, VersionToBranch(version), target)
		if err != nil {
			results = append(results, Result{Product: name, Status: StatusError, Details: err.Error()})

			return results, fmt.Errorf("repairing %s: %w", name, err)
		}

		results = append(results, Result{
			Product:  name,
			Provider: fetched.Provider,
			Branch:   fetched.Branch,
			Status:   StatusSuccess,
		})
	}

	if err := s.link(name, target); err != nil {
		return results, err
	}

	relinked, err := s.repairLinks()
	if err != nil {
		return results, err
	}

	results = append(results, relinked...)

	return results, nil
}

// repairLinks recreates broken shared links whose checkouts still exist
// and removes the ones whose checkouts are gone.
func (s *Service) repairLinks() (Results, error) {
	if s.linker == nil {
		return nil, nil
	}

	broken, err := s.linker.Verify()
	if err != nil {
		return nil, err
	}

	var results Results

	for _, name := range broken {
		checkout := filepath.Join(s.workArea, name)

		if s.isInstalled(name) {
			if err := s.linker.Link(name, checkout); err != nil {
				return results, err
			}

			results = append(results, Result{Product: name, Status: StatusSuccess, Details: "relinked"})

			continue
		}

		if err := s.linker.Unlink(name); err != nil {
			return results, err
		}

		results = append(results, Result{Product: name, Status: StatusSkipped, Details: "stale link removed"})
	}

	return results, nil
}

// isInstalled reports whether a product folder exists and is not empty.
func (s *Service) isInstalled(name string) bool {
	entries, err := os.ReadDir(filepath.Join(s.workArea, name))

	return err == nil && len(entries) > 0
}

// parentsOf returns the parent declarations of an installed product. A
// checkout without a readable descriptor has no dependencies.
func (s *Service) parentsOf(name string) []string {
	p, err := product.FromDir(filepath.Join(s.workArea, name))
	if err != nil {
		s.logDebug("no descriptor", map[string]interface{}{
			"product": name,
			"error":   err.Error(),
		})

		return nil
	}

	return p.Parents
}

func (s *Service) link(name, target string) error {
	if s.linker == nil {
		return nil
	}

	return s.linker.Link(name, target)
}

func (s *Service) logDebug(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, fields)
	}
}

func (s *Service) logInfo(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, fields)
	}
}

func (s *Service) logWarn(msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, fields)
	}
}
