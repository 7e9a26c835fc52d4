package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/konverso-ai/kbot-installer/internal/constants"
	"github.com/konverso-ai/kbot-installer/internal/factory"
	"github.com/konverso-ai/kbot-installer/pkg/rest"
)

// defaultBranch is assumed when a nexus fetch does not request one.
const defaultBranch = "master"

//nolint:gochecknoinits // Builder registration, mirrors database/sql driver registration.
func init() {
	Registry.Register("nexus", "provider", func(args factory.Args) (Provider, error) {
		domain, err := args.StringOr("domain", DefaultNexusDomain)
		if err != nil {
			return nil, err
		}

		repository, err := args.StringOr("repository", "")
		if err != nil {
			return nil, err
		}

		username, err := args.StringOr("username", "")
		if err != nil {
			return nil, err
		}

		password, err := args.StringOr("password", "")
		if err != nil {
			return nil, err
		}

		logger, _ := args["logger"].(Logger)

		return NewNexus(NexusConfig{
			BaseURL:    domain,
			Repository: repository,
			Username:   username,
			Password:   password,
			Logger:     logger,
		})
	})
}

// NexusConfig configures the connection to a Nexus instance.
type NexusConfig struct {
	// BaseURL of the instance. A bare host gets an https scheme.
	BaseURL string

	// Repository is the raw repository holding the product archives.
	// Empty defaults to the production repository.
	Repository string

	// Username and Password authenticate the API and download requests.
	// Both empty means anonymous access.
	Username string
	Password string

	// Timeout bounds each request, archive downloads included. Zero
	// defaults to the extended timeout.
	Timeout time.Duration

	// Logger receives the transport's debug logs.
	Logger Logger

	// Debug enables request and response logging.
	Debug bool
}

// NexusProvider downloads product archives from a Nexus raw repository.
//
// The build pipeline publishes one archive per product and branch under
// {branch}/{product}/{product}_latest.tar.gz; fetching a product means
// downloading that archive and unpacking it into the target directory.
type NexusProvider struct {
	client     *rest.Client
	repository string
}

// NewNexus builds a provider for the configured Nexus instance.
func NewNexus(cfg NexusConfig) (*NexusProvider, error) {
	if cfg.Repository == "" {
		cfg.Repository = constants.DefaultNexusRepository
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.ExtendedHTTPTimeout
	}

	var credentials rest.Auth = rest.NoAuth{}
	if cfg.Username != "" {
		credentials = rest.BasicAuth{Username: cfg.Username, Password: cfg.Password}
	}

	client, err := rest.New(&rest.Config{
		BaseURL: cfg.BaseURL,
		Auth:    credentials,
		Timeout: cfg.Timeout,
		Logger:  cfg.Logger,
		Debug:   cfg.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("building nexus client: %w", err)
	}

	return &NexusProvider{client: client, repository: cfg.Repository}, nil
}

// Name implements Provider.
func (n *NexusProvider) Name() string {
	return "nexus"
}

// Repository returns the nexus repository the provider reads from.
func (n *NexusProvider) Repository() string {
	return n.repository
}

// Fetch downloads the archive published for the branch and unpacks it
// into target.
func (n *NexusProvider) Fetch(ctx context.Context, repository, branch, target string) (*Fetched, error) {
	if branch == "" {
		branch = defaultBranch
	}

	archive := repository + "_latest.tar.gz"

	resp, err := n.client.Path("repository", n.repository, branch, repository, archive).Get(ctx)
	if err != nil {
		return nil, &Error{Provider: "nexus", Repository: repository, Err: err}
	}

	if err := extractTarGz(resp.Body, target); err != nil {
		return nil, &Error{Provider: "nexus", Repository: repository, Err: err}
	}

	return &Fetched{Provider: "nexus", Branch: branch}, nil
}

// Asset describes one file in the nexus repository listing.
type Asset struct {
	ID           string            `json:"id"`
	Path         string            `json:"path"`
	DownloadURL  string            `json:"downloadUrl"`
	Format       string            `json:"format"`
	ContentType  string            `json:"contentType"`
	LastModified string            `json:"lastModified"`
	FileSize     int64             `json:"fileSize"`
	Checksum     map[string]string `json:"checksum"`
}

type assetPage struct {
	Items             []Asset `json:"items"`
	ContinuationToken string  `json:"continuationToken"`
}

// ListAssets pages through the repository listing and returns every
// published asset. Nexus caps each page and hands out a continuation
// token until the listing is exhausted.
func (n *NexusProvider) ListAssets(ctx context.Context) ([]Asset, error) {
	var assets []Asset

	token := ""

	for {
		chain := n.client.Path("service", "rest", "v1", "assets").
			Query("repository", n.repository)

		if token != "" {
			chain = chain.Query("continuationToken", token)
		}

		resp, err := chain.Get(ctx)
		if err != nil {
			return nil, &Error{Provider: "nexus", Repository: n.repository, Err: err}
		}

		var page assetPage
		if err := resp.JSON(&page); err != nil {
			return nil, &Error{Provider: "nexus", Repository: n.repository, Err: err}
		}

		assets = append(assets, page.Items...)

		if page.ContinuationToken == "" {
			return assets, nil
		}

		token = page.ContinuationToken
	}
}

// RemoteExists reports whether any published asset belongs to the
// repository's folder.
func (n *NexusProvider) RemoteExists(ctx context.Context, repository string) (bool, error) {
	assets, err := n.ListAssets(ctx)
	if err != nil {
		return false, err
	}

	needle := "/" + repository + "/"

	for _, asset := range assets {
		if strings.Contains("/"+asset.Path, needle) {
			return true, nil
		}
	}

	return false, nil
}
