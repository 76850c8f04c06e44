package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/semmy-space/wdc/internal/auth"
	"github.com/semmy-space/wdc/internal/config"
	"github.com/semmy-space/wdc/internal/output"
	"github.com/semmy-space/wdc/internal/secrets"
	"github.com/semmy-space/wdc/internal/wildduck"
)

// ServiceProvider lazily creates and caches the API client and its services.
type ServiceProvider struct {
	globals *Globals
	cfg     *config.Config
	logOut  io.Writer
	version string

	// newStore is swapped in tests.
	newStore func() (secrets.Store, error)

	once     sync.Once
	client   *wildduck.Client
	services *wildduck.Services
	err      error
}

// NewServiceProvider creates a ServiceProvider with the given flags and config.
func NewServiceProvider(globals *Globals, cfg *config.Config, logOut io.Writer, version string) *ServiceProvider {
	return &ServiceProvider{
		globals:  globals,
		cfg:      cfg,
		logOut:   logOut,
		version:  version,
		newStore: secrets.NewStore,
	}
}

// APIURL resolves the API base URL: flag or env, then config file, then the default.
func (sp *ServiceProvider) APIURL() (string, error) {
	apiURL, err := config.ResolveAPIURL(sp.globals.APIURL, sp.cfg.APIURL)
	if err != nil {
		return "", output.NewCLIError(output.ExitConfigError, err.Error()).
			WithHint("Use --api-url, WDC_API_URL or: wdc config set api_url <url>")
	}
	return apiURL, nil
}

// User returns the user id commands act on.
func (sp *ServiceProvider) User() string {
	return sp.globals.ResolvedUser(sp.cfg)
}

// Logger returns the request logger: debug records on stderr with --verbose, nothing otherwise.
func (sp *ServiceProvider) Logger() *slog.Logger {
	level := slog.LevelWarn
	if sp.globals.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(sp.logOut, &slog.HandlerOptions{Level: level}))
}

// TokenCache opens the session cache for the resolved API.
func (sp *ServiceProvider) TokenCache() (*auth.TokenCache, error) {
	apiURL, err := sp.APIURL()
	if err != nil {
		return nil, err
	}

	store, err := sp.newStore()
	if err != nil {
		return nil, &output.CLIError{
			ExitCode: output.ExitGeneral,
			Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
		}
	}

	tokenCache, err := auth.NewTokenCache(apiURL, store)
	if err != nil {
		return nil, &output.CLIError{
			ExitCode: output.ExitGeneral,
			Message:  fmt.Sprintf("Failed to initialize token cache: %v", err),
		}
	}
	return tokenCache, nil
}

// TokenSource returns the credential for API calls. An explicit token from
// --access-token or WDC_ACCESS_TOKEN wins over the session cache.
func (sp *ServiceProvider) TokenSource() (oauth2.TokenSource, error) {
	if sp.globals.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: sp.globals.AccessToken}), nil
	}
	return sp.TokenCache()
}

// NewClient builds a client for token against the resolved API.
func (sp *ServiceProvider) NewClient(token string) (*wildduck.Client, error) {
	apiURL, err := sp.APIURL()
	if err != nil {
		return nil, err
	}

	opts := []wildduck.Option{
		wildduck.WithLogger(sp.Logger()),
		wildduck.WithUserAgent("wdc/" + sp.version),
	}
	if limit := sp.globals.ResolvedRateLimit(sp.cfg); limit > 0 {
		opts = append(opts, wildduck.WithRateLimit(rate.Limit(limit), 1))
	}

	client, err := wildduck.NewClient(token, apiURL, opts...)
	if err != nil {
		return nil, output.FromAPIError(err, "create client")
	}
	return client, nil
}

// Client returns the authenticated client, creating it on first call.
func (sp *ServiceProvider) Client() (*wildduck.Client, error) {
	sp.once.Do(func() {
		ts, err := sp.TokenSource()
		if err != nil {
			sp.err = err
			return
		}

		token, err := ts.Token()
		if err != nil {
			var cliErr *output.CLIError
			if errors.As(err, &cliErr) && cliErr.ExitCode == output.ExitAuth && NeedsSetup(sp.cfg) {
				cliErr.Hint = "Run: wdc setup"
			}
			sp.err = err
			return
		}

		sp.client, sp.err = sp.NewClient(token.AccessToken)
		if sp.err == nil {
			sp.services = wildduck.NewServices(sp.client)
		}
	})
	return sp.client, sp.err
}

// Services returns every resource module over the authenticated client.
func (sp *ServiceProvider) Services() (*wildduck.Services, error) {
	if _, err := sp.Client(); err != nil {
		return nil, err
	}
	return sp.services, nil
}
