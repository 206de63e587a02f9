package britive

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/api"
	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/common"
	"github.com/thand-io/britive/internal/config"
	"github.com/thand-io/britive/internal/credentials"
	"github.com/thand-io/britive/internal/federation"
	"github.com/thand-io/britive/internal/models"
	"github.com/thand-io/britive/internal/tenant"
	"github.com/thand-io/britive/internal/transport"
	"github.com/thand-io/britive/internal/workflows"
)

const featuresPath = "features"

// Client is a tenant bound handle on the API. A Client is not safe for
// concurrent use; create one per goroutine that needs its own session.
type Client struct {
	id        uuid.UUID
	host      string
	transport *transport.Transport
	api       *api.Client
	engine    *workflows.Engine
	features  models.BasicConfig
}

// New resolves the tenant, selects a credential source and builds the
// transport.
func New(ctx context.Context, opts Options) (*Client, error) {
	config.EnableRedaction()

	if len(strings.TrimSpace(opts.Tenant)) == 0 {
		return nil, apierror.New(apierror.KindTenantMissing, "no tenant provided")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client options: %w", err)
	}

	resolver := tenant.NewResolver()
	if opts.LookupHost != nil {
		resolver.Lookup = opts.LookupHost
	}

	host, err := resolver.ResolveHost(ctx, opts.Tenant)
	if err != nil {
		return nil, err
	}

	source, err := credentialSource(opts, host)
	if err != nil {
		return nil, err
	}

	tr, err := transport.New(transport.Config{
		Host:              host,
		Credentials:       source,
		CABundle:          opts.CABundle,
		NoVerify:          opts.NoVerify,
		MaxRetries:        opts.MaxRetries,
		BackoffBase:       opts.BackoffBase,
		RequestsPerSecond: opts.RequestsPerSecond,
		Registerer:        opts.Registerer,
		UserAgent:         common.UserAgent(),
		HTTPTransport:     opts.HTTPTransport,
	})
	if err != nil {
		return nil, err
	}

	layout := workflows.LayoutCurrent
	if opts.UseLegacyLayout {
		layout = workflows.LayoutLegacy
	}

	apiClient := api.New(tenant.BaseURL(host), tr)

	client := &Client{
		id:        uuid.New(),
		host:      host,
		transport: tr,
		api:       apiClient,
		engine:    workflows.NewEngine(apiClient, layout),
	}

	if opts.QueryFeatures {
		if client.features, err = client.fetchFeatures(ctx); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"client":  client.id,
		"tenant":  host,
		"version": common.GetVersion(),
	}).Debugln("Client created")

	return client, nil
}

// NewFromEnvironment builds a client from BRITIVE_* environment variables
// and an optional .env file.
func NewFromEnvironment(ctx context.Context) (*Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	duration, err := cfg.FederationDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid federation duration: %w", err)
	}

	return New(ctx, Options{
		Tenant:             cfg.Tenant,
		Token:              cfg.Token,
		Federation:         cfg.Federation.Provider,
		FederationDuration: duration,
		FederationConfig: map[string]any{
			"imds_disable": cfg.Federation.IMDSDisable,
		},
		CABundle:          cfg.CABundle,
		NoVerify:          cfg.NoVerifySSL,
		MaxRetries:        cfg.Transport.MaxRetries,
		BackoffBase:       cfg.Transport.BackoffBase,
		RequestsPerSecond: cfg.Transport.RequestsPerSecond,
	})
}

func credentialSource(opts Options, host string) (credentials.Source, error) {
	switch {
	case len(strings.TrimSpace(opts.Federation)) > 0:
		providerConfig := models.BasicConfig(opts.FederationConfig)
		provider, err := federation.Create(opts.Federation, federation.Params{
			Tenant:   tenant.Name(host),
			Duration: opts.FederationDuration,
			Config:   &providerConfig,
		})
		if err != nil {
			return nil, err
		}
		return credentials.Federated(provider), nil
	case len(strings.TrimSpace(opts.Token)) > 0:
		return credentials.Static(opts.Token)
	default:
		return credentials.FromEnv(opts.TokenEnvVar)
	}
}

func (c *Client) ID() uuid.UUID {
	return c.id
}

// Tenant returns the resolved tenant host.
func (c *Client) Tenant() string {
	return c.host
}

func (c *Client) BaseURL() string {
	return c.api.BaseURL()
}

// Features returns the flags fetched at construction, or nil when
// QueryFeatures was not set.
func (c *Client) Features() models.BasicConfig {
	return c.features
}

func (c *Client) FeatureEnabled(name string) bool {
	return c.features.Enabled(name)
}

func (c *Client) fetchFeatures(ctx context.Context) (models.BasicConfig, error) {
	result, err := c.api.GetPage(ctx, featuresPath, nil)
	if err != nil {
		return nil, err
	}

	features := models.BasicConfig{}

	switch v := result.(type) {
	case map[string]any:
		for name, value := range v {
			features[name] = value
		}
	case []any:
		for _, item := range v {
			switch f := item.(type) {
			case string:
				features[f] = true
			case map[string]any:
				name, _ := f["name"].(string)
				if len(name) == 0 {
					continue
				}
				if enabled, ok := f["enabled"]; ok {
					features[name] = enabled
				} else {
					features[name] = true
				}
			}
		}
	}

	return features, nil
}

// Get fetches path relative to the API base and merges every page.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (any, error) {
	return c.api.Get(ctx, path, query)
}

func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (any, error) {
	return c.api.Post(ctx, path, query, body)
}

func (c *Client) Put(ctx context.Context, path string, query url.Values, body any) (any, error) {
	return c.api.Put(ctx, path, query, body)
}

func (c *Client) Patch(ctx context.Context, path string, query url.Values, body any) (any, error) {
	return c.api.Patch(ctx, path, query, body)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values, body any) (any, error) {
	return c.api.Delete(ctx, path, query, body)
}

func (c *Client) Upload(ctx context.Context, path string, query url.Values, body *models.MultipartBody) (any, error) {
	return c.api.Upload(ctx, path, query, body)
}

func (c *Client) Download(ctx context.Context, path string, query url.Values) (*models.FileDownload, error) {
	return c.api.Download(ctx, path, query)
}
