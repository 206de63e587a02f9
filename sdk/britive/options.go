package britive

import (
	"context"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Options configures a Client. Exactly one credential source is used, in
// this order: Federation, Token, then the TokenEnvVar environment variable.
type Options struct {
	// Tenant is a short tenant name ("acme") or a full host.
	Tenant string

	Token string
	// TokenEnvVar defaults to BRITIVE_API_TOKEN.
	TokenEnvVar string

	// Federation is a provider selector such as "aws", "github-<audience>",
	// "azureumi-<client-id>|<audience>" or "auto".
	Federation         string
	FederationDuration time.Duration
	// FederationConfig holds provider settings such as an AWS region.
	FederationConfig map[string]any

	CABundle string
	// NoVerify disables TLS verification. Honoured for .dev. tenants only.
	NoVerify bool

	// QueryFeatures fetches the tenant feature flags during New.
	QueryFeatures bool

	MaxRetries        int
	BackoffBase       time.Duration
	RequestsPerSecond float64
	Registerer        prometheus.Registerer

	// LookupHost replaces DNS resolution of the tenant host.
	LookupHost func(ctx context.Context, host string) ([]string, error)
	// HTTPTransport replaces the default TLS transport.
	HTTPTransport http.RoundTripper

	// UseLegacyLayout selects the v1 approval endpoints.
	UseLegacyLayout bool
}

func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Tenant, validation.Required),
		validation.Field(&o.FederationDuration, validation.Min(time.Duration(0))),
		validation.Field(&o.BackoffBase, validation.Min(time.Duration(0))),
		validation.Field(&o.RequestsPerSecond, validation.Min(0.0)),
	)
}
