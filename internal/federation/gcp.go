package federation

import (
	"context"
	"net/url"

	"cloud.google.com/go/compute/metadata"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"

	"github.com/thand-io/britive/internal/apierror"
)

const GcpProviderName = "gcp"

// gcpProvider fetches a Google-signed identity token for the audience. On
// Google runtimes the metadata server issues it; elsewhere application
// default credentials (a service account key) are used.
type gcpProvider struct {
	audience string

	onGCE        func() bool
	fromMetadata func(ctx context.Context, audience string) (string, error)
	newSource    func(ctx context.Context, audience string) (oauth2.TokenSource, error)
	source       oauth2.TokenSource
}

func newGcpProvider(params Params) (Provider, error) {
	audience := params.Argument
	if len(audience) == 0 {
		if len(params.Tenant) == 0 {
			return nil, apierror.New(apierror.KindInvalidFederationProvider,
				"gcp federation needs an audience, e.g. gcp-<audience>")
		}
		audience = "https://" + params.Tenant
	}

	return &gcpProvider{
		audience:     audience,
		onGCE:        metadata.OnGCE,
		fromMetadata: metadataIdentity,
		newSource:    adcIdentitySource,
	}, nil
}

func (p *gcpProvider) Name() string {
	return GcpProviderName
}

func (p *gcpProvider) Token(ctx context.Context) (Token, error) {
	if p.onGCE() {
		raw, err := p.fromMetadata(ctx, p.audience)
		if err != nil {
			return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "gcp: metadata identity request failed")
		}
		return oidcToken(raw), nil
	}

	if p.source == nil {
		source, err := p.newSource(ctx, p.audience)
		if err != nil {
			return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "gcp: no application default credentials")
		}
		p.source = oauth2.ReuseTokenSource(nil, source)
	}

	token, err := p.source.Token()
	if err != nil {
		return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "gcp: identity token request failed")
	}

	// idtoken places the signed ID token in AccessToken
	return oidcToken(token.AccessToken), nil
}

func metadataIdentity(ctx context.Context, audience string) (string, error) {
	return metadata.GetWithContext(ctx,
		"instance/service-accounts/default/identity?audience="+url.QueryEscape(audience)+"&format=full")
}

func adcIdentitySource(ctx context.Context, audience string) (oauth2.TokenSource, error) {
	return idtoken.NewTokenSource(ctx, audience)
}

func init() {
	Register(GcpProviderName, newGcpProvider)
}
