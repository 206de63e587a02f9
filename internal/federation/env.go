package federation

import (
	"context"
	"strings"

	"github.com/thand-io/britive/internal/apierror"
)

const (
	GitLabProviderName    = "gitlab"
	BitbucketProviderName = "bitbucket"
	SpaceliftProviderName = "spacelift"
	OIDCProviderName      = "oidc"

	DefaultOIDCTokenVariable = "BRITIVE_OIDC_TOKEN"
)

// envTokenProvider reads an OIDC token the platform has already placed in an
// environment variable.
type envTokenProvider struct {
	name     string
	variable string
	getenv   func(string) string
}

func (p *envTokenProvider) Name() string {
	return p.name
}

func (p *envTokenProvider) Token(ctx context.Context) (Token, error) {
	raw := strings.TrimSpace(p.getenv(p.variable))
	if len(raw) == 0 {
		return Token{}, apierror.New(apierror.KindFederationTokenUnavailable,
			"%s: environment variable %s is empty", p.name, p.variable)
	}
	return oidcToken(raw), nil
}

// envTokenFactory builds a provider reading fixed, or when argumentNamesVar
// is set, the variable named by the selector argument.
func envTokenFactory(name string, defaultVariable string, argumentNamesVar bool) Factory {
	return func(params Params) (Provider, error) {
		variable := defaultVariable
		if argumentNamesVar && len(params.Argument) > 0 {
			variable = params.Argument
		}
		return &envTokenProvider{
			name:     name,
			variable: variable,
			getenv:   params.getenv,
		}, nil
	}
}

func init() {
	Register(GitLabProviderName, envTokenFactory(GitLabProviderName, DefaultOIDCTokenVariable, true))
	Register(BitbucketProviderName, envTokenFactory(BitbucketProviderName, "BITBUCKET_STEP_OIDC_TOKEN", false))
	Register(SpaceliftProviderName, envTokenFactory(SpaceliftProviderName, "SPACELIFT_OIDC_TOKEN", false))
	Register(OIDCProviderName, envTokenFactory(OIDCProviderName, DefaultOIDCTokenVariable, true))
}
