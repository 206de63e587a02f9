package federation

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/common"
)

const GitHubProviderName = "github"

// githubProvider asks the Actions runtime for an OIDC token. The job needs
// the id-token: write permission for the request variables to be present.
type githubProvider struct {
	audience string
	getenv   func(string) string
	client   *resty.Client
}

func newGitHubProvider(params Params) (Provider, error) {
	return &githubProvider{
		audience: params.Argument,
		getenv:   params.getenv,
		client:   resty.New().SetTimeout(30 * time.Second),
	}, nil
}

func (p *githubProvider) Name() string {
	return GitHubProviderName
}

func (p *githubProvider) Token(ctx context.Context) (Token, error) {
	requestURL := p.getenv("ACTIONS_ID_TOKEN_REQUEST_URL")
	requestToken := p.getenv("ACTIONS_ID_TOKEN_REQUEST_TOKEN")

	if len(requestURL) == 0 || len(requestToken) == 0 {
		return Token{}, apierror.New(apierror.KindFederationTokenUnavailable,
			"github: ACTIONS_ID_TOKEN_REQUEST_URL/TOKEN not set, grant the job id-token: write")
	}

	var result struct {
		Value string `json:"value"`
	}

	builder := p.client.R().
		SetContext(ctx).
		SetAuthToken(requestToken).
		SetHeader("Accept", "application/json").
		SetResult(&result)

	if len(p.audience) > 0 {
		builder.SetQueryParam("audience", p.audience)
	}

	resp, err := common.MakeRequestFromBuilder(builder, http.MethodGet, requestURL)
	if err != nil {
		return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "github: token request failed")
	}

	if resp.IsError() {
		return Token{}, apierror.New(apierror.KindFederationTokenUnavailable,
			"github: token request returned %d", resp.StatusCode())
	}

	if len(result.Value) == 0 {
		return Token{}, apierror.New(apierror.KindFederationTokenUnavailable, "github: empty token in response")
	}

	return oidcToken(result.Value), nil
}

func init() {
	Register(GitHubProviderName, newGitHubProvider)
}
