package federation

import (
	"context"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/thand-io/britive/internal/apierror"
)

const (
	AzureSystemProviderName = "azuresmi"
	AzureUserProviderName   = "azureumi"

	defaultAzureAudience = "api://AzureADTokenExchange"
)

// azureProvider requests a managed identity token for the audience. With an
// empty clientID the system assigned identity is used.
type azureProvider struct {
	name     string
	clientID string
	audience string

	newCredential func(clientID string) (azcore.TokenCredential, error)
	credential    azcore.TokenCredential
}

func newAzureSystemProvider(params Params) (Provider, error) {
	audience := params.Argument
	if len(audience) == 0 {
		audience = defaultAzureAudience
	}
	return &azureProvider{
		name:          AzureSystemProviderName,
		audience:      audience,
		newCredential: newManagedIdentityCredential,
	}, nil
}

// newAzureUserProvider expects "<client-id>[|<audience>]".
func newAzureUserProvider(params Params) (Provider, error) {
	clientID, audience, _ := strings.Cut(params.Argument, "|")
	clientID = strings.TrimSpace(clientID)
	if len(clientID) == 0 {
		return nil, apierror.New(apierror.KindInvalidFederationProvider,
			"azureumi requires a client id, e.g. azureumi-<client-id>|<audience>")
	}
	if len(audience) == 0 {
		audience = defaultAzureAudience
	}
	return &azureProvider{
		name:          AzureUserProviderName,
		clientID:      clientID,
		audience:      audience,
		newCredential: newManagedIdentityCredential,
	}, nil
}

func newManagedIdentityCredential(clientID string) (azcore.TokenCredential, error) {
	options := &azidentity.ManagedIdentityCredentialOptions{}
	if len(clientID) > 0 {
		options.ID = azidentity.ClientID(clientID)
	}
	return azidentity.NewManagedIdentityCredential(options)
}

func (p *azureProvider) Name() string {
	return p.name
}

func (p *azureProvider) Token(ctx context.Context) (Token, error) {
	if p.credential == nil {
		credential, err := p.newCredential(p.clientID)
		if err != nil {
			return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "%s: managed identity unavailable", p.name)
		}
		p.credential = credential
	}

	accessToken, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{azureScope(p.audience)},
	})
	if err != nil {
		return Token{}, apierror.Wrap(apierror.KindFederationTokenUnavailable, err, "%s: token request failed", p.name)
	}

	return Token{
		Value:  OIDCPrefix + accessToken.Token,
		Expiry: accessToken.ExpiresOn,
	}, nil
}

func azureScope(audience string) string {
	return strings.TrimSuffix(audience, "/") + "/.default"
}

func init() {
	Register(AzureSystemProviderName, newAzureSystemProvider)
	Register(AzureUserProviderName, newAzureUserProvider)
}
