package models

import (
	"strings"
	"time"
)

// CredentialKind identifies how a bearer value was obtained. The kind decides
// the scheme word placed in front of the token in the Authorization header.
type CredentialKind string

const (
	CredentialStatic    CredentialKind = "static"
	CredentialWorkload  CredentialKind = "workload"
	CredentialBearer    CredentialKind = "bearer"
	CredentialFederated CredentialKind = "federated"
)

const (
	SchemeToken         = "TOKEN"
	SchemeWorkloadToken = "WorkloadToken"
	SchemeBearer        = "Bearer"
)

// Tokens shorter than this are API tokens issued by the tenant.
const staticTokenMaxLength = 50

type Credential struct {
	Kind  CredentialKind
	Token string
	// Zero means the credential does not expire.
	Expiry time.Time
}

// NewCredential classifies a raw token string.
func NewCredential(token string) Credential {
	return Credential{
		Kind:  KindForToken(token),
		Token: token,
	}
}

// NewFederatedCredential wraps a token minted by a federation provider.
// Federated tokens always carry a provider prefix such as AWS:: or OIDC::
func NewFederatedCredential(token string, expiry time.Time) Credential {
	return Credential{
		Kind:   CredentialFederated,
		Token:  token,
		Expiry: expiry,
	}
}

func KindForToken(token string) CredentialKind {
	switch {
	case strings.Contains(token, "::"):
		return CredentialWorkload
	case len(token) < staticTokenMaxLength:
		return CredentialStatic
	default:
		return CredentialBearer
	}
}

// SchemeFor returns the Authorization scheme word for a raw token.
func SchemeFor(token string) string {
	return NewCredential(token).Scheme()
}

func (c Credential) Scheme() string {
	switch c.Kind {
	case CredentialWorkload, CredentialFederated:
		return SchemeWorkloadToken
	case CredentialStatic:
		return SchemeToken
	default:
		return SchemeBearer
	}
}

func (c Credential) AuthorizationHeader() string {
	return c.Scheme() + " " + c.Token
}

func (c Credential) IsEmpty() bool {
	return len(c.Token) == 0
}

// ExpiresWithin reports whether the credential will have expired by now+skew.
func (c Credential) ExpiresWithin(now time.Time, skew time.Duration) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Add(skew).Before(c.Expiry)
}
