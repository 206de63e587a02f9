package federation

import (
	"context"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/models"
)

const (
	AWSPrefix  = "AWS::"
	OIDCPrefix = "OIDC::"

	DefaultDuration = 15 * time.Minute
)

// Token is a minted federation token ready to be sent as a workload
// credential. Expiry is zero when the provider cannot tell.
type Token struct {
	Value  string
	Expiry time.Time
}

// Provider mints workload tokens from the execution environment.
type Provider interface {
	Name() string
	Token(ctx context.Context) (Token, error)
}

// Params are handed to a provider factory.
type Params struct {
	// Tenant name without scheme or port.
	Tenant string
	// Argument is the part of the selector after the first dash.
	Argument string
	// Duration requested for tokens the provider signs itself.
	Duration time.Duration
	// Config carries provider specific settings such as the AWS region.
	Config *models.BasicConfig
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (p Params) getenv(key string) string {
	if p.Getenv != nil {
		return p.Getenv(key)
	}
	return os.Getenv(key)
}

func (p Params) duration() time.Duration {
	if p.Duration <= 0 {
		return DefaultDuration
	}
	return p.Duration
}

// oidcToken prefixes a raw JWT and reads its exp claim without verifying the
// signature. The service verifies the token; the client only needs to know
// when to mint a new one.
func oidcToken(raw string) Token {
	token := Token{Value: OIDCPrefix + raw}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		logrus.WithError(err).Debugln("OIDC token is not a parseable JWT, expiry unknown")
		return token
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		token.Expiry = exp.Time
	}

	return token
}
