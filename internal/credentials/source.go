package credentials

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/config"
	"github.com/thand-io/britive/internal/federation"
	"github.com/thand-io/britive/internal/models"
)

const (
	DefaultTokenEnvVar = "BRITIVE_API_TOKEN"

	// Federated tokens are re-minted this long before they expire.
	RefreshSkew = 30 * time.Second
)

// Source produces the credential for a request. The transport asks for it
// on every attempt.
type Source interface {
	Credential(ctx context.Context) (models.Credential, error)
}

type staticSource struct {
	credential models.Credential
}

func (s *staticSource) Credential(context.Context) (models.Credential, error) {
	return s.credential, nil
}

// Static wraps a literal token.
func Static(token string) (Source, error) {
	token = strings.TrimSpace(token)
	if len(token) == 0 {
		return nil, apierror.New(apierror.KindTokenMissing, "no API token provided")
	}
	config.RegisterSecret(token)
	return &staticSource{credential: models.NewCredential(token)}, nil
}

// FromEnv reads the token from an environment variable once, at construction.
func FromEnv(name string) (Source, error) {
	if len(name) == 0 {
		name = DefaultTokenEnvVar
	}
	token := strings.TrimSpace(os.Getenv(name))
	if len(token) == 0 {
		return nil, apierror.New(apierror.KindTokenMissing, "environment variable %s is not set", name)
	}
	return Static(token)
}

// federatedSource caches the last minted token until it is about to expire.
type federatedSource struct {
	provider federation.Provider
	skew     time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cached models.Credential
}

// Federated mints tokens on demand from a federation provider.
func Federated(provider federation.Provider) Source {
	return &federatedSource{
		provider: provider,
		skew:     RefreshSkew,
		now:      time.Now,
	}
}

func (s *federatedSource) Credential(ctx context.Context) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cached.IsEmpty() && !s.cached.ExpiresWithin(s.now(), s.skew) {
		return s.cached, nil
	}

	token, err := s.provider.Token(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"provider": s.provider.Name(),
		}).WithError(err).Errorln("Failed to mint federation token")
		return models.Credential{}, err
	}

	config.RegisterSecret(token.Value)

	logrus.WithFields(logrus.Fields{
		"provider": s.provider.Name(),
		"expiry":   token.Expiry,
	}).Debugln("Minted federation token")

	credential := models.NewFederatedCredential(token.Value, token.Expiry)

	// Without a known expiry every request mints a fresh token
	if !token.Expiry.IsZero() {
		s.cached = credential
	}

	return credential, nil
}
