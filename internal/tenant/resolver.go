package tenant

import (
	"context"
	"net"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/apierror"
)

const DefaultDomain = "britive-app.com"

// Lookup resolves a hostname. net.Resolver.LookupHost satisfies it.
type Lookup func(ctx context.Context, host string) ([]string, error)

// Resolver turns a tenant identifier ("acme", "acme.britive-app.com",
// "https://acme.britive-app.com/admin") into the API base URL.
type Resolver struct {
	Lookup        Lookup
	DefaultDomain string
}

func NewResolver() *Resolver {
	return &Resolver{
		Lookup:        net.DefaultResolver.LookupHost,
		DefaultDomain: DefaultDomain,
	}
}

// Resolve returns https://<host>/api for the identifier. The literal host is
// used when it resolves, otherwise the default domain is appended.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, error) {
	host, err := r.ResolveHost(ctx, identifier)
	if err != nil {
		return "", err
	}
	return BaseURL(host), nil
}

func (r *Resolver) ResolveHost(ctx context.Context, identifier string) (string, error) {
	host, err := ParseIdentifier(identifier)
	if err != nil {
		return "", err
	}

	lookup := r.Lookup
	if lookup == nil {
		lookup = net.DefaultResolver.LookupHost
	}
	domain := r.DefaultDomain
	if len(domain) == 0 {
		domain = DefaultDomain
	}

	hostname, port := splitPort(host)

	if _, err = lookup(ctx, hostname); err == nil {
		return host, nil
	}

	logrus.WithFields(logrus.Fields{
		"host": hostname,
	}).WithError(err).Debugln("Tenant host did not resolve, trying default domain")

	candidate := hostname + "." + domain
	if _, err := lookup(ctx, candidate); err != nil {
		return "", apierror.Wrap(apierror.KindInvalidTenant, err,
			"tenant %q did not resolve as %s or %s", identifier, hostname, candidate)
	}

	return joinPort(candidate, port), nil
}

// ParseIdentifier strips scheme, path, whitespace and trailing dots from a
// tenant identifier. An explicit port is kept.
func ParseIdentifier(identifier string) (string, error) {
	value := strings.TrimSpace(identifier)
	if len(value) == 0 {
		return "", apierror.New(apierror.KindTenantMissing, "no tenant provided")
	}

	if strings.Contains(value, "://") {
		u, err := url.Parse(value)
		if err != nil {
			return "", apierror.Wrap(apierror.KindInvalidTenant, err, "tenant %q is not a valid URL", identifier)
		}
		value = u.Host
	} else if i := strings.IndexAny(value, "/?#"); i >= 0 {
		value = value[:i]
	}

	hostname, port := splitPort(value)
	hostname = strings.ToLower(strings.TrimRight(hostname, "."))
	if len(hostname) == 0 {
		return "", apierror.New(apierror.KindTenantMissing, "no tenant host in %q", identifier)
	}

	return joinPort(hostname, port), nil
}

// Name returns the tenant host without any port.
func Name(host string) string {
	hostname, _ := splitPort(host)
	return hostname
}

func BaseURL(host string) string {
	return "https://" + host + "/api"
}

func splitPort(host string) (string, string) {
	if hostname, port, err := net.SplitHostPort(host); err == nil {
		return hostname, port
	}
	return host, ""
}

func joinPort(hostname, port string) string {
	if len(port) == 0 {
		return hostname
	}
	return net.JoinHostPort(hostname, port)
}
