package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// AllowsInsecure reports whether certificate verification may be disabled
// for host. Only development tenants qualify.
func AllowsInsecure(host string) bool {
	return strings.Contains(strings.ToLower(host), ".dev.")
}

func newTLSConfig(host, caBundle string, noVerify bool) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if len(caBundle) > 0 {
		pem, err := os.ReadFile(caBundle)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA bundle %s: %w", caBundle, err)
		}

		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}

		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in CA bundle %s", caBundle)
		}

		logrus.WithField("path", caBundle).Debugln("Using custom CA bundle")
		tlsConfig.RootCAs = pool
	}

	if noVerify {
		if AllowsInsecure(host) {
			logrus.WithField("host", host).Warnln("TLS certificate verification is disabled")
			tlsConfig.InsecureSkipVerify = true
		} else {
			logrus.WithField("host", host).Warnln("Ignoring request to disable TLS verification for a non-development tenant")
		}
	}

	return tlsConfig, nil
}
