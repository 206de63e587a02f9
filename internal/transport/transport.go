package transport

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/common"
	"github.com/thand-io/britive/internal/credentials"
	"github.com/thand-io/britive/internal/models"
)

const (
	DefaultMaxRetries  = 5
	DefaultBackoffBase = time.Second
)

var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type Config struct {
	// Host is the tenant host. It gates the no-verify override.
	Host        string
	Credentials credentials.Source

	CABundle string
	NoVerify bool

	// Zero selects DefaultMaxRetries; a negative value disables retries.
	MaxRetries int
	// Zero selects DefaultBackoffBase.
	BackoffBase time.Duration
	// Zero means unlimited.
	RequestsPerSecond float64

	// Registerer receives request metrics when set.
	Registerer prometheus.Registerer

	// UserAgent defaults to britive-go/<version>.
	UserAgent string

	// HTTPTransport replaces the TLS configured transport, mainly for tests.
	HTTPTransport http.RoundTripper
	// NewTimer supplies the backoff sleep timer, mainly for tests.
	NewTimer func() backoff.Timer
}

// Transport owns the HTTP session and implements the single request
// primitive with retry, maintenance detection and response classification.
type Transport struct {
	client      *resty.Client
	credentials credentials.Source
	maxRetries  int
	backoffBase time.Duration
	limiter     *rate.Limiter
	metrics     *metrics
	newTimer    func() backoff.Timer
}

func New(cfg Config) (*Transport, error) {
	if cfg.Credentials == nil {
		return nil, apierror.New(apierror.KindTokenMissing, "no credential source configured")
	}

	roundTripper := cfg.HTTPTransport
	if roundTripper == nil {
		tlsConfig, err := newTLSConfig(cfg.Host, cfg.CABundle, cfg.NoVerify)
		if err != nil {
			return nil, err
		}
		httpTransport := http.DefaultTransport.(*http.Transport).Clone()
		httpTransport.TLSClientConfig = tlsConfig
		roundTripper = httpTransport
	}

	userAgent := cfg.UserAgent
	if len(userAgent) == 0 {
		userAgent = common.UserAgent()
	}

	client := resty.New().
		SetTransport(otelhttp.NewTransport(roundTripper)).
		SetHeader("User-Agent", userAgent)

	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register transport metrics: %w", err)
	}

	t := &Transport{
		client:      client,
		credentials: cfg.Credentials,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		metrics:     m,
		newTimer:    cfg.NewTimer,
	}

	switch {
	case t.maxRetries == 0:
		t.maxRetries = DefaultMaxRetries
	case t.maxRetries < 0:
		t.maxRetries = 0
	}

	if t.backoffBase <= 0 {
		t.backoffBase = DefaultBackoffBase
	}

	if cfg.RequestsPerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return t, nil
}

// retryableError carries the last retryable response out of the retry loop
// so it can be classified once retries run out.
type retryableError struct {
	status int
	body   []byte
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable status %d", e.status)
}

// Do issues the request, retrying 429 and 5xx gateway statuses with
// exponential backoff (base, 2*base, 4*base, ...). A tenant maintenance
// response stops immediately.
func (t *Transport) Do(ctx context.Context, req *models.Request) (*models.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := prepareBody(req.Body)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	attempt := 0

	var result *models.Response

	operation := func() error {
		res, err := t.attempt(ctx, req, body, requestID, attempt)
		attempt++
		if err != nil {
			return backoff.Permanent(err)
		}

		status := res.StatusCode()

		if status == http.StatusServiceUnavailable {
			decoded := decodeBody(res.Body())
			if message, ok := apierror.Maintenance(status, decoded); ok {
				logrus.WithFields(logrus.Fields{
					"url":     req.URL,
					"message": message,
				}).Errorln("Tenant is under maintenance")
				return backoff.Permanent(apierror.NewMaintenance(status, decoded))
			}
		}

		if retryableStatuses[status] {
			return &retryableError{status: status, body: res.Body()}
		}

		result, err = classify(req, res)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	notify := func(err error, delay time.Duration) {
		var retryErr *retryableError
		if errors.As(err, &retryErr) {
			t.metrics.retried(retryErr.status)
		}
		logrus.WithFields(logrus.Fields{
			"method":  req.Method,
			"url":     req.URL,
			"attempt": attempt,
			"delay":   delay,
		}).WithError(err).Warnln("Retrying request")
	}

	var timer backoff.Timer
	if t.newTimer != nil {
		timer = t.newTimer()
	}

	policy := backoff.WithContext(t.newBackOff(), ctx)

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, timer); err != nil {
		var retryErr *retryableError
		if errors.As(err, &retryErr) {
			return nil, apierror.Classify(retryErr.status, decodeBody(retryErr.body))
		}
		return nil, err
	}

	return result, nil
}

func (t *Transport) newBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = t.backoffBase
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = time.Duration(math.MaxInt64)
	policy.MaxElapsedTime = 0
	policy.Reset()

	return backoff.WithMaxRetries(policy, uint64(t.maxRetries))
}

func (t *Transport) attempt(ctx context.Context, req *models.Request, body *preparedBody, requestID string, attempt int) (*resty.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	credential, err := t.credentials.Credential(ctx)
	if err != nil {
		return nil, err
	}

	builder := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", credential.AuthorizationHeader()).
		SetHeader("X-Request-Id", requestID)

	if len(req.Query) > 0 {
		builder.SetQueryParamsFromValues(req.Query)
	}

	body.apply(builder)

	start := time.Now()
	res, err := common.MakeRequestFromBuilder(builder, req.Method, req.URL)
	elapsed := time.Since(start)

	if err != nil {
		t.metrics.observe(req.Method, 0, elapsed)
		logrus.WithFields(logrus.Fields{
			"method":  req.Method,
			"url":     req.URL,
			"attempt": attempt,
		}).WithError(err).Debugln("Request failed")
		return nil, err
	}

	t.metrics.observe(req.Method, res.StatusCode(), elapsed)

	logrus.WithFields(logrus.Fields{
		"method":  req.Method,
		"url":     req.URL,
		"status":  res.StatusCode(),
		"attempt": attempt,
		"elapsed": elapsed,
	}).Debugln("Request completed")

	return res, nil
}
