package transport

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "britive",
		Subsystem: "sdk",
		Name:      "requests_total",
		Help:      "Requests sent to the tenant API by method and status code.",
	}, []string{"method", "code"}))
	if err != nil {
		return nil, err
	}

	retries, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "britive",
		Subsystem: "sdk",
		Name:      "request_retries_total",
		Help:      "Retries triggered by retryable status codes.",
	}, []string{"code"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "britive",
		Subsystem: "sdk",
		Name:      "request_duration_seconds",
		Help:      "Latency of individual request attempts.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"}))
	if err != nil {
		return nil, err
	}

	return &metrics{
		requests: requests,
		retries:  retries,
		duration: duration,
	}, nil
}

// register reuses an identical collector that is already registered, so
// several clients can share one registry.
func register[T prometheus.Collector](reg prometheus.Registerer, collector T) (T, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return collector, err
	}
	return collector, nil
}

func codeLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

func (m *metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, codeLabel(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *metrics) retried(status int) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(codeLabel(status)).Inc()
}
