package workflows

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/thand-io/britive/internal/models"
)

// CredentialsPollInterval is the fixed delay between transaction polls while
// a checkout is still provisioning.
const CredentialsPollInterval = time.Second

// API is the subset of the endpoint dispatcher the engine drives.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (any, error)
	GetPage(ctx context.Context, path string, query url.Values) (any, error)
	Post(ctx context.Context, path string, query url.Values, body any) (any, error)
	Put(ctx context.Context, path string, query url.Values, body any) (any, error)
	Delete(ctx context.Context, path string, query url.Values, body any) (any, error)
	Download(ctx context.Context, path string, query url.Values) (*models.FileDownload, error)
}

// Engine runs the approval aware checkout and secret access protocols. It
// holds no HTTP state of its own.
type Engine struct {
	api    API
	layout Layout

	pollInterval    time.Duration
	withdrawTimeout time.Duration
	now             func() time.Time
	after           func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	vaultID string
}

func NewEngine(api API, layout Layout) *Engine {
	return &Engine{
		api:             api,
		layout:          layout,
		pollInterval:    CredentialsPollInterval,
		withdrawTimeout: 30 * time.Second,
		now:             time.Now,
		after:           time.After,
	}
}

// sleep waits d or until ctx is done.
func (e *Engine) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.after(d):
		return nil
	}
}
