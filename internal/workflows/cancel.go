package workflows

import (
	"sync"
	"time"

	"github.com/thand-io/britive/internal/common"
)

// AbortWindow is how soon a second Cancel must follow the first to abort
// the best-effort withdraw.
const AbortWindow = 2 * time.Second

// CancelToken lets a caller stop an approval wait. The first Cancel withdraws
// the pending request; a second Cancel within AbortWindow abandons the
// withdraw as well. A nil token never fires; the zero value is ready to use.
type CancelToken struct {
	once        sync.Once
	mu          sync.Mutex
	done        chan struct{}
	aborted     chan struct{}
	cancelledAt time.Time
	window      time.Duration
	now         func() time.Time
}

func NewCancelToken() *CancelToken {
	c := &CancelToken{}
	c.init()
	return c
}

func (c *CancelToken) init() {
	c.once.Do(func() {
		c.done = make(chan struct{})
		c.aborted = make(chan struct{})
		if c.window == 0 {
			c.window = AbortWindow
		}
		if c.now == nil {
			c.now = time.Now
		}
	})
}

func (c *CancelToken) Cancel() {
	if c == nil {
		return
	}
	c.init()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	select {
	case <-c.done:
		if now.Sub(c.cancelledAt) <= c.window {
			select {
			case <-c.aborted:
			default:
				close(c.aborted)
			}
		}
		c.cancelledAt = now
	default:
		c.cancelledAt = now
		close(c.done)
	}
}

func (c *CancelToken) Done() <-chan struct{} {
	if c == nil {
		return nil
	}
	c.init()
	return c.done
}

func (c *CancelToken) Aborted() <-chan struct{} {
	if c == nil {
		return nil
	}
	c.init()
	return c.aborted
}

func (c *CancelToken) Cancelled() bool {
	if c == nil {
		return false
	}
	c.init()
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// NotifyInterrupt cancels the token on SIGINT or SIGTERM until stop is called.
func (c *CancelToken) NotifyInterrupt() (stop func()) {
	return common.NotifyInterrupt(c.Cancel)
}
