package workflows

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/models"
)

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

type handler func(c call) (any, error)

// fakeAPI routes calls by "METHOD path" and records them in order.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]handler
	calls  []call
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{routes: map[string]handler{}}
}

func (f *fakeAPI) on(method, path string, h handler) {
	f.routes[method+" "+path] = h
}

// sequence answers with each handler in turn, repeating the last one.
func sequence(handlers ...handler) handler {
	var n int
	return func(c call) (any, error) {
		h := handlers[min(n, len(handlers)-1)]
		n++
		return h(c)
	}
}

func respond(v any) handler {
	return func(call) (any, error) { return v, nil }
}

func fail(err error) handler {
	return func(call) (any, error) { return nil, err }
}

func (f *fakeAPI) dispatch(method, path string, query url.Values, body any) (any, error) {
	f.mu.Lock()
	c := call{method: method, path: path, query: query, body: body}
	f.calls = append(f.calls, c)
	h, ok := f.routes[method+" "+path]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unexpected call %s %s", method, path)
	}
	return h(c)
}

func (f *fakeAPI) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Get(_ context.Context, path string, query url.Values) (any, error) {
	return f.dispatch(http.MethodGet, path, query, nil)
}

func (f *fakeAPI) GetPage(_ context.Context, path string, query url.Values) (any, error) {
	return f.dispatch(http.MethodGet, path, query, nil)
}

func (f *fakeAPI) Post(_ context.Context, path string, query url.Values, body any) (any, error) {
	return f.dispatch(http.MethodPost, path, query, body)
}

func (f *fakeAPI) Put(_ context.Context, path string, query url.Values, body any) (any, error) {
	return f.dispatch(http.MethodPut, path, query, body)
}

func (f *fakeAPI) Delete(_ context.Context, path string, query url.Values, body any) (any, error) {
	return f.dispatch(http.MethodDelete, path, query, body)
}

func (f *fakeAPI) Download(_ context.Context, path string, query url.Values) (*models.FileDownload, error) {
	result, err := f.dispatch(http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return result.(*models.FileDownload), nil
}

// fakeClock advances instantly whenever the engine sleeps.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func newTestEngine(api API) (*Engine, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	engine := NewEngine(api, LayoutCurrent)
	engine.now = clock.Now
	engine.after = clock.After
	return engine, clock
}

func apiError(kind apierror.Kind, status int, code, message string) *apierror.Error {
	return &apierror.Error{Kind: kind, StatusCode: status, ErrorCode: code, Message: message}
}

func transaction(id, status string) map[string]any {
	return map[string]any{
		"transactionId": id,
		"status":        status,
		"accessType":    "PROGRAMMATIC",
		"papId":         "p1",
		"environmentId": "e1",
	}
}
