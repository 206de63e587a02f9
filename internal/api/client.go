package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/thand-io/britive/internal/common"
	"github.com/thand-io/britive/internal/models"
	"github.com/thand-io/britive/internal/pagination"
)

// Client dispatches verb+path calls against the tenant base URL. It is the
// contract every endpoint wrapper delegates to.
type Client struct {
	baseURL   string
	doer      pagination.Doer
	paginator *pagination.Paginator
}

func New(baseURL string, doer pagination.Doer) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		doer:      doer,
		paginator: pagination.New(doer),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins path segments onto the base URL. An absolute URL is returned
// unchanged.
func (c *Client) URL(segments ...string) string {
	if len(segments) == 1 && common.IsAbsoluteURL(segments[0]) {
		return segments[0]
	}

	parts := []string{c.baseURL}
	for _, segment := range segments {
		parts = append(parts, strings.Trim(segment, "/"))
	}

	return strings.Join(common.FilterEmpty(parts...), "/")
}

// Get fetches path and merges every page of a paginated list.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (any, error) {
	return c.paginator.Collect(ctx, &models.Request{
		Method: http.MethodGet,
		URL:    c.URL(path),
		Query:  query,
	})
}

// GetPage fetches path without following pagination.
func (c *Client) GetPage(ctx context.Context, path string, query url.Values) (any, error) {
	res, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return res.Result(), nil
}

func (c *Client) Post(ctx context.Context, path string, query url.Values, body any) (any, error) {
	return c.send(ctx, http.MethodPost, path, query, body)
}

func (c *Client) Put(ctx context.Context, path string, query url.Values, body any) (any, error) {
	return c.send(ctx, http.MethodPut, path, query, body)
}

func (c *Client) Patch(ctx context.Context, path string, query url.Values, body any) (any, error) {
	return c.send(ctx, http.MethodPatch, path, query, body)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values, body any) (any, error) {
	return c.send(ctx, http.MethodDelete, path, query, body)
}

// Upload posts a multipart body with one file part.
func (c *Client) Upload(ctx context.Context, path string, query url.Values, body *models.MultipartBody) (any, error) {
	if body == nil {
		return nil, fmt.Errorf("upload to %s has no content", path)
	}
	return c.send(ctx, http.MethodPost, path, query, body)
}

// Download fetches a file. The endpoint must answer with an attachment.
func (c *Client) Download(ctx context.Context, path string, query url.Values) (*models.FileDownload, error) {
	res, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	if res.File == nil {
		return nil, fmt.Errorf("response from %s is not a file download", path)
	}
	return res.File, nil
}

// Do issues a single request without pagination. body may be a models.Body
// or any JSON serializable value.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (*models.Response, error) {
	return c.doer.Do(ctx, &models.Request{
		Method: method,
		URL:    c.URL(path),
		Query:  query,
		Body:   toBody(body),
	})
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	res, err := c.Do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}
	return res.Result(), nil
}

func toBody(body any) models.Body {
	switch b := body.(type) {
	case nil:
		return nil
	case models.Body:
		return b
	case url.Values:
		return models.FormBody{Values: b}
	default:
		return models.JSONBody{Value: b}
	}
}
