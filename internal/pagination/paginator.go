package pagination

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/thand-io/britive/internal/models"
)

// Doer is the transport primitive the paginator drives.
type Doer interface {
	Do(ctx context.Context, req *models.Request) (*models.Response, error)
}

// Paginator merges multi-page list endpoints into one sequence.
type Paginator struct {
	doer Doer
}

func New(doer Doer) *Paginator {
	return &Paginator{doer: doer}
}

// Collect issues first and follows continuation until the list is exhausted.
// Single page responses are returned as the transport decoded them.
func (p *Paginator) Collect(ctx context.Context, first *models.Request) (any, error) {
	req := first.Clone()

	res, err := p.doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if isMyResourcesPage(req) {
		return res.Result(), nil
	}

	shape := Detect(res)

	logrus.WithFields(logrus.Fields{
		"url":   req.URL,
		"shape": shape,
	}).Debugln("Detected pagination shape")

	switch shape {
	case ShapeInline:
		return p.collectInline(ctx, req, res)
	case ShapeReport:
		return p.collectHeader(ctx, res, "data")
	case ShapeAudit:
		return p.collectHeader(ctx, res, "")
	case ShapeSecMgr:
		return p.collectSecMgr(ctx, req, res)
	default:
		return res.Result(), nil
	}
}

// my-resources with an explicit size is a caller driven single page.
func isMyResourcesPage(req *models.Request) bool {
	if !strings.Contains(req.URL, "my-resources") {
		return false
	}
	return req.Query.Has("size")
}

func (p *Paginator) collectInline(ctx context.Context, req *models.Request, res *models.Response) (any, error) {
	obj, _ := res.Object()
	items := append([]any{}, listOf(obj["data"])...)

	for {
		count, page, size := intOf(obj["count"]), intOf(obj["page"]), intOf(obj["size"])
		if size <= 0 || size*(page+1) >= count {
			return items, nil
		}

		next := req.Clone()
		if next.Query == nil {
			next.Query = url.Values{}
		}
		next.Query.Set("page", strconv.Itoa(page+1))

		res, err := p.doer.Do(ctx, next)
		if err != nil {
			return nil, err
		}

		obj, _ = res.Object()
		if obj == nil {
			return nil, fmt.Errorf("page %d of %s is not an object", page+1, req.URL)
		}

		items = append(items, listOf(obj["data"])...)
		req = next
	}
}

// collectHeader follows next-page headers. key selects the list inside an
// object page; an empty key means every page is itself the list.
func (p *Paginator) collectHeader(ctx context.Context, res *models.Response, key string) (any, error) {
	items := append([]any{}, pageItems(res, key)...)

	for {
		nextURL := res.Header.Get(NextPageHeader)
		if len(nextURL) == 0 {
			return items, nil
		}

		var err error
		res, err = p.doer.Do(ctx, &models.Request{
			Method: http.MethodGet,
			URL:    nextURL,
		})
		if err != nil {
			return nil, err
		}

		items = append(items, pageItems(res, key)...)
	}
}

func (p *Paginator) collectSecMgr(ctx context.Context, req *models.Request, res *models.Response) (any, error) {
	obj, _ := res.Object()
	items := append([]any{}, listOf(obj["result"])...)
	current := req.URL

	for {
		next := nextOf(obj["pagination"])
		if len(next) == 0 {
			return items, nil
		}

		nextURL, err := resolve(current, next)
		if err != nil {
			return nil, err
		}

		res, err := p.doer.Do(ctx, &models.Request{
			Method: http.MethodGet,
			URL:    nextURL,
		})
		if err != nil {
			return nil, err
		}

		obj, _ = res.Object()
		if obj == nil {
			return nil, fmt.Errorf("secrets page %s is not an object", nextURL)
		}

		items = append(items, listOf(obj["result"])...)
		current = nextURL
	}
}

func pageItems(res *models.Response, key string) []any {
	if len(key) == 0 {
		arr, _ := res.Array()
		return arr
	}
	obj, _ := res.Object()
	return listOf(obj[key])
}

func listOf(v any) []any {
	arr, _ := v.([]any)
	return arr
}

func nextOf(v any) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	next, _ := obj["next"].(string)
	return strings.TrimSpace(next)
}

func intOf(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}

func resolve(current, next string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("invalid pagination link %q: %w", next, err)
	}
	return base.ResolveReference(ref).String(), nil
}
