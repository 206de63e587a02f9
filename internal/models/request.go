package models

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is a single call against the tenant API. URL is absolute.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Body   Body
}

// Body is one of JSONBody, FormBody or MultipartBody.
type Body interface {
	isBody()
}

type JSONBody struct {
	Value any
}

type FormBody struct {
	Values url.Values
}

// MultipartBody carries one file stream and optional metadata parts.
type MultipartBody struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
	Fields      map[string]string
}

func (JSONBody) isBody()       {}
func (FormBody) isBody()       {}
func (*MultipartBody) isBody() {}

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("request is nil")
	}
	if !supportedMethods[strings.ToUpper(r.Method)] {
		return fmt.Errorf("unsupported HTTP method: %s", r.Method)
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("invalid request url %q: %w", r.URL, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("request url must be absolute: %s", r.URL)
	}
	return nil
}

// Clone returns a copy with its own query values. The body is shared.
func (r *Request) Clone() *Request {
	clone := *r
	if r.Query != nil {
		clone.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			clone.Query[k] = append([]string(nil), v...)
		}
	}
	return &clone
}
