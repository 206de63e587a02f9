package models

import "net/http"

// Response is the decoded result of a successful call. Value holds a
// map[string]any, []any or the raw body text when it was not JSON.
type Response struct {
	StatusCode int
	Header     http.Header
	Value      any
	File       *FileDownload
	Empty      bool
}

type FileDownload struct {
	Filename string
	Content  []byte
}

func (r *Response) Object() (map[string]any, bool) {
	if r == nil {
		return nil, false
	}
	obj, ok := r.Value.(map[string]any)
	return obj, ok
}

func (r *Response) Array() ([]any, bool) {
	if r == nil {
		return nil, false
	}
	arr, ok := r.Value.([]any)
	return arr, ok
}

// Result returns what a caller of the generic verbs sees: nil for empty
// responses, the file for downloads, otherwise the decoded value.
func (r *Response) Result() any {
	if r == nil || r.Empty {
		return nil
	}
	if r.File != nil {
		return r.File
	}
	return r.Value
}
