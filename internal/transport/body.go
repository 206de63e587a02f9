package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/url"

	"github.com/go-resty/resty/v2"

	"github.com/thand-io/britive/internal/models"
)

// preparedBody is a request body that can be replayed on every attempt.
type preparedBody struct {
	json    any
	hasJSON bool

	form url.Values

	multipart *models.MultipartBody
	content   []byte
}

func prepareBody(body models.Body) (*preparedBody, error) {
	switch b := body.(type) {
	case nil:
		return &preparedBody{}, nil
	case models.JSONBody:
		return &preparedBody{json: b.Value, hasJSON: b.Value != nil}, nil
	case *models.JSONBody:
		return &preparedBody{json: b.Value, hasJSON: b.Value != nil}, nil
	case models.FormBody:
		return &preparedBody{form: b.Values}, nil
	case *models.FormBody:
		return &preparedBody{form: b.Values}, nil
	case *models.MultipartBody:
		if b.Content == nil {
			return nil, fmt.Errorf("multipart body %q has no content", b.FieldName)
		}
		content, err := io.ReadAll(b.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to read multipart content: %w", err)
		}
		return &preparedBody{multipart: b, content: content}, nil
	default:
		return nil, fmt.Errorf("unsupported request body type %T", body)
	}
}

func (p *preparedBody) apply(r *resty.Request) {
	switch {
	case p.multipart != nil:
		fieldName := p.multipart.FieldName
		if len(fieldName) == 0 {
			fieldName = "file"
		}
		contentType := p.multipart.ContentType
		if len(contentType) == 0 {
			contentType = "application/octet-stream"
		}
		r.SetMultipartField(fieldName, p.multipart.FileName, contentType, bytes.NewReader(p.content))
		if len(p.multipart.Fields) > 0 {
			r.SetMultipartFormData(p.multipart.Fields)
		}
	case p.form != nil:
		r.SetFormDataFromValues(p.form)
	default:
		r.SetHeader("Content-Type", "application/json")
		if p.hasJSON {
			r.SetBody(p.json)
		}
	}
}
