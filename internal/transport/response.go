package transport

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/thand-io/britive/internal/apierror"
	"github.com/thand-io/britive/internal/common"
	"github.com/thand-io/britive/internal/models"
)

const defaultDownloadName = "download"

// classify turns a non-retryable response into a result or a typed error.
func classify(req *models.Request, res *resty.Response) (*models.Response, error) {
	status := res.StatusCode()
	raw := res.Body()

	if status >= http.StatusBadRequest {
		return nil, apierror.Classify(status, decodeBody(raw))
	}

	out := &models.Response{
		StatusCode: status,
		Header:     res.Header(),
	}

	if status == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		out.Empty = true
		return out, nil
	}

	if file, ok := fileDownload(req.URL, res.Header(), raw); ok {
		out.File = file
		return out, nil
	}

	out.Value = decodeBody(raw)
	return out, nil
}

// decodeBody parses JSON and falls back to the raw text.
func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return string(raw)
	}
	return value
}

func fileDownload(requestURL string, header http.Header, raw []byte) (*models.FileDownload, bool) {
	disposition := header.Get("Content-Disposition")
	if !common.ContainsInsensitive(disposition, "attachment") {
		return nil, false
	}
	if !strings.Contains(strings.ToLower(requestURL), "downloadfile") {
		return nil, false
	}

	filename := defaultDownloadName
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := strings.TrimSpace(params["filename"]); len(name) > 0 {
			filename = name
		}
	}

	return &models.FileDownload{
		Filename: filename,
		Content:  raw,
	}, true
}
