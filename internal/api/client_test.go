package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thand-io/britive/internal/models"
)

type recordingDoer struct {
	requests []*models.Request
	response *models.Response
}

func (d *recordingDoer) Do(_ context.Context, req *models.Request) (*models.Response, error) {
	d.requests = append(d.requests, req)
	if d.response != nil {
		return d.response, nil
	}
	return &models.Response{StatusCode: http.StatusOK, Header: http.Header{}, Value: map[string]any{"ok": true}}, nil
}

func TestURL(t *testing.T) {
	client := New("https://acme.britive-app.com/api/", &recordingDoer{})

	tests := []struct {
		segments []string
		expected string
	}{
		{[]string{"access"}, "https://acme.britive-app.com/api/access"},
		{[]string{"/access/"}, "https://acme.britive-app.com/api/access"},
		{[]string{"access", "", "p1", "environments"}, "https://acme.britive-app.com/api/access/p1/environments"},
		{[]string{"https://other.example.com/x"}, "https://other.example.com/x"},
		{nil, "https://acme.britive-app.com/api"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.segments, ","), func(t *testing.T) {
			assert.Equal(t, tt.expected, client.URL(tt.segments...))
		})
	}
}

func TestVerbs(t *testing.T) {
	doer := &recordingDoer{}
	client := New("https://acme.britive-app.com/api", doer)
	ctx := context.Background()

	_, err := client.Post(ctx, "access/p1/environments/e1", url.Values{"accessType": {"CONSOLE"}}, map[string]any{"justification": "x"})
	require.NoError(t, err)
	_, err = client.Put(ctx, "things/1", nil, nil)
	require.NoError(t, err)
	_, err = client.Patch(ctx, "things/1", nil, url.Values{"a": {"b"}})
	require.NoError(t, err)
	_, err = client.Delete(ctx, "things/1", nil, nil)
	require.NoError(t, err)
	_, err = client.Upload(ctx, "things/1/file", nil, &models.MultipartBody{FieldName: "file", Content: strings.NewReader("x")})
	require.NoError(t, err)

	require.Len(t, doer.requests, 5)

	assert.Equal(t, http.MethodPost, doer.requests[0].Method)
	assert.Equal(t, "CONSOLE", doer.requests[0].Query.Get("accessType"))
	assert.Equal(t, models.JSONBody{Value: map[string]any{"justification": "x"}}, doer.requests[0].Body)

	assert.Equal(t, http.MethodPut, doer.requests[1].Method)
	assert.Nil(t, doer.requests[1].Body)

	assert.Equal(t, http.MethodPatch, doer.requests[2].Method)
	assert.IsType(t, models.FormBody{}, doer.requests[2].Body)

	assert.Equal(t, http.MethodDelete, doer.requests[3].Method)
	assert.IsType(t, &models.MultipartBody{}, doer.requests[4].Body)

	_, err = client.Upload(ctx, "things/1/file", nil, nil)
	assert.Error(t, err)
}

func TestGetFollowsPagination(t *testing.T) {
	pages := []*models.Response{
		{Header: http.Header{}, Value: map[string]any{"count": float64(3), "page": float64(0), "size": float64(2), "data": []any{"a", "b"}}},
		{Header: http.Header{}, Value: map[string]any{"count": float64(3), "page": float64(1), "size": float64(2), "data": []any{"c"}}},
	}
	doer := &pagedDoer{pages: pages}
	client := New("https://acme.britive-app.com/api", doer)

	result, err := client.Get(context.Background(), "v2/users", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, result)

	single, err := New("https://acme.britive-app.com/api", &pagedDoer{pages: pages}).GetPage(context.Background(), "v2/users", nil)
	require.NoError(t, err)
	assert.IsType(t, map[string]any{}, single)
}

type pagedDoer struct {
	pages []*models.Response
	calls int
}

func (d *pagedDoer) Do(context.Context, *models.Request) (*models.Response, error) {
	page := d.pages[d.calls]
	d.calls++
	return page, nil
}

func TestDownload(t *testing.T) {
	doer := &recordingDoer{response: &models.Response{
		StatusCode: http.StatusOK,
		File:       &models.FileDownload{Filename: "a.txt", Content: []byte("x")},
	}}
	client := New("https://acme.britive-app.com/api", doer)

	file, err := client.Download(context.Background(), "v1/secretmanager/vault/v1/secrets/file/downloadfile", nil)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", file.Filename)

	doer.response = &models.Response{StatusCode: http.StatusOK, Value: "text"}
	_, err = client.Download(context.Background(), "v1/x/downloadfile", nil)
	assert.Error(t, err)
}
