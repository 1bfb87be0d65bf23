package importer

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *fakeCatalog) {
	t.Helper()
	cat := newFakeCatalog()
	handler := NewHandler(slog.Default(), NewService(cat, nil, 0, nil))
	router := chi.NewRouter()
	handler.Routes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, cat
}

func multipartUpload(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "products.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHandlerPreviewThenCommit(t *testing.T) {
	srv, cat := newTestServer(t)

	body, contentType := multipartUpload(t, genericCSV)
	resp, err := http.Post(srv.URL+"/import/preview", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview PreviewReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&preview))
	require.Equal(t, 2, preview.ValidRows)
	require.NotEmpty(t, preview.Token)

	commit, err := http.Post(srv.URL+"/import/"+preview.Token+"/commit", "application/json",
		strings.NewReader(`{"update_existing":false}`))
	require.NoError(t, err)
	defer commit.Body.Close()
	require.Equal(t, http.StatusOK, commit.StatusCode)

	var report CommitReport
	require.NoError(t, json.NewDecoder(commit.Body).Decode(&report))
	require.Equal(t, 2, report.Inserted)
	require.Len(t, cat.products, 2)
}

func TestHandlerPreviewRawBody(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/import/preview", "text/csv", strings.NewReader(genericCSV))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandlerPreviewUnrecognizedFormat(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/import/preview", "text/csv", strings.NewReader("foo,bar\n1,2\n"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerCommitUnknownToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/import/nope/commit", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
