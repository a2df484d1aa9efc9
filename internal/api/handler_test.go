package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/furiview/furiview/internal/errors"
	"github.com/furiview/furiview/internal/logging"
	"github.com/furiview/furiview/internal/pipeline"
)

type stubProcessor struct {
	report *pipeline.Report
	err    error
	gotCtx context.Context
}

func (s *stubProcessor) Process(ctx context.Context, imageData []byte, filename string) (*pipeline.Report, error) {
	s.gotCtx = ctx
	return s.report, s.err
}

func newTestServer(t *testing.T, p Processor) *httptest.Server {
	t.Helper()
	h := NewHandler(p, 1<<20, t.TempDir(), logging.NewLogger("APITest"))
	mux := http.NewServeMux()
	h.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestProcessRejectsNonPost(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{})

	resp, err := http.Get(srv.URL + "/process")
	require.NoError(t, err)
	body := decodeBody(t, resp)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestProcessRejectsUnsupportedExtension(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{})
	body, contentType := multipartUpload(t, "doc.pdf", []byte("pdfdata"))

	resp, err := http.Post(srv.URL+"/process", contentType, body)
	require.NoError(t, err)
	payload := decodeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestProcessRejectsMissingFile(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{})

	resp, err := http.Post(srv.URL+"/process", "multipart/form-data; boundary=x", bytes.NewReader(nil))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcessReturnsReport(t *testing.T) {
	proc := &stubProcessor{report: &pipeline.Report{
		Success:        true,
		Timestamp:      "2026-01-01T00:00:00Z",
		AnnotatedImage: "outputs/annotated_x.png",
	}}
	srv := newTestServer(t, proc)
	body, contentType := multipartUpload(t, "page.png", []byte("fakepng"))

	resp, err := http.Post(srv.URL+"/process", contentType, body)
	require.NoError(t, err)
	payload := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "outputs/annotated_x.png", payload["annotated_image"])
}

func TestProcessPipelineFailureReturns500(t *testing.T) {
	proc := &stubProcessor{err: fmt.Errorf("stage blew up")}
	srv := newTestServer(t, proc)
	body, contentType := multipartUpload(t, "page.jpg", []byte("fakejpg"))

	resp, err := http.Post(srv.URL+"/process", contentType, body)
	require.NoError(t, err)
	payload := decodeBody(t, resp)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "stage blew up")
	assert.NotEmpty(t, payload["timestamp"])
}

func TestProcessStructuredFailureCarriesErrorCode(t *testing.T) {
	proc := &stubProcessor{err: apperrors.NewExtractionFailedError("req1", fmt.Errorf("engine down"))}
	srv := newTestServer(t, proc)
	body, contentType := multipartUpload(t, "page.png", []byte("fakepng"))

	resp, err := http.Post(srv.URL+"/process", contentType, body)
	require.NoError(t, err)
	payload := decodeBody(t, resp)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, string(apperrors.ErrorExtractionFailed), payload["error_code"])
	assert.Contains(t, payload["cause"], "engine down")
}

func TestRejectionPayloadCarriesErrorCode(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{})
	body, contentType := multipartUpload(t, "doc.gif", []byte("gifdata"))

	resp, err := http.Post(srv.URL+"/process", contentType, body)
	require.NoError(t, err)
	payload := decodeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(apperrors.ErrorInvalidInput), payload["error_code"])
}

func TestInfoEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	payload := decodeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "furiview", payload["service"])
}

func TestUnknownPathReturns404(t *testing.T) {
	srv := newTestServer(t, &stubProcessor{})

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
