package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/cat62"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/plots"
	"github.com/lakshya1729git/cat62-asterix-encoder-decoder/internal/storage"
)

const samplePlotsJSON = `{
  "plots": [
    {
      "I062/105": {"lat": 28.6139, "lon": 77.2090},
      "I062/136": {"measured_flight_level": 100.0},
      "I062/185": {"vx": 50.0, "vy": 100.0},
      "I062/220": {"rocd": 500.0},
      "time_of_track": "2026-02-21T09:48:00Z"
    }
  ]
}`

func newTestServer(t *testing.T, archive *storage.DB) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	codec := cat62.NewCodec(logger)
	encoder := plots.NewEncoder(codec, logger, plots.DefaultSAC, plots.DefaultSIC)
	decoder := plots.NewDecoder(codec, logger)

	return New(encoder, decoder, logger, Options{
		Addr:     ":0",
		Archive:  archive,
		TrackTTL: time.Minute,
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "CAT62 ASTERIX API", body["service"])
}

func TestEncodeEndpointRawBody(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/encode", bytes.NewReader([]byte(samplePlotsJSON)))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/octet-stream", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "cat62_output.bin")

	block := rr.Body.Bytes()
	require.GreaterOrEqual(t, len(block), 3)
	assert.Equal(t, byte(0x3E), block[0])
}

func TestEncodeEndpointMultipart(t *testing.T) {
	srv := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "plots.json")
	require.NoError(t, err)
	_, err = fw.Write([]byte(samplePlotsJSON))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/encode", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, byte(0x3E), rr.Body.Bytes()[0])
}

func TestEncodeEndpointErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"malformed JSON", "{{{", http.StatusBadRequest},
		{"missing plots", `{"plots": []}`, http.StatusUnprocessableEntity},
		{"incomplete plot", `{"plots": [{"time_of_track": "2026-02-21T09:48:00Z"}]}`, http.StatusUnprocessableEntity},
	}

	srv := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/encode", bytes.NewReader([]byte(tt.body)))
			rr := httptest.NewRecorder()
			srv.Router().ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
		})
	}
}

func encodeSample(t *testing.T, srv *Server) []byte {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/encode", bytes.NewReader([]byte(samplePlotsJSON)))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	block, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	return block
}

func TestDecodeEndpointRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)
	block := encodeSample(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/decode?reference_date=2026-02-21", bytes.NewReader(block))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp plots.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)

	rec := resp.Records[0]
	require.NotNil(t, rec.TrackNumber)
	assert.Equal(t, 1, *rec.TrackNumber)
	require.NotNil(t, rec.TimeOfTrackISO)
	assert.Equal(t, "2026-02-21T09:48:00Z", *rec.TimeOfTrackISO)
	assert.Equal(t, "F50A", rec.FSPECHex)
}

func TestDecodeEndpointStructuralFault(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/decode", bytes.NewReader([]byte{0x15, 0x00, 0x03}))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "category")
}

func TestTracksEndpointPopulatedByDecode(t *testing.T) {
	srv := newTestServer(t, nil)
	block := encodeSample(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/decode", bytes.NewReader(block))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tracks", nil)
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Count  int                 `json:"count"`
		Tracks []plots.TrackRecord `json:"tracks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, 1, *body.Tracks[0].TrackNumber)
}

func TestOperationsEndpoint(t *testing.T) {
	archive, err := storage.Open(filepath.Join(t.TempDir(), "ops.db"))
	require.NoError(t, err)
	defer archive.Close()

	srv := newTestServer(t, archive)
	block := encodeSample(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/decode", bytes.NewReader(block))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/operations", nil)
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Count      int                 `json:"count"`
		Operations []storage.Operation `json:"operations"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count) // one encode, one decode
	assert.Equal(t, "decode", body.Operations[0].Direction)
	assert.Equal(t, "encode", body.Operations[1].Direction)
}

func TestOperationsEndpointWithoutArchive(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/operations", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORSPreflights(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/encode", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
