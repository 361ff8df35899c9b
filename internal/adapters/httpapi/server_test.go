package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikey/email-scam-classifier/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type missingArtifactStore struct{}

func (missingArtifactStore) Load(ctx context.Context) (core.Classifier, error) {
	return nil, core.ErrArtifactNotFound
}

func newTestServer() *Server {
	service := core.NewPredictionService(missingArtifactStore{}, zap.NewNop())
	return NewServer(service, zap.NewNop(), "127.0.0.1:0")
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPredictValidation(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name string
		body string
	}{
		{"no body", ""},
		{"not json", "this is not json"},
		{"missing field", `{}`},
		{"empty text", `{"email_text": ""}`},
		{"whitespace only", `{"email_text": "   \n  "}`},
		{"too short", `{"email_text": "short"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, http.MethodPost, "/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestPredictSpamViaFallback(t *testing.T) {
	s := newTestServer()

	w := doRequest(t, s, http.MethodPost, "/predict",
		`{"email_text": "URGENT! verify your account now, click here, winner!"}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Spam", body["prediction"])
	assert.Equal(t, 0.85, body["confidence"])
}

func TestPredictNotSpamViaFallback(t *testing.T) {
	s := newTestServer()

	w := doRequest(t, s, http.MethodPost, "/predict",
		`{"email_text": "Hi, your order has been shipped. Thanks for shopping with us."}`)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Not Spam", body["prediction"])
	assert.Equal(t, 0.85, body["confidence"])
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	w := doRequest(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["model_loaded"])
	assert.Nil(t, body["model_type"])
}

func TestIndexPage(t *testing.T) {
	s := newTestServer()

	w := doRequest(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.True(t, strings.Contains(w.Body.String(), "Email Scam Classifier"))
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer()

	w := doRequest(t, s, http.MethodGet, "/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["error"])
}
