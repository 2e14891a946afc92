package mockapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-report/src/pkg/sales"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewServer(Options{APIKey: "test-key", RequestsPerSecond: 100, Burst: 100}))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string, token string, acceptEncoding string) *http.Response {
	t.Helper()
	request, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	if acceptEncoding != "" {
		request.Header.Set("Accept-Encoding", acceptEncoding)
	}

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

func TestGenerateOrdersIsDeterministic(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

	first := GenerateOrders(start, end)
	second := GenerateOrders(start, end)
	assert.Equal(t, first, second)
	assert.GreaterOrEqual(t, len(first), 7*3)

	for _, order := range first {
		for _, column := range sales.RequiredColumns {
			assert.Contains(t, order, column)
		}
	}
}

func TestSalesEndpointBrotli(t *testing.T) {
	server := newTestAPI(t)

	response := get(t, server.URL+"/sales?start_date=2025-01-01&end_date=2025-01-03", "test-key", "br")
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, "br", response.Header.Get("Content-Encoding"))

	body, err := io.ReadAll(brotli.NewReader(response.Body))
	require.NoError(t, err)

	var orders []map[string]any
	require.NoError(t, json.Unmarshal(body, &orders))
	assert.NotEmpty(t, orders)
}

func TestSalesEndpointRejectsBadRequests(t *testing.T) {
	server := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, get(t, server.URL+"/sales?start_date=2025-01-01&end_date=2025-01-03", "", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, server.URL+"/sales?start_date=2025-01-01&end_date=2025-01-03", "other", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, server.URL+"/sales?start_date=01-01-2025&end_date=2025-01-03", "test-key", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, server.URL+"/sales?start_date=2025-01-05&end_date=2025-01-03", "test-key", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, get(t, server.URL+"/sales?start_date=2020-01-01&end_date=2025-01-03", "test-key", "").StatusCode)
}

func TestHealthz(t *testing.T) {
	server := newTestAPI(t)
	assert.Equal(t, http.StatusOK, get(t, server.URL+"/healthz", "", "").StatusCode)
}
