package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	client := NewClient("http://localhost:5000/api/", "")

	t.Run("Should join base and endpoint", func(t *testing.T) {
		assert.Equal(t, "http://localhost:5000/api/import-logs", client.URL(ImportLogsEndpoint))
		assert.Equal(t, "http://localhost:5000/api/jobs/stats", client.URL("/jobs/stats"))
	})

	t.Run("Should pass absolute URLs through", func(t *testing.T) {
		assert.Equal(t, "http://other:9000/queue/stats", client.URL("http://other:9000/queue/stats"))
	})
}

func TestTriggerImport(t *testing.T) {
	var received TriggerImportRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/jobs/trigger-import", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"jobId":"abc","importLogId":42}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/api", "token-1")
	resp, err := client.TriggerImport(context.Background(), TriggerImportRequest{
		APIName:     "Indeed Jobs",
		APIURL:      "https://api.indeed.com/jobs",
		Type:        "json",
		TriggeredBy: "manual",
	})

	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "Bearer token-1", authHeader)
	assert.Equal(t, "Indeed Jobs", received.APIName)
	assert.Equal(t, "https://api.indeed.com/jobs", received.APIURL)
	assert.Equal(t, "json", received.Type)
	assert.Equal(t, "manual", received.TriggeredBy)
}

func TestRetryCount(t *testing.T) {
	t.Run("Should not retry server errors by default", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		resp, err := client.GetJobStats(context.Background())

		require.NoError(t, err)
		assert.False(t, resp.IsSuccess())
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("Should retry server errors when enabled", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "")
		client.SetRetryCount(2)
		resp, err := client.ListImportLogs(context.Background())

		require.NoError(t, err)
		assert.True(t, resp.IsSuccess())
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}

func TestSetToken(t *testing.T) {
	headers := make(chan string, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	client.SetToken("rotated")
	_, err := client.GetQueueStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer rotated", <-headers)

	client.SetToken("")
	_, err = client.GetQueueStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, <-headers)
}
