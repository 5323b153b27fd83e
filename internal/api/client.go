package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Backend endpoints, relative to the API base
const (
	ImportLogsEndpoint    = "import-logs"
	JobStatsEndpoint      = "jobs/stats"
	QueueStatsEndpoint    = "queue/stats"
	TriggerImportEndpoint = "jobs/trigger-import"
)

// TriggerImportRequest is the body of POST /jobs/trigger-import
type TriggerImportRequest struct {
	APIName     string `json:"apiName"`
	APIURL      string `json:"apiUrl"`
	Type        string `json:"type"`
	TriggeredBy string `json:"triggeredBy"`
}

// Client represents a job import backend API client
type Client struct {
	baseURL string
	http    *resty.Client
}

// NewClient creates a new backend client. token may be empty.
func NewClient(baseURL, token string) *Client {
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}

	client.http = resty.New().
		SetHeader("User-Agent", "jobprompter-desktop/1.0").
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second).
		SetRetryCount(0).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry on 429 (Too Many Requests) and 5xx server errors
			return r.StatusCode() == 429 || (r.StatusCode() >= 500 && r.StatusCode() <= 504)
		})

	if token != "" {
		client.http.SetAuthToken(token)
	}

	return client
}

// BaseURL returns the API base without trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL returns the absolute URL of an endpoint
func (c *Client) URL(endpoint string) string {
	return c.buildURL(endpoint)
}

// Get performs a GET request against the backend. endpoint may also be an absolute URL.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string) (*resty.Response, error) {
	req := c.http.R().SetContext(ctx)

	if params != nil {
		req.SetQueryParams(params)
	}

	return req.Get(c.buildURL(endpoint))
}

// Post performs a JSON POST request against the backend
func (c *Client) Post(ctx context.Context, endpoint string, payload interface{}) (*resty.Response, error) {
	return c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.buildURL(endpoint))
}

// ListImportLogs fetches the import history
func (c *Client) ListImportLogs(ctx context.Context) (*resty.Response, error) {
	return c.Get(ctx, ImportLogsEndpoint, nil)
}

// GetJobStats fetches the aggregate job statistics
func (c *Client) GetJobStats(ctx context.Context) (*resty.Response, error) {
	return c.Get(ctx, JobStatsEndpoint, nil)
}

// GetQueueStats fetches the import queue statistics
func (c *Client) GetQueueStats(ctx context.Context) (*resty.Response, error) {
	return c.Get(ctx, QueueStatsEndpoint, nil)
}

// TriggerImport asks the backend to start an import
func (c *Client) TriggerImport(ctx context.Context, req TriggerImportRequest) (*resty.Response, error) {
	return c.Post(ctx, TriggerImportEndpoint, req)
}

// buildURL constructs the full URL for an endpoint
func (c *Client) buildURL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	endpoint = strings.TrimPrefix(endpoint, "/")
	return fmt.Sprintf("%s/%s", c.baseURL, endpoint)
}

// SetTimeout allows customizing the request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.http.SetTimeout(timeout)
}

// SetRetryCount enables resty retries on 429/5xx; zero disables them
func (c *Client) SetRetryCount(count int) {
	c.http.SetRetryCount(count)
}

// SetToken replaces the bearer token; an empty token removes it
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}
