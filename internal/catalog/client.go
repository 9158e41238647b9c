package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"modelsagent/internal/core"
	"modelsagent/internal/util"
)

// Client talks to the model catalog. It holds no per-request state and is
// shared by every request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	metrics    core.MetricsCollector
}

// NewClient creates a catalog client for baseURL. A zero timeout means core.DefaultCatalogTimeout.
func NewClient(httpClient *http.Client, baseURL string, timeout time.Duration, metrics core.MetricsCollector) *Client {
	if timeout <= 0 {
		timeout = core.DefaultCatalogTimeout
	}
	if metrics == nil {
		metrics = &core.NopMetrics{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		metrics:    metrics,
	}
}

// FetchModels returns the full model list.
func (c *Client) FetchModels(ctx context.Context) ([]core.ModelDescriptor, error) {
	var models []core.ModelDescriptor
	if err := c.getJSON(ctx, "model catalog", c.baseURL+"/models", &models); err != nil {
		return nil, err
	}
	return models, nil
}

// FetchSchema returns the invocation schema of one model.
func (c *Client) FetchSchema(ctx context.Context, registry, name string) (core.ModelSchema, error) {
	endpoint := fmt.Sprintf("%s/models/%s/%s/schema", c.baseURL, url.PathEscape(registry), url.PathEscape(name))

	var schema core.ModelSchema
	if err := c.getJSON(ctx, fmt.Sprintf("model schema %s/%s", registry, name), endpoint, &schema); err != nil {
		return core.ModelSchema{}, err
	}
	return schema, nil
}

func (c *Client) getJSON(ctx context.Context, target, endpoint string, out any) (err error) {
	start := time.Now()
	defer func() { c.metrics.RecordUpstreamCall("catalog", time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := util.NewJSONRequest(ctx, http.MethodGet, endpoint, nil, "")
	if err != nil {
		return core.NewUpstreamError(target, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.NewUpstreamError(target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := util.ReadLimitedBody(resp)
	if err != nil {
		return core.NewUpstreamError(target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return core.NewUpstreamError(target,
			fmt.Errorf("status %d: %s", resp.StatusCode, util.TruncateString(string(body), 100, 0, "...")))
	}

	if err := util.UnmarshalJSON(body, out); err != nil {
		return core.NewUpstreamError(target, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
