package signature

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"modelsagent/internal/core"
	"modelsagent/internal/util"
)

// KeySource returns the calling platform's current public key set.
type KeySource interface {
	Fetch(ctx context.Context, token string) ([]core.PublicKey, error)
}

type keysPayload struct {
	PublicKeys []core.PublicKey `json:"public_keys"`
}

// KeyFetcher downloads the public key set from the key distribution endpoint.
type KeyFetcher struct {
	httpClient *http.Client
	keysURL    string
	timeout    time.Duration
	metrics    core.MetricsCollector
}

// NewKeyFetcher creates a fetcher for keysURL. A zero timeout means core.DefaultKeyFetchTimeout.
func NewKeyFetcher(httpClient *http.Client, keysURL string, timeout time.Duration, metrics core.MetricsCollector) *KeyFetcher {
	if timeout <= 0 {
		timeout = core.DefaultKeyFetchTimeout
	}
	if metrics == nil {
		metrics = &core.NopMetrics{}
	}
	return &KeyFetcher{httpClient: httpClient, keysURL: keysURL, timeout: timeout, metrics: metrics}
}

// Fetch performs one authenticated GET against the key endpoint. The token
// authenticates the fetch only.
func (f *KeyFetcher) Fetch(ctx context.Context, token string) (keys []core.PublicKey, err error) {
	start := time.Now()
	defer func() { f.metrics.RecordUpstreamCall("keys", time.Since(start), err) }()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := util.NewJSONRequest(ctx, http.MethodGet, f.keysURL, nil, token)
	if err != nil {
		return nil, core.NewUpstreamError("key endpoint", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, core.NewUpstreamError("key endpoint", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := util.ReadLimitedBody(resp)
	if err != nil {
		return nil, core.NewUpstreamError("key endpoint", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, core.NewUpstreamError("key endpoint",
			fmt.Errorf("status %d: %s", resp.StatusCode, util.TruncateString(string(body), 100, 0, "...")))
	}

	var payload keysPayload
	if err := util.UnmarshalJSON(body, &payload); err != nil {
		return nil, core.NewUpstreamError("key endpoint", fmt.Errorf("decode key set: %w", err))
	}
	return payload.PublicKeys, nil
}

func findKey(keys []core.PublicKey, keyID string) (core.PublicKey, bool) {
	for _, k := range keys {
		if k.KeyIdentifier == keyID {
			return k, true
		}
	}
	return core.PublicKey{}, false
}
