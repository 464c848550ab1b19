// Package aiproxy is the coordinator-side HTTP client for the AI-tagging proxy.
package aiproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"phototagger/internal/domain"
)

type client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a domain.AIProxyClient for the proxy at baseURL.
func NewClient(httpClient *http.Client, baseURL string) domain.AIProxyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{httpClient: httpClient, baseURL: baseURL}
}

// envelope is the proxy's standard `{data, error}` response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *client) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ai/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProxyUnavailable, err)
	}
	defer resp.Body.Close()

	// No body contract beyond the status code.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", domain.ErrProxyUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *client) Analyze(ctx context.Context, photoID string) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := c.post(ctx, "/ai/analyze", map[string]string{"photo_id": photoID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) AnalyzeAndApply(ctx context.Context, photoID string) (*domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := c.post(ctx, "/ai/analyze-and-apply", map[string]string{"photo_id": photoID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) AnalyzeBatch(ctx context.Context, photoIDs []string, subBatchSize int) (*domain.BatchAnalysisResult, error) {
	body := map[string]any{"photo_ids": photoIDs, "sub_batch_size": subBatchSize}
	var result domain.BatchAnalysisResult
	if err := c.post(ctx, "/ai/analyze-batch", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *client) post(ctx context.Context, path string, body any, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call ai proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Proxies and gateways may answer errors with non-JSON bodies; the
		// envelope is best-effort here and the status is the real signal.
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != nil {
			return fmt.Errorf("ai proxy error %s: %s", env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("ai proxy returned status: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode ai proxy response: %w", err)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("failed to decode ai proxy data: %w", err)
	}
	return nil
}
