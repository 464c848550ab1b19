// Package photoapi is the HTTP client for the external photo REST backend.
package photoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"phototagger/internal/domain"
)

// maxImageBytes bounds how much image data one fetch may read.
const maxImageBytes = 32 << 20

type client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient returns a domain.PhotoBackend talking to the photo service at
// baseURL. token, if non-empty, is sent as a Bearer token on every request.
func NewClient(httpClient *http.Client, baseURL, token string) domain.PhotoBackend {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{httpClient: httpClient, baseURL: baseURL, token: token}
}

func (c *client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *client) ListPhotos(ctx context.Context) ([]*domain.Photo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/photos", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photo api returned status: %d", resp.StatusCode)
	}

	var photos []*domain.Photo
	if err := json.NewDecoder(resp.Body).Decode(&photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos response: %w", err)
	}
	return photos, nil
}

func (c *client) FetchImage(ctx context.Context, photoID string) ([]byte, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/photos/"+photoID+"/image", nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("photo api returned status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (c *client) ApplyTags(ctx context.Context, photoID string, tags []string) error {
	payload, err := json.Marshal(map[string][]string{"tags": tags})
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/api/photos/"+photoID+"/tags", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to apply tags: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("photo api returned status: %d", resp.StatusCode)
	}
	return nil
}
