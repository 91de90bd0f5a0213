package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chikondi-pos/models"
)

// requestTimeout bounds one sync round trip. Rural connections are slow but
// a hung request must not wedge the worker.
const requestTimeout = 15 * time.Second

// Client talks to the sync backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// Push sends one batch of unsynced records to POST /api/sync. Any transport
// failure, non-2xx status or success=false reply counts as a failed push.
func (c *Client) Push(ctx context.Context, batch *models.SyncBatch) (*models.SyncResponse, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encode sync batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sync", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync request: %w", err)
	}
	defer resp.Body.Close()

	var sr models.SyncResponse
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies may not be JSON; the status alone is enough
		_ = json.NewDecoder(resp.Body).Decode(&sr)
		return &sr, fmt.Errorf("sync rejected: status %d: %s", resp.StatusCode, sr.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode sync response: %w", err)
	}
	if !sr.Success {
		return &sr, fmt.Errorf("sync rejected: %s", sr.Error)
	}
	return &sr, nil
}

// Health checks whether the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check: status %d", resp.StatusCode)
	}
	return nil
}
