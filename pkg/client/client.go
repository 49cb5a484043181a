package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a hostwatch collector. Agent calls authenticate with the
// host key, admin calls with the admin token; a client may carry either or
// both.
type Client struct {
	baseURL    string
	httpClient *http.Client
	hostKey    string
	adminToken string
	maxRetries int
}

// Config holds the client configuration
type Config struct {
	BaseURL    string        // collector base URL (e.g. "http://collector:8080")
	HostKey    string        // host key for report submission
	AdminToken string        // admin token for management calls
	Timeout    time.Duration // HTTP client timeout (default: 30s)
	MaxRetries int           // retries for transient report failures (default: 3)
	HTTPClient *http.Client  // optional custom HTTP client
}

// NewClient creates a new hostwatch API client
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		hostKey:    cfg.HostKey,
		adminToken: cfg.AdminToken,
		maxRetries: cfg.MaxRetries,
	}
}

// doRequest performs one HTTP round trip with the given bearer credential.
func (c *Client) doRequest(ctx context.Context, method, path, bearer string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr APIError
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
		}
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// admin performs an admin-token request.
func (c *Client) admin(ctx context.Context, method, path string, body, result interface{}) error {
	return c.doRequest(ctx, method, path, c.adminToken, body, result)
}

// Hosts returns the host management service
func (c *Client) Hosts() *HostService {
	return &HostService{client: c}
}

// Alerts returns the alert service
func (c *Client) Alerts() *AlertService {
	return &AlertService{client: c}
}

// Checks returns the check configuration service
func (c *Client) Checks() *CheckService {
	return &CheckService{client: c}
}
