package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ReportResult acknowledges a stored report.
type ReportResult struct {
	OK     bool  `json:"ok"`
	DataID int64 `json:"data_id"`
}

// Report submits one metric sample using the host key, retrying transient
// failures with exponential backoff. Rejections with a 4xx code are
// permanent and returned immediately.
func (c *Client) Report(ctx context.Context, report *Report) (int64, error) {
	if c.hostKey == "" {
		return 0, fmt.Errorf("host key not configured")
	}

	backoff := time.Second
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
			backoff *= 2
		}

		var result ReportResult
		err := c.doRequest(ctx, http.MethodPost, "/report", c.hostKey, report, &result)
		if err == nil {
			return result.DataID, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.Retryable() {
			return 0, err
		}
	}

	return 0, fmt.Errorf("report failed after %d attempts: %w", c.maxRetries+1, lastErr)
}
