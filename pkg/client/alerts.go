package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AlertService handles alert API calls
type AlertService struct {
	client *Client
}

// AlertListOptions contains options for listing alerts
type AlertListOptions struct {
	HostID   int64
	CheckID  int64
	Status   string
	Severity string
	Limit    int
}

// List retrieves alerts, newest first
func (s *AlertService) List(ctx context.Context, opts *AlertListOptions) ([]Alert, error) {
	query := url.Values{}
	if opts != nil {
		if opts.HostID > 0 {
			query.Set("host_id", strconv.FormatInt(opts.HostID, 10))
		}
		if opts.CheckID > 0 {
			query.Set("check_id", strconv.FormatInt(opts.CheckID, 10))
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
		if opts.Severity != "" {
			query.Set("severity", opts.Severity)
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	path := "/api/v1/alerts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	var alerts []Alert
	if err := json.Unmarshal(env.Data, &alerts); err != nil {
		return nil, fmt.Errorf("failed to parse alerts: %w", err)
	}
	return alerts, nil
}

// Get retrieves one alert by ID
func (s *AlertService) Get(ctx context.Context, id int64) (*Alert, error) {
	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodGet, fmt.Sprintf("/api/v1/alerts/%d", id), nil, &env); err != nil {
		return nil, err
	}
	var a Alert
	if err := json.Unmarshal(env.Data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse alert: %w", err)
	}
	return &a, nil
}

// Acknowledge silences an open alert until it is resolved out of band
func (s *AlertService) Acknowledge(ctx context.Context, id int64) error {
	return s.client.admin(ctx, http.MethodPost, fmt.Sprintf("/api/v1/alerts/%d/ack", id), nil, nil)
}

// Summary retrieves alert counts per status
func (s *AlertService) Summary(ctx context.Context) (map[string]int, error) {
	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodGet, "/api/v1/alerts/summary", nil, &env); err != nil {
		return nil, err
	}
	var counts map[string]int
	if err := json.Unmarshal(env.Data, &counts); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return counts, nil
}
