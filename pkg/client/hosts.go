package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// HostService handles host management API calls
type HostService struct {
	client *Client
}

// RegisterHostRequest creates a new monitored host
type RegisterHostRequest struct {
	Name      string `json:"name"`
	OSName    string `json:"os_name,omitempty"`
	OSVersion string `json:"os_version,omitempty"`
	Key       string `json:"key,omitempty"`
}

// Register creates a host. The returned host carries the key exactly once;
// store it, it cannot be retrieved again.
func (s *HostService) Register(ctx context.Context, req *RegisterHostRequest) (*Host, error) {
	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodPost, "/api/v1/hosts", req, &env); err != nil {
		return nil, err
	}
	var h Host
	if err := json.Unmarshal(env.Data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse host: %w", err)
	}
	return &h, nil
}

// List retrieves all hosts
func (s *HostService) List(ctx context.Context) ([]Host, error) {
	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodGet, "/api/v1/hosts", nil, &env); err != nil {
		return nil, err
	}
	var hosts []Host
	if err := json.Unmarshal(env.Data, &hosts); err != nil {
		return nil, fmt.Errorf("failed to parse hosts: %w", err)
	}
	return hosts, nil
}

// Get retrieves one host by ID
func (s *HostService) Get(ctx context.Context, id int64) (*Host, error) {
	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodGet, fmt.Sprintf("/api/v1/hosts/%d", id), nil, &env); err != nil {
		return nil, err
	}
	var h Host
	if err := json.Unmarshal(env.Data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse host: %w", err)
	}
	return &h, nil
}

// Deactivate marks a host inactive
func (s *HostService) Deactivate(ctx context.Context, id int64) error {
	return s.client.admin(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/hosts/%d", id), nil, nil)
}

// SampleListOptions narrows a sample listing
type SampleListOptions struct {
	From  string // RFC3339
	To    string // RFC3339
	Limit int
}

// Samples retrieves a host's recent samples, newest first
func (s *HostService) Samples(ctx context.Context, hostID int64, opts *SampleListOptions) ([]Sample, error) {
	query := url.Values{}
	if opts != nil {
		if opts.From != "" {
			query.Set("from", opts.From)
		}
		if opts.To != "" {
			query.Set("to", opts.To)
		}
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
	}

	path := fmt.Sprintf("/api/v1/hosts/%d/samples", hostID)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	var samples []Sample
	if err := json.Unmarshal(env.Data, &samples); err != nil {
		return nil, fmt.Errorf("failed to parse samples: %w", err)
	}
	return samples, nil
}
