package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// CheckService handles check catalog and binding API calls
type CheckService struct {
	client *Client
}

// BindCheckRequest attaches a check kind to a host
type BindCheckRequest struct {
	CheckKey string          `json:"check_key"`
	Enabled  *bool           `json:"enabled,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
}

// ListKinds retrieves the check catalog
func (s *CheckService) ListKinds(ctx context.Context) ([]CheckKind, error) {
	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodGet, "/api/v1/checks", nil, &env); err != nil {
		return nil, err
	}
	var kinds []CheckKind
	if err := json.Unmarshal(env.Data, &kinds); err != nil {
		return nil, fmt.Errorf("failed to parse check kinds: %w", err)
	}
	return kinds, nil
}

// ListBindings retrieves a host's check bindings
func (s *CheckService) ListBindings(ctx context.Context, hostID int64) ([]Binding, error) {
	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodGet, fmt.Sprintf("/api/v1/hosts/%d/checks", hostID), nil, &env); err != nil {
		return nil, err
	}
	var bindings []Binding
	if err := json.Unmarshal(env.Data, &bindings); err != nil {
		return nil, fmt.Errorf("failed to parse bindings: %w", err)
	}
	return bindings, nil
}

// Bind creates or updates a host's binding for a check kind
func (s *CheckService) Bind(ctx context.Context, hostID int64, req *BindCheckRequest) (*Binding, error) {
	var env dataEnvelope
	if err := s.client.admin(ctx, http.MethodPut, fmt.Sprintf("/api/v1/hosts/%d/checks", hostID), req, &env); err != nil {
		return nil, err
	}
	var b Binding
	if err := json.Unmarshal(env.Data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse binding: %w", err)
	}
	return &b, nil
}

// Unbind removes a host's binding for a check kind
func (s *CheckService) Unbind(ctx context.Context, hostID int64, checkKey string) error {
	return s.client.admin(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/hosts/%d/checks/%s", hostID, checkKey), nil, nil)
}

// Evaluate triggers an evaluation pass and returns its summary
func (c *Client) Evaluate(ctx context.Context) (*PassSummary, error) {
	var env dataEnvelope
	if err := c.admin(ctx, http.MethodPost, "/api/v1/evaluate", nil, &env); err != nil {
		return nil, err
	}
	var summary PassSummary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse pass summary: %w", err)
	}
	return &summary, nil
}

// Health probes the collector's health endpoint
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", "", nil, nil)
}
