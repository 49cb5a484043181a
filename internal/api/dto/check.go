package dto

import "encoding/json"

// BindCheckRequest attaches a check kind to a host, optionally overriding
// the kind's default parameters.
type BindCheckRequest struct {
	CheckKey string          `json:"check_key" validate:"required,max=64"`
	Enabled  *bool           `json:"enabled"`
	Params   json.RawMessage `json:"params"`
}

// IsEnabled defaults a missing enabled flag to true.
func (r *BindCheckRequest) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}
