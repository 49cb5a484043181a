package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hostwatch/hostwatch/internal/domain/check"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
)

// CheckService resolves per-host check configuration.
type CheckService struct {
	repo   check.Repository
	logger *logger.Logger
}

// NewCheckService creates a new check service
func NewCheckService(repo check.Repository, log *logger.Logger) *CheckService {
	return &CheckService{
		repo:   repo,
		logger: log,
	}
}

// ListKinds retrieves the check catalog
func (s *CheckService) ListKinds(ctx context.Context) ([]*check.Kind, error) {
	return s.repo.ListKinds(ctx)
}

// ListBindings retrieves a host's bindings
func (s *CheckService) ListBindings(ctx context.Context, hostID int64) ([]*check.Binding, error) {
	return s.repo.ListBindings(ctx, hostID)
}

// Bind creates or updates a host's binding for a check kind identified by key.
func (s *CheckService) Bind(ctx context.Context, hostID int64, checkKey string, enabled bool, params json.RawMessage) (*check.Binding, error) {
	k, err := s.repo.GetKindByKey(ctx, checkKey)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		var probe map[string]interface{}
		if err := json.Unmarshal(params, &probe); err != nil {
			return nil, apperrors.BadRequest("Binding parameters must be a JSON object")
		}
	}

	b := &check.Binding{
		HostID:  hostID,
		CheckID: k.ID,
		Enabled: enabled,
		Params:  params,
	}
	if err := s.repo.Upsert(ctx, b); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"host_id":   hostID,
		"check_key": checkKey,
		"enabled":   enabled,
	}).Info("Check binding updated")

	return b, nil
}

// Unbind removes a host's binding for a check kind identified by key.
func (s *CheckService) Unbind(ctx context.Context, hostID int64, checkKey string) error {
	k, err := s.repo.GetKindByKey(ctx, checkKey)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, hostID, k.ID)
}

// ResolveFor returns the checks enabled for a host with parameters merged
// (kind defaults overlaid by binding overrides, override wins per key). A row
// whose parameter JSON is malformed is skipped and reported as a
// configuration error alongside the usable checks.
func (s *CheckService) ResolveFor(ctx context.Context, hostID int64) ([]*check.Resolved, []error, error) {
	rows, err := s.repo.BindingsFor(ctx, hostID)
	if err != nil {
		return nil, nil, err
	}

	var resolved []*check.Resolved
	var configErrs []error
	for _, row := range rows {
		params, err := check.MergeParams(row.DefaultParams, row.Params)
		if err != nil {
			configErrs = append(configErrs, apperrors.Configuration(
				fmt.Sprintf("check %q: malformed parameter JSON: %v", row.Key, err)))
			continue
		}

		resolved = append(resolved, &check.Resolved{
			CheckID:   row.CheckID,
			Name:      row.Name,
			Key:       row.Key,
			Evaluator: row.Evaluator,
			Severity:  row.Severity,
			Params:    params,
		})
	}

	return resolved, configErrs, nil
}
