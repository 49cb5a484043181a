package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
)

// HostService implements host.Service
type HostService struct {
	repo   host.Repository
	logger *logger.Logger
}

// NewHostService creates a new host service
func NewHostService(repo host.Repository, log *logger.Logger) host.Service {
	return &HostService{
		repo:   repo,
		logger: log,
	}
}

// Register creates a new host. When key is empty a random one is generated;
// either way the key is immutable afterwards.
func (s *HostService) Register(ctx context.Context, name, osName, osVersion, key string) (*host.Host, error) {
	if name == "" {
		return nil, errors.BadRequest("Host name is required")
	}
	if len(name) > 255 {
		return nil, errors.BadRequest("Host name must be 255 characters or less")
	}

	if key == "" {
		generated, err := generateHostKey()
		if err != nil {
			return nil, errors.Internal("Failed to generate host key", err)
		}
		key = generated
	}
	if len(key) > host.MaxKeyLen {
		return nil, errors.BadRequest(fmt.Sprintf("Host key must be %d characters or less", host.MaxKeyLen))
	}

	h := &host.Host{
		Name:      name,
		Key:       key,
		OSName:    osName,
		OSVersion: osVersion,
		IsActive:  true,
	}

	if _, err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"host_id":   h.ID,
		"host_name": h.Name,
	}).Info("Host registered")

	return h, nil
}

// Get retrieves a host by ID
func (s *HostService) Get(ctx context.Context, id int64) (*host.Host, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all hosts
func (s *HostService) List(ctx context.Context) ([]*host.Host, error) {
	return s.repo.List(ctx)
}

// Deactivate marks a host inactive
func (s *HostService) Deactivate(ctx context.Context, id int64) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"host_id": id,
	}).Info("Host deactivated")

	return nil
}

// generateHostKey returns a 43-character URL-safe random key, comfortably
// inside the 64-character column.
func generateHostKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
