package services

import (
	"context"
	"testing"

	"github.com/hostwatch/hostwatch/internal/domain/host"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHostFixture(t *testing.T) (host.Service, *testutil.MockHostRepository) {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	repo := testutil.NewMockHostRepository()
	return NewHostService(repo, log), repo
}

func TestRegisterGeneratesKey(t *testing.T) {
	svc, _ := newHostFixture(t)

	h, err := svc.Register(context.Background(), "web-1", "linux", "6.8", "")
	require.NoError(t, err)
	assert.NotEmpty(t, h.Key)
	assert.LessOrEqual(t, len(h.Key), host.MaxKeyLen)
	assert.True(t, h.IsActive)

	// Generated keys must not collide across hosts
	h2, err := svc.Register(context.Background(), "web-2", "linux", "6.8", "")
	require.NoError(t, err)
	assert.NotEqual(t, h.Key, h2.Key)
}

func TestRegisterKeepsProvidedKey(t *testing.T) {
	svc, _ := newHostFixture(t)

	h, err := svc.Register(context.Background(), "web-1", "", "", "my-agent-key")
	require.NoError(t, err)
	assert.Equal(t, "my-agent-key", h.Key)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newHostFixture(t)

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name     string
		hostName string
		key      string
	}{
		{"empty name", "", ""},
		{"name too long", string(long), ""},
		{"key too long", "web-1", string(long)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.hostName, "", "", tt.key)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.ErrCodeBadRequest, appErr.Code)
		})
	}
}

func TestRegisterDuplicateName(t *testing.T) {
	svc, _ := newHostFixture(t)

	_, err := svc.Register(context.Background(), "web-1", "", "", "")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "web-1", "", "", "")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrCodeConflict, appErr.Code)
}

func TestDeactivateHidesHostFromActiveList(t *testing.T) {
	svc, repo := newHostFixture(t)

	h, err := svc.Register(context.Background(), "web-1", "", "", "")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), h.ID))

	active, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
