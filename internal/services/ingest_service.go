package services

import (
	"context"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/domain/sample"
	apperrors "github.com/hostwatch/hostwatch/internal/pkg/errors"
	"github.com/hostwatch/hostwatch/internal/pkg/logger"
	"github.com/hostwatch/hostwatch/internal/pkg/metrics"
)

// IngestService accepts authenticated metric reports and appends them to the
// sample store.
type IngestService struct {
	hosts   host.Repository
	samples sample.Repository
	logger  *logger.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(hosts host.Repository, samples sample.Repository, log *logger.Logger) *IngestService {
	return &IngestService{
		hosts:   hosts,
		samples: samples,
		logger:  log,
	}
}

// Ingest resolves the host behind hostKey, persists the sample and stamps the
// host's liveness. Success is defined solely by the sample write: a failed
// last_seen update is logged and swallowed. Identical retried reports insert
// a second row; read paths order by collected_at, which makes that benign.
func (s *IngestService) Ingest(ctx context.Context, hostKey string, smp *sample.Sample) (int64, error) {
	h, err := s.hosts.GetByKey(ctx, hostKey)
	if err != nil {
		// Unknown key and inactive host look identical on purpose
		return 0, apperrors.InvalidHostKey()
	}

	smp.HostID = h.ID
	if smp.CollectedAt.IsZero() {
		smp.CollectedAt = time.Now().UTC()
	}

	dataID, err := s.samples.Insert(ctx, smp)
	if err != nil {
		return 0, err
	}
	metrics.RecordSampleWritten()

	if err := s.hosts.TouchLastSeen(ctx, h.ID, time.Now().UTC()); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"host_id": h.ID,
		}).ErrorWithErr(err, "Failed to update last_seen")
	}

	s.logger.WithFields(map[string]interface{}{
		"host_id":      h.ID,
		"data_id":      dataID,
		"collected_at": smp.CollectedAt,
	}).Debug("Sample ingested")

	return dataID, nil
}
