package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/sample"
	"github.com/hostwatch/hostwatch/internal/pkg/errors"
)

type SampleRepository struct {
	db *sql.DB
}

func NewSampleRepository(db *sql.DB) sample.Repository {
	return &SampleRepository{db: db}
}

const sampleColumns = `data_id, host_id, collected_at, created_at,
	int_ip, public_ip, kernel_name, kernel_version,
	cpu_pct, mem_used_mb, mem_total_mb, mem_pct,
	disk_used_gb, disk_total_gb, disk_pct,
	dataset_name, partition_key, files_count, size_bytes,
	min_event_ts, max_event_ts, extra`

func (r *SampleRepository) Insert(ctx context.Context, s *sample.Sample) (int64, error) {
	s.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO incoming_data (host_id, collected_at, created_at,
			int_ip, public_ip, kernel_name, kernel_version,
			cpu_pct, mem_used_mb, mem_total_mb, mem_pct,
			disk_used_gb, disk_total_gb, disk_pct,
			dataset_name, partition_key, files_count, size_bytes,
			min_event_ts, max_event_ts, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var extra interface{}
	if len(s.Extra) > 0 {
		extra = string(s.Extra)
	}

	result, err := r.db.ExecContext(ctx, query,
		s.HostID, formatTime(s.CollectedAt), formatTime(s.CreatedAt),
		s.IntIP, s.PublicIP, s.KernelName, s.KernelVersion,
		s.CPUPct, s.MemUsedMB, s.MemTotalMB, s.MemPct,
		s.DiskUsedGB, s.DiskTotalGB, s.DiskPct,
		s.DatasetName, s.PartitionKey, s.FilesCount, s.SizeBytes,
		formatTimePtr(s.MinEventTS), formatTimePtr(s.MaxEventTS), extra,
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to insert sample", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get sample ID", err)
	}
	s.ID = id

	return id, nil
}

func (r *SampleRepository) LatestForHost(ctx context.Context, hostID int64) (*sample.Sample, error) {
	// Retried sends can duplicate a collected_at; the secondary data_id sort
	// keeps the result deterministic in that case.
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sampleColumns+`
		FROM incoming_data
		WHERE host_id = ?
		ORDER BY collected_at DESC, data_id DESC
		LIMIT 1
	`, hostID)

	s, err := scanSample(row)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SampleRepository) ListForHost(ctx context.Context, hostID int64, from, to time.Time, limit int) ([]*sample.Sample, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sampleColumns+`
		FROM incoming_data
		WHERE host_id = ? AND collected_at >= ? AND collected_at <= ?
		ORDER BY collected_at DESC, data_id DESC
		LIMIT ?
	`, hostID, formatTime(from), formatTime(to), limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list samples", err)
	}
	defer rows.Close()

	var samples []*sample.Sample
	for rows.Next() {
		s, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate samples", err)
	}

	return samples, nil
}

func scanSample(row rowScanner) (*sample.Sample, error) {
	var s sample.Sample
	var collectedAt, createdAt string
	var minEventTS, maxEventTS, extra sql.NullString

	err := row.Scan(
		&s.ID, &s.HostID, &collectedAt, &createdAt,
		&s.IntIP, &s.PublicIP, &s.KernelName, &s.KernelVersion,
		&s.CPUPct, &s.MemUsedMB, &s.MemTotalMB, &s.MemPct,
		&s.DiskUsedGB, &s.DiskTotalGB, &s.DiskPct,
		&s.DatasetName, &s.PartitionKey, &s.FilesCount, &s.SizeBytes,
		&minEventTS, &maxEventTS, &extra,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Sample")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to scan sample", err)
	}

	s.CollectedAt = parseTime(collectedAt)
	s.CreatedAt = parseTime(createdAt)
	s.MinEventTS = parseTimePtr(minEventTS)
	s.MaxEventTS = parseTimePtr(maxEventTS)
	if extra.Valid && extra.String != "" {
		s.Extra = []byte(extra.String)
	}

	return &s, nil
}
