package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/host"
	"github.com/hostwatch/hostwatch/internal/pkg/errors"
)

type HostRepository struct {
	db *sql.DB
}

func NewHostRepository(db *sql.DB) host.Repository {
	return &HostRepository{db: db}
}

func (r *HostRepository) Create(ctx context.Context, h *host.Host) (int64, error) {
	h.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO hosts (host_name, host_key, os_name, os_version, is_active, last_seen, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		h.Name, h.Key, nullString(h.OSName), nullString(h.OSVersion),
		boolToInt(h.IsActive), formatTimePtr(h.LastSeen), formatTime(h.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, errors.Conflict("Host name or key already exists")
		}
		return 0, errors.DatabaseError("Failed to create host", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get host ID", err)
	}
	h.ID = id

	return id, nil
}

func (r *HostRepository) GetByID(ctx context.Context, id int64) (*host.Host, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT host_id, host_name, host_key, os_name, os_version, is_active, last_seen, created_at
		FROM hosts WHERE host_id = ?
	`, id)
	return scanHost(row)
}

func (r *HostRepository) GetByKey(ctx context.Context, key string) (*host.Host, error) {
	// Inactive hosts are filtered here, not after the fact, so that an
	// unknown key and a deactivated host are indistinguishable to the caller.
	row := r.db.QueryRowContext(ctx, `
		SELECT host_id, host_name, host_key, os_name, os_version, is_active, last_seen, created_at
		FROM hosts WHERE host_key = ? AND is_active = 1
	`, key)
	return scanHost(row)
}

func (r *HostRepository) TouchLastSeen(ctx context.Context, id int64, t time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE hosts SET last_seen = ? WHERE host_id = ?`,
		formatTime(t), id,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update last_seen", err)
	}
	return nil
}

func (r *HostRepository) ListActive(ctx context.Context) ([]*host.Host, error) {
	return r.list(ctx, `
		SELECT host_id, host_name, host_key, os_name, os_version, is_active, last_seen, created_at
		FROM hosts WHERE is_active = 1 ORDER BY host_name
	`)
}

func (r *HostRepository) List(ctx context.Context) ([]*host.Host, error) {
	return r.list(ctx, `
		SELECT host_id, host_name, host_key, os_name, os_version, is_active, last_seen, created_at
		FROM hosts ORDER BY host_name
	`)
}

func (r *HostRepository) Deactivate(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE hosts SET is_active = 0 WHERE host_id = ?`, id)
	if err != nil {
		return errors.DatabaseError("Failed to deactivate host", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Host")
	}

	return nil
}

func (r *HostRepository) list(ctx context.Context, query string) ([]*host.Host, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list hosts", err)
	}
	defer rows.Close()

	var hosts []*host.Host
	for rows.Next() {
		h, err := scanHost(rows)
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate hosts", err)
	}

	return hosts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHost(row rowScanner) (*host.Host, error) {
	var h host.Host
	var osName, osVersion, lastSeen sql.NullString
	var isActive int
	var createdAt string

	err := row.Scan(&h.ID, &h.Name, &h.Key, &osName, &osVersion, &isActive, &lastSeen, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Host")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to scan host", err)
	}

	h.OSName = osName.String
	h.OSVersion = osVersion.String
	h.IsActive = isActive != 0
	h.LastSeen = parseTimePtr(lastSeen)
	h.CreatedAt = parseTime(createdAt)

	return &h, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
