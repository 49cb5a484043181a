package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/alert"
	"github.com/hostwatch/hostwatch/internal/pkg/errors"
)

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) alert.Repository {
	return &AlertRepository{db: db}
}

const alertColumns = `alert_id, host_id, check_id, data_id, triggered_at, severity,
	message, status, last_notified_at, created_at, updated_at`

func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) (int64, error) {
	now := time.Now().UTC()
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = now
	}
	if a.Status == "" {
		a.Status = alert.StatusOpen
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	query := `
		INSERT INTO alerts (host_id, check_id, data_id, triggered_at, severity, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		a.HostID, a.CheckID, a.SampleID, formatTime(a.TriggeredAt),
		a.Severity, a.Message, a.Status, formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create alert", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get alert ID", err)
	}
	a.ID = id

	return id, nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*alert.Alert, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM alerts WHERE alert_id = ?`, id)
	return scanAlert(row)
}

func (r *AlertRepository) CurrentStatus(ctx context.Context, hostID, checkID int64) (string, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `
		SELECT status FROM alerts
		WHERE host_id = ? AND check_id = ?
		ORDER BY triggered_at DESC, alert_id DESC
		LIMIT 1
	`, hostID, checkID).Scan(&status)

	if err == sql.ErrNoRows {
		return alert.StatusNone, nil
	}
	if err != nil {
		return "", errors.DatabaseError("Failed to query alert status", err)
	}

	return status, nil
}

func (r *AlertRepository) ResolveLatestOpen(ctx context.Context, hostID, checkID int64, note string) error {
	// Single statement so two concurrent resolvers cannot both hit the same row.
	_, err := r.db.ExecContext(ctx, `
		UPDATE alerts
		SET status = ?, message = message || ' -> RESOLVED: ' || ?, updated_at = ?
		WHERE alert_id = (
			SELECT alert_id FROM alerts
			WHERE host_id = ? AND check_id = ? AND status = ?
			ORDER BY triggered_at DESC, alert_id DESC
			LIMIT 1
		)
	`, alert.StatusResolved, note, formatTime(time.Now().UTC()), hostID, checkID, alert.StatusOpen)
	if err != nil {
		return errors.DatabaseError("Failed to resolve alert", err)
	}
	return nil
}

func (r *AlertRepository) Acknowledge(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET status = ?, updated_at = ?
		WHERE alert_id = ? AND status = ?
	`, alert.StatusAcknowledged, formatTime(time.Now().UTC()), id, alert.StatusOpen)
	if err != nil {
		return errors.DatabaseError("Failed to acknowledge alert", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Open alert")
	}

	return nil
}

func (r *AlertRepository) List(ctx context.Context, f alert.Filter, limit int) ([]*alert.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	where := []string{"1 = 1"}
	args := []interface{}{}

	if f.HostID != 0 {
		where = append(where, "host_id = ?")
		args = append(args, f.HostID)
	}
	if f.CheckID != 0 {
		where = append(where, "check_id = ?")
		args = append(args, f.CheckID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, f.Severity)
	}
	args = append(args, limit)

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY triggered_at DESC, alert_id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list alerts", err)
	}
	defer rows.Close()

	var alerts []*alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate alerts", err)
	}

	return alerts, nil
}

func (r *AlertRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM alerts GROUP BY status`)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count alerts", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.DatabaseError("Failed to scan alert count", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate alert counts", err)
	}

	return counts, nil
}

func scanAlert(row rowScanner) (*alert.Alert, error) {
	var a alert.Alert
	var message sql.NullString
	var lastNotified sql.NullString
	var triggeredAt, createdAt, updatedAt string

	err := row.Scan(&a.ID, &a.HostID, &a.CheckID, &a.SampleID, &triggeredAt,
		&a.Severity, &message, &a.Status, &lastNotified, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Alert")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to scan alert", err)
	}

	a.Message = message.String
	a.LastNotifiedAt = parseTimePtr(lastNotified)
	a.TriggeredAt = parseTime(triggeredAt)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)

	return &a, nil
}
