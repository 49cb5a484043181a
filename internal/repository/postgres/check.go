package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/hostwatch/hostwatch/internal/domain/check"
	"github.com/hostwatch/hostwatch/internal/pkg/errors"
)

type CheckRepository struct {
	db *sql.DB
}

func NewCheckRepository(db *sql.DB) check.Repository {
	return &CheckRepository{db: db}
}

func (r *CheckRepository) ListKinds(ctx context.Context) ([]*check.Kind, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT check_id, check_name, check_key, evaluator, params_json, severity,
		       cooldown_minutes, enabled, notes, created_at, updated_at
		FROM alert_types ORDER BY check_id
	`)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list check kinds", err)
	}
	defer rows.Close()

	var kinds []*check.Kind
	for rows.Next() {
		k, err := scanKind(rows)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate check kinds", err)
	}

	return kinds, nil
}

func (r *CheckRepository) GetKindByKey(ctx context.Context, key string) (*check.Kind, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT check_id, check_name, check_key, evaluator, params_json, severity,
		       cooldown_minutes, enabled, notes, created_at, updated_at
		FROM alert_types WHERE check_key = ?
	`, key)
	return scanKind(row)
}

func (r *CheckRepository) BindingsFor(ctx context.Context, hostID int64) ([]*check.BindingRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT hac.association_id, at.check_id, at.check_name, at.check_key,
		       at.evaluator, at.severity, at.params_json, hac.params_json
		FROM host_alert_checks hac
		JOIN alert_types at ON hac.check_id = at.check_id
		WHERE hac.host_id = ? AND hac.enabled = 1 AND at.enabled = 1
		ORDER BY at.check_id
	`, hostID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load check bindings", err)
	}
	defer rows.Close()

	var bindings []*check.BindingRow
	for rows.Next() {
		var b check.BindingRow
		var defaults, overrides sql.NullString

		if err := rows.Scan(&b.BindingID, &b.CheckID, &b.Name, &b.Key,
			&b.Evaluator, &b.Severity, &defaults, &overrides); err != nil {
			return nil, errors.DatabaseError("Failed to scan check binding", err)
		}

		if defaults.Valid {
			b.DefaultParams = []byte(defaults.String)
		}
		if overrides.Valid {
			b.Params = []byte(overrides.String)
		}
		bindings = append(bindings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate check bindings", err)
	}

	return bindings, nil
}

func (r *CheckRepository) ListBindings(ctx context.Context, hostID int64) ([]*check.Binding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT association_id, host_id, check_id, enabled, params_json, created_at, updated_at
		FROM host_alert_checks WHERE host_id = ? ORDER BY check_id
	`, hostID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list bindings", err)
	}
	defer rows.Close()

	var bindings []*check.Binding
	for rows.Next() {
		var b check.Binding
		var enabled int
		var params sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&b.ID, &b.HostID, &b.CheckID, &enabled, &params, &createdAt, &updatedAt); err != nil {
			return nil, errors.DatabaseError("Failed to scan binding", err)
		}

		b.Enabled = enabled != 0
		if params.Valid {
			b.Params = []byte(params.String)
		}
		b.CreatedAt = parseTime(createdAt)
		b.UpdatedAt = parseTime(updatedAt)
		bindings = append(bindings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate bindings", err)
	}

	return bindings, nil
}

func (r *CheckRepository) Upsert(ctx context.Context, b *check.Binding) error {
	now := time.Now().UTC()

	var params interface{}
	if len(b.Params) > 0 {
		params = string(b.Params)
	}

	// Unique on (host_id, check_id); an existing binding is updated in place.
	result, err := r.db.ExecContext(ctx, `
		UPDATE host_alert_checks SET enabled = ?, params_json = ?, updated_at = ?
		WHERE host_id = ? AND check_id = ?
	`, boolToInt(b.Enabled), params, formatTime(now), b.HostID, b.CheckID)
	if err != nil {
		return errors.DatabaseError("Failed to update binding", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows > 0 {
		return nil
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO host_alert_checks (host_id, check_id, enabled, params_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.HostID, b.CheckID, boolToInt(b.Enabled), params, formatTime(now), formatTime(now))
	if err != nil {
		return errors.DatabaseError("Failed to create binding", err)
	}

	return nil
}

func (r *CheckRepository) Delete(ctx context.Context, hostID, checkID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM host_alert_checks WHERE host_id = ? AND check_id = ?`,
		hostID, checkID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to delete binding", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Binding")
	}

	return nil
}

func scanKind(row rowScanner) (*check.Kind, error) {
	var k check.Kind
	var params, notes sql.NullString
	var enabled int
	var createdAt, updatedAt string

	err := row.Scan(&k.ID, &k.Name, &k.Key, &k.Evaluator, &params, &k.Severity,
		&k.CooldownMinutes, &enabled, &notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Check kind")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to scan check kind", err)
	}

	if params.Valid {
		k.DefaultParams = []byte(params.String)
	}
	k.Enabled = enabled != 0
	k.Notes = notes.String
	k.CreatedAt = parseTime(createdAt)
	k.UpdatedAt = parseTime(updatedAt)

	return &k, nil
}
