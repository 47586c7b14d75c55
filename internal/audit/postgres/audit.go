package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/travel-agency/internal/audit"
	auditDatamodel "github.com/frahmantamala/travel-agency/internal/core/datamodel/audit"
	"github.com/jmoiron/sqlx"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

const insertAuditLog = `INSERT INTO audit_logs
	(id, tenant_id, user_id, user_name, action, entity, entity_id, changes, created_at)
	VALUES (:id, :tenant_id, :user_id, :user_name, :action, :entity, :entity_id, :changes, :created_at)`

func (r *AuditRepository) Create(ctx context.Context, log *auditDatamodel.AuditLog) error {
	if _, err := r.db.NamedExecContext(ctx, insertAuditLog, log); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByTenant(ctx context.Context, tenantID string, filter audit.ListFilter) ([]*auditDatamodel.AuditLog, error) {
	query := `SELECT id, tenant_id, user_id, user_name, action, entity, entity_id, changes, created_at
		FROM audit_logs WHERE tenant_id = ?`
	args := []interface{}{tenantID}
	if filter.Entity != "" {
		query += ` AND entity = ?`
		args = append(args, filter.Entity)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	var logs []*auditDatamodel.AuditLog
	if err := r.db.SelectContext(ctx, &logs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
