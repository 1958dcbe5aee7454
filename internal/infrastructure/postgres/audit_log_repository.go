package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pipr-api/internal/domain/entity"
	"github.com/jhoicas/pipr-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo implementación sobre PostgreSQL.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create inserta la entrada. Si Timestamp es cero se usa now() de la BD.
func (r *AuditLogRepo) Create(ctx context.Context, e *entity.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (table_name, record_id, action, old_values, new_values, user_id, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
		RETURNING id, "timestamp"`
	var ts any
	if !e.Timestamp.IsZero() {
		ts = e.Timestamp
	}
	err := r.q.QueryRow(ctx, query,
		e.TableName, e.RecordID, e.Action, jsonOrNil(e.OldValues), jsonOrNil(e.NewValues), nullString(e.UserID), ts,
	).Scan(&e.ID, &e.Timestamp)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
