package repository

import (
	"context"

	"github.com/jhoicas/pipr-api/internal/domain/entity"
)

// AuditLogRepository persiste entradas del log de auditoría.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLogEntry) error
}
