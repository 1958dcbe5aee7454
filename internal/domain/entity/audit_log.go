package entity

import (
	"encoding/json"
	"time"
)

// Acciones de auditoría registradas por el módulo de inventario.
const (
	AuditActionBulkStockUpdate = "BULK_STOCK_UPDATE"
)

// AuditLogEntry es una fila del log de auditoría (tabla audit_log).
type AuditLogEntry struct {
	ID        int64
	TableName string
	RecordID  string
	Action    string
	OldValues json.RawMessage
	NewValues json.RawMessage
	UserID    string
	Timestamp time.Time
}
