package models

import "time"

// AuditAction is the kind of row change an audit entry records.
type AuditAction string

const (
	ActionInsert AuditAction = "INSERT"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
)

// RecordKeySeparator joins the parts of a composite primary key in AuditLogEntry.RecordKey.
const RecordKeySeparator = ":"

// AuditLogEntry is an append-only change record. It carries no foreign keys
// so history outlives the rows it describes.
type AuditLogEntry struct {
	AuditID     uint64      `gorm:"primaryKey;autoIncrement" json:"auditId"`
	EventID     string      `gorm:"type:char(36);not null;uniqueIndex" json:"eventId"`
	EntityTable string      `gorm:"column:entity_table;size:64;not null;index:idx_audit_record" json:"table"`
	RecordKey   string      `gorm:"size:255;not null;index:idx_audit_record" json:"recordKey"`
	Action      AuditAction `gorm:"size:16;not null" json:"action"`
	OldData     *JSON       `json:"oldData"`
	NewData     *JSON       `json:"newData"`
	ActorID     *string     `gorm:"size:36;index" json:"actorId,omitempty"`
	CreatedAt   time.Time   `gorm:"not null;index" json:"createdAt"`
}

// TableName overrides the table name for AuditLogEntry
func (AuditLogEntry) TableName() string {
	return "audit_log"
}

// All lists every model in dependency order, for migrations and schema tools.
func All() []interface{} {
	return []interface{}{
		&User{},
		&UserRole{},
		&Paper{},
		&PaperVersion{},
		&Review{},
		&Citation{},
		&Tag{},
		&PaperTag{},
		&AuditLogEntry{},
	}
}
