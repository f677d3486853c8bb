package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/paperdb/internal/models"
	"gorm.io/gorm"
)

// auditRecorder appends to the audit log inside the caller's transaction, so
// an entry exists exactly when the change it describes commits.
// All entries of one command share its timestamp.
type auditRecorder struct {
	tx *gorm.DB
	at time.Time
}

func newAuditRecorder(tx *gorm.DB, at time.Time) *auditRecorder {
	return &auditRecorder{tx: tx, at: at}
}

// record appends one entry. oldData and newData are snapshotted as JSON and
// may be nil for inserts and deletes respectively.
func (r *auditRecorder) record(table string, key string, action models.AuditAction, oldData, newData any, actorID *string) error {
	oldJSON, err := models.Snapshot(oldData)
	if err != nil {
		return err
	}
	newJSON, err := models.Snapshot(newData)
	if err != nil {
		return err
	}

	entry := models.AuditLogEntry{
		EventID:     uuid.NewString(),
		EntityTable: table,
		RecordKey:   key,
		Action:      action,
		OldData:     oldJSON,
		NewData:     newJSON,
		ActorID:     actorID,
		CreatedAt:   r.at,
	}
	if err := r.tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append audit entry for %s %s: %w", table, key, err)
	}
	return nil
}

// recordKey joins the parts of a primary key.
func recordKey(parts ...uint64) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strconv.FormatUint(p, 10)
	}
	return strings.Join(s, models.RecordKeySeparator)
}

// actor returns a nullable actor id for audit entries.
func actor(userID string) *string {
	if userID == "" {
		return nil
	}
	return &userID
}

// AuditTrail returns the history of one record, oldest first. An empty key
// returns the history of the whole table.
func (e *Engine) AuditTrail(ctx context.Context, table, key string) ([]models.AuditLogEntry, error) {
	var entries []models.AuditLogEntry
	query := e.db.WithContext(ctx).Where("entity_table = ?", table)
	if key != "" {
		query = query.Where("record_key = ?", key)
	}
	if err := query.Order("audit_id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("read audit trail: %w", err)
	}
	return entries, nil
}
