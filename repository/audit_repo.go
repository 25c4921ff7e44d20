package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

// AuditLogRepo appends to the audit trail. There is no update or
// delete; the table only grows.
type AuditLogRepo struct {
	db *gorm.DB
}

func (r *AuditLogRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditLogRepo) ListByEntity(ctx context.Context, userID uuid.UUID, entityType string, entityID uuid.UUID) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND entity_type = ? AND entity_id = ?", userID, entityType, entityID).
		Order("created_at").
		Find(&entries).Error
	return entries, err
}
