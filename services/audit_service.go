package services

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// FieldChange is one before/after pair in an audit entry.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// AuditService appends state changes to the audit trail. Writes are
// fire-and-forget: an audit failure is logged and the operation that
// triggered it proceeds untouched.
type AuditService struct {
	store  *repository.Store
	logger *zap.Logger
}

func NewAuditService(store *repository.Store, logger *zap.Logger) *AuditService {
	return &AuditService{store: store, logger: logger}
}

func (a *AuditService) Record(ctx context.Context, userID uuid.UUID, entityType string, entityID uuid.UUID, action string, changes map[string]FieldChange) {
	var payload datatypes.JSON
	if len(changes) > 0 {
		b, err := json.Marshal(changes)
		if err != nil {
			a.logger.Error("audit changes marshal failed",
				zap.String("entity_type", entityType),
				zap.String("action", action),
				zap.Error(err),
			)
			return
		}
		payload = datatypes.JSON(b)
	}

	entry := &models.AuditLog{
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    payload,
	}
	if err := a.store.AuditLogs.Create(ctx, entry); err != nil {
		a.logger.Error("audit write failed",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// History returns the audit trail for one entity.
func (a *AuditService) History(ctx context.Context, entityType string, entityID uuid.UUID) ([]models.AuditLog, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return a.store.AuditLogs.ListByEntity(ctx, userID, entityType, entityID)
}

// ComputeChanges diffs two field snapshots, skipping updated_at and
// fields that did not move.
func ComputeChanges(before, after map[string]interface{}) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for field, newValue := range after {
		if field == "updated_at" {
			continue
		}
		oldValue, had := before[field]
		if had && reflect.DeepEqual(oldValue, newValue) {
			continue
		}
		changes[field] = FieldChange{Old: oldValue, New: newValue}
	}
	return changes
}
