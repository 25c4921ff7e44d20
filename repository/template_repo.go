package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type TemplateRepo struct {
	db *gorm.DB
}

func (r *TemplateRepo) Create(ctx context.Context, userID uuid.UUID, template *models.RecurringTemplate) error {
	template.UserID = userID
	return r.db.WithContext(ctx).Create(template).Error
}

func (r *TemplateRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.RecurringTemplate, error) {
	var template models.RecurringTemplate
	err := r.db.WithContext(ctx).
		First(&template, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &template, nil
}

func (r *TemplateRepo) List(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.RecurringTemplate, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var templates []models.RecurringTemplate
	err := q.Order("next_occurrence_at").Find(&templates).Error
	return templates, err
}

// ListDue returns active templates whose occurrence pointer is at or
// before asOf, oldest first.
func (r *TemplateRepo) ListDue(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]models.RecurringTemplate, error) {
	var templates []models.RecurringTemplate
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ? AND next_occurrence_at <= ?", userID, true, asOf).
		Order("next_occurrence_at").
		Find(&templates).Error
	return templates, err
}

func (r *TemplateRepo) Update(ctx context.Context, userID uuid.UUID, template *models.RecurringTemplate) error {
	if template.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(template).Error
}

// AdvanceOccurrence moves the occurrence pointer from its observed
// value to the next one. The observed value is the compare: if another
// sweep advanced the pointer since it was read, zero rows match and
// the caller's transaction must roll back its generated ticket.
func (r *TemplateRepo) AdvanceOccurrence(ctx context.Context, userID, id uuid.UUID, observed, next time.Time, generatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.RecurringTemplate{}).
		Where("user_id = ? AND id = ? AND next_occurrence_at = ?", userID, id, observed).
		Updates(map[string]interface{}{
			"next_occurrence_at": next,
			"last_generated_at":  generatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrConflict
	}
	return nil
}

func (r *TemplateRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.RecurringTemplate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
