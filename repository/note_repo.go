package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type NoteRepo struct {
	db *gorm.DB
}

func (r *NoteRepo) Create(ctx context.Context, userID uuid.UUID, note *models.Note) error {
	note.UserID = userID
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *NoteRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).
		First(&note, "user_id = ? AND id = ?", userID, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &note, nil
}

func (r *NoteRepo) ListByCustomer(ctx context.Context, userID, customerID uuid.UUID) ([]models.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND customer_id = ?", userID, customerID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}

// ListUnprocessed returns notes the extraction sweep has not consumed
// yet, oldest first so backlog drains in order.
func (r *NoteRepo) ListUnprocessed(ctx context.Context, userID uuid.UUID, limit int) ([]models.Note, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ? AND extraction_processed_at IS NULL", userID).
		Order("created_at")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var notes []models.Note
	err := q.Find(&notes).Error
	return notes, err
}

func (r *NoteRepo) MarkProcessed(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("extraction_processed_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *NoteRepo) Update(ctx context.Context, userID uuid.UUID, note *models.Note) error {
	if note.UserID != userID {
		return models.ErrNotFound
	}
	return r.db.WithContext(ctx).Save(note).Error
}

func (r *NoteRepo) SoftDelete(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.Note{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
