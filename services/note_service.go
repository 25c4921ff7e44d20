package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

type NoteService struct {
	store  *repository.Store
	bus    *EventBus
	audit  *AuditService
	logger *zap.Logger
}

func NewNoteService(store *repository.Store, bus *EventBus, audit *AuditService, logger *zap.Logger) *NoteService {
	return &NoteService{store: store, bus: bus, audit: audit, logger: logger}
}

type NoteInput struct {
	CustomerID uuid.UUID
	TicketID   *uuid.UUID
	Content    string
}

func (s *NoteService) Create(ctx context.Context, input NoteInput) (*models.Note, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: note content is required", models.ErrValidation)
	}
	if _, err := s.store.Customers.GetByID(ctx, userID, input.CustomerID); err != nil {
		return nil, err
	}
	if input.TicketID != nil {
		ticket, err := s.store.Tickets.GetByID(ctx, userID, *input.TicketID)
		if err != nil {
			return nil, err
		}
		if ticket.CustomerID != input.CustomerID {
			return nil, fmt.Errorf("%w: ticket belongs to a different customer", models.ErrValidation)
		}
	}

	note := &models.Note{
		CustomerID: input.CustomerID,
		TicketID:   input.TicketID,
		Content:    content,
	}
	if err := s.store.Notes.Create(ctx, userID, note); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "note", note.ID, "created", nil)
	s.bus.Publish(ctx, NoteCreated{UserID: userID, NoteID: note.ID, CustomerID: note.CustomerID})
	return note, nil
}

func (s *NoteService) Get(ctx context.Context, noteID uuid.UUID) (*models.Note, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Notes.GetByID(ctx, userID, noteID)
}

func (s *NoteService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Note, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Customers.GetByID(ctx, userID, customerID); err != nil {
		return nil, err
	}
	return s.store.Notes.ListByCustomer(ctx, userID, customerID)
}

// Update replaces the content and re-queues the note for attribute
// extraction, since the old extraction no longer describes it.
func (s *NoteService) Update(ctx context.Context, noteID uuid.UUID, content string) (*models.Note, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: note content is required", models.ErrValidation)
	}
	note, err := s.store.Notes.GetByID(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	note.Content = content
	note.ExtractionProcessedAt = nil
	if err := s.store.Notes.Update(ctx, userID, note); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "note", note.ID, "updated", nil)
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, noteID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Notes.SoftDelete(ctx, userID, noteID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "note", noteID, "deleted", nil)
	return nil
}
