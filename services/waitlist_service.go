package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// WaitlistService tracks customers asking for an earlier or extra
// slot. An entry is satisfied by linking it to the ticket that filled
// the request.
type WaitlistService struct {
	store  *repository.Store
	audit  *AuditService
	logger *zap.Logger
}

func NewWaitlistService(store *repository.Store, audit *AuditService, logger *zap.Logger) *WaitlistService {
	return &WaitlistService{store: store, audit: audit, logger: logger}
}

type WaitlistInput struct {
	CustomerID  uuid.UUID
	ServiceID   *uuid.UUID
	DesiredFrom *time.Time
	DesiredTo   *time.Time
	Notes       string
}

func (s *WaitlistService) Add(ctx context.Context, input WaitlistInput) (*models.WaitlistEntry, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Customers.GetByID(ctx, userID, input.CustomerID); err != nil {
		return nil, err
	}
	if input.ServiceID != nil {
		if _, err := s.store.Services.GetByID(ctx, userID, *input.ServiceID); err != nil {
			return nil, err
		}
	}
	if input.DesiredFrom != nil && input.DesiredTo != nil && input.DesiredTo.Before(*input.DesiredFrom) {
		return nil, fmt.Errorf("%w: desired window ends before it starts", models.ErrValidation)
	}

	entry := &models.WaitlistEntry{
		CustomerID:  input.CustomerID,
		ServiceID:   input.ServiceID,
		DesiredFrom: input.DesiredFrom,
		DesiredTo:   input.DesiredTo,
		Notes:       input.Notes,
		Status:      models.WaitlistWaiting,
	}
	if err := s.store.Waitlist.Create(ctx, userID, entry); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, userID, "waitlist_entry", entry.ID, "created", nil)
	return entry, nil
}

func (s *WaitlistService) List(ctx context.Context, status models.WaitlistStatus) ([]models.WaitlistEntry, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Waitlist.List(ctx, userID, status)
}

// MarkScheduled links a waiting entry to the ticket that satisfied it.
func (s *WaitlistService) MarkScheduled(ctx context.Context, entryID, ticketID uuid.UUID) (*models.WaitlistEntry, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.Waitlist.GetByID(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.WaitlistWaiting {
		return nil, fmt.Errorf("%w: waitlist entry is %s", models.ErrInvalidTransition, entry.Status)
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != entry.CustomerID {
		return nil, fmt.Errorf("%w: ticket belongs to a different customer", models.ErrValidation)
	}

	entry.Status = models.WaitlistScheduled
	entry.ScheduledTicketID = &ticket.ID
	if err := s.store.Waitlist.Update(ctx, userID, entry); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, userID, "waitlist_entry", entry.ID, "scheduled", map[string]FieldChange{
		"ticket_id": {Old: nil, New: ticket.ID.String()},
	})
	return entry, nil
}

// Remove takes a waiting entry off the list without scheduling it.
func (s *WaitlistService) Remove(ctx context.Context, entryID uuid.UUID) (*models.WaitlistEntry, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	entry, err := s.store.Waitlist.GetByID(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != models.WaitlistWaiting {
		return nil, fmt.Errorf("%w: waitlist entry is %s", models.ErrInvalidTransition, entry.Status)
	}

	entry.Status = models.WaitlistRemoved
	if err := s.store.Waitlist.Update(ctx, userID, entry); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, userID, "waitlist_entry", entry.ID, "removed", nil)
	return entry, nil
}
