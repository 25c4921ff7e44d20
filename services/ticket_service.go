package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// TicketService drives the ticket lifecycle. Transitions follow
// scheduled → in_progress → completed, with cancel allowed from either
// open state; both terminal states set closed_at and write-lock the
// ticket until an explicit reopen.
type TicketService struct {
	store  *repository.Store
	bus    *EventBus
	audit  *AuditService
	logger *zap.Logger
}

func NewTicketService(store *repository.Store, bus *EventBus, audit *AuditService, logger *zap.Logger) *TicketService {
	return &TicketService{store: store, bus: bus, audit: audit, logger: logger}
}

type CreateTicketInput struct {
	CustomerID               uuid.UUID
	AddressID                *uuid.UUID
	Title                    string
	Description              string
	ScheduledAt              *time.Time
	EstimatedDurationMinutes *int
	IsPriceEstimated         bool
	Items                    []LineItemInput
}

func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if _, err := s.store.Customers.GetByID(ctx, userID, input.CustomerID); err != nil {
		return nil, err
	}
	if input.AddressID != nil {
		address, err := s.store.Addresses.GetByID(ctx, userID, *input.AddressID)
		if err != nil {
			return nil, err
		}
		if address.CustomerID != input.CustomerID {
			return nil, fmt.Errorf("%w: address belongs to a different customer", models.ErrValidation)
		}
	}

	ticket := &models.Ticket{
		CustomerID:               input.CustomerID,
		AddressID:                input.AddressID,
		Title:                    title,
		Description:              input.Description,
		Status:                   models.TicketScheduled,
		ConfirmationStatus:       models.ConfirmationPending,
		ScheduledAt:              input.ScheduledAt,
		EstimatedDurationMinutes: input.EstimatedDurationMinutes,
		IsPriceEstimated:         input.IsPriceEstimated,
	}

	err = s.store.Transaction(func(tx *repository.Store) error {
		if err := tx.Tickets.Create(ctx, userID, ticket); err != nil {
			return err
		}
		if len(input.Items) > 0 {
			items, err := assembleLineItems(ctx, tx, userID, ticket.ID, input.Items)
			if err != nil {
				return err
			}
			ticket.LineItems = items
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "ticket", ticket.ID, "created", nil)
	s.bus.Publish(ctx, TicketCreated{
		UserID:      userID,
		TicketID:    ticket.ID,
		CustomerID:  ticket.CustomerID,
		ScheduledAt: ticket.ScheduledAt,
	})
	return ticket, nil
}

func (s *TicketService) Get(ctx context.Context, ticketID uuid.UUID) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Tickets.GetByIDWithLineItems(ctx, userID, ticketID)
}

func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Tickets.List(ctx, userID, filter)
}

type UpdateTicketInput struct {
	Title                    *string
	Description              *string
	AddressID                *uuid.UUID
	ScheduledAt              *time.Time
	EstimatedDurationMinutes *int
	IsPriceEstimated         *bool
}

// Update edits schedulable fields on an open ticket. Closed tickets
// reject edits; reopen first.
func (s *TicketService) Update(ctx context.Context, ticketID uuid.UUID, input UpdateTicketInput) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, fmt.Errorf("%w: ticket is closed", models.ErrInvalidTransition)
	}

	before := ticketSnapshot(ticket)
	rescheduled := false
	oldScheduledAt := ticket.ScheduledAt

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
		}
		ticket.Title = title
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.AddressID != nil {
		address, err := s.store.Addresses.GetByID(ctx, userID, *input.AddressID)
		if err != nil {
			return nil, err
		}
		if address.CustomerID != ticket.CustomerID {
			return nil, fmt.Errorf("%w: address belongs to a different customer", models.ErrValidation)
		}
		ticket.AddressID = input.AddressID
	}
	if input.ScheduledAt != nil {
		if oldScheduledAt == nil || !oldScheduledAt.Equal(*input.ScheduledAt) {
			rescheduled = true
		}
		ticket.ScheduledAt = input.ScheduledAt
	}
	if input.EstimatedDurationMinutes != nil {
		ticket.EstimatedDurationMinutes = input.EstimatedDurationMinutes
	}
	if input.IsPriceEstimated != nil {
		ticket.IsPriceEstimated = *input.IsPriceEstimated
	}

	if err := s.store.Tickets.Update(ctx, userID, ticket); err != nil {
		return nil, err
	}

	if changes := ComputeChanges(before, ticketSnapshot(ticket)); len(changes) > 0 {
		s.audit.Record(ctx, userID, "ticket", ticket.ID, "updated", changes)
	}
	if rescheduled {
		s.bus.Publish(ctx, TicketRescheduled{
			UserID:         userID,
			TicketID:       ticket.ID,
			CustomerID:     ticket.CustomerID,
			OldScheduledAt: oldScheduledAt,
			NewScheduledAt: ticket.ScheduledAt,
		})
	}
	return ticket, nil
}

// ClockIn starts work: scheduled → in_progress, stamping clock_in_at
// in the same write.
func (s *TicketService) ClockIn(ctx context.Context, ticketID uuid.UUID) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketScheduled {
		return nil, fmt.Errorf("%w: clock-in requires a scheduled ticket, ticket is %s", models.ErrInvalidTransition, ticket.Status)
	}

	now := time.Now().UTC()
	err = s.store.Tickets.TransitionStatus(ctx, userID, ticketID, models.TicketScheduled, map[string]interface{}{
		"status":      models.TicketInProgress,
		"clock_in_at": now,
	})
	if err != nil {
		return nil, err
	}
	ticket.Status = models.TicketInProgress
	ticket.ClockInAt = &now

	s.audit.Record(ctx, userID, "ticket", ticket.ID, "clock_in", map[string]FieldChange{
		"status":      {Old: string(models.TicketScheduled), New: string(models.TicketInProgress)},
		"clock_in_at": {Old: nil, New: now.Format(time.RFC3339)},
	})
	s.bus.Publish(ctx, TicketClockIn{UserID: userID, TicketID: ticket.ID})
	return ticket, nil
}

// ClockOut records the end of work without closing the ticket.
func (s *TicketService) ClockOut(ctx context.Context, ticketID uuid.UUID, at *time.Time) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketInProgress {
		return nil, fmt.Errorf("%w: clock-out requires an in-progress ticket, ticket is %s", models.ErrInvalidTransition, ticket.Status)
	}
	if ticket.ClockInAt == nil {
		return nil, fmt.Errorf("%w: no clock-in recorded", models.ErrInvalidTransition)
	}

	out := time.Now().UTC()
	if at != nil {
		out = at.UTC()
	}
	if out.Before(*ticket.ClockInAt) {
		return nil, fmt.Errorf("%w: clock-out before clock-in", models.ErrValidation)
	}
	duration := int(out.Sub(*ticket.ClockInAt).Minutes())

	err = s.store.Tickets.TransitionStatus(ctx, userID, ticketID, models.TicketInProgress, map[string]interface{}{
		"clock_out_at":            out,
		"actual_duration_minutes": duration,
	})
	if err != nil {
		return nil, err
	}
	ticket.ClockOutAt = &out
	ticket.ActualDurationMinutes = &duration

	s.audit.Record(ctx, userID, "ticket", ticket.ID, "clock_out", map[string]FieldChange{
		"clock_out_at": {Old: nil, New: out.Format(time.RFC3339)},
	})
	return ticket, nil
}

// Complete closes the ticket: in_progress → completed, stamping
// clock-out when it is missing and freezing line items. Tickets still
// in scheduled cannot jump straight here.
func (s *TicketService) Complete(ctx context.Context, ticketID uuid.UUID, clockOut *time.Time) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketInProgress {
		return nil, fmt.Errorf("%w: complete requires an in-progress ticket, ticket is %s", models.ErrInvalidTransition, ticket.Status)
	}
	if ticket.ClockInAt == nil {
		return nil, fmt.Errorf("%w: cannot complete without clock-in", models.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	out := now
	switch {
	case clockOut != nil:
		out = clockOut.UTC()
	case ticket.ClockOutAt != nil:
		out = *ticket.ClockOutAt
	}
	if out.Before(*ticket.ClockInAt) {
		return nil, fmt.Errorf("%w: clock-out before clock-in", models.ErrValidation)
	}
	duration := int(out.Sub(*ticket.ClockInAt).Minutes())

	err = s.store.Tickets.TransitionStatus(ctx, userID, ticketID, models.TicketInProgress, map[string]interface{}{
		"status":                  models.TicketCompleted,
		"clock_out_at":            out,
		"actual_duration_minutes": duration,
		"closed_at":               now,
	})
	if err != nil {
		return nil, err
	}
	ticket.Status = models.TicketCompleted
	ticket.ClockOutAt = &out
	ticket.ActualDurationMinutes = &duration
	ticket.ClosedAt = &now

	s.audit.Record(ctx, userID, "ticket", ticket.ID, "completed", map[string]FieldChange{
		"status":    {Old: string(models.TicketInProgress), New: string(models.TicketCompleted)},
		"closed_at": {Old: nil, New: now.Format(time.RFC3339)},
	})
	s.bus.Publish(ctx, TicketCompleted{UserID: userID, TicketID: ticket.ID, CustomerID: ticket.CustomerID})
	return ticket, nil
}

// Cancel closes the ticket without billing. Allowed from scheduled or
// in_progress; no clock data required.
func (s *TicketService) Cancel(ctx context.Context, ticketID uuid.UUID, reason string) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != models.TicketScheduled && ticket.Status != models.TicketInProgress {
		return nil, fmt.Errorf("%w: cannot cancel a %s ticket", models.ErrInvalidTransition, ticket.Status)
	}

	now := time.Now().UTC()
	from := ticket.Status
	err = s.store.Tickets.TransitionStatus(ctx, userID, ticketID, from, map[string]interface{}{
		"status":    models.TicketCancelled,
		"closed_at": now,
	})
	if err != nil {
		return nil, err
	}
	ticket.Status = models.TicketCancelled
	ticket.ClosedAt = &now

	changes := map[string]FieldChange{
		"status":    {Old: string(from), New: string(models.TicketCancelled)},
		"closed_at": {Old: nil, New: now.Format(time.RFC3339)},
	}
	if reason != "" {
		changes["reason"] = FieldChange{Old: nil, New: reason}
	}
	s.audit.Record(ctx, userID, "ticket", ticket.ID, "cancelled", changes)
	s.bus.Publish(ctx, TicketCancelled{UserID: userID, TicketID: ticket.ID, CustomerID: ticket.CustomerID})
	return ticket, nil
}

// Reopen reverts a closed ticket to in_progress. It exists because
// closed tickets are otherwise immutable financial records; every use
// lands in the audit trail.
func (s *TicketService) Reopen(ctx context.Context, ticketID uuid.UUID) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsClosed() {
		return nil, fmt.Errorf("%w: only closed tickets can be reopened", models.ErrInvalidTransition)
	}

	from := ticket.Status
	oldClosedAt := ticket.ClosedAt
	err = s.store.Tickets.TransitionStatus(ctx, userID, ticketID, from, map[string]interface{}{
		"status":    models.TicketInProgress,
		"closed_at": nil,
	})
	if err != nil {
		return nil, err
	}
	ticket.Status = models.TicketInProgress
	ticket.ClosedAt = nil

	s.audit.Record(ctx, userID, "ticket", ticket.ID, "reopened", map[string]FieldChange{
		"status":    {Old: string(from), New: string(models.TicketInProgress)},
		"closed_at": {Old: timeValue(oldClosedAt), New: nil},
	})
	return ticket, nil
}

// SetConfirmation moves the customer's answer out of pending. The
// confirmation sub-state is one-shot and independent of work status.
func (s *TicketService) SetConfirmation(ctx context.Context, ticketID uuid.UUID, status models.ConfirmationStatus) (*models.Ticket, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	switch status {
	case models.ConfirmationConfirmed, models.ConfirmationDeclined, models.ConfirmationRescheduleRequested:
	default:
		return nil, fmt.Errorf("%w: invalid confirmation status %q", models.ErrValidation, status)
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.ConfirmationStatus == status {
		return ticket, nil
	}
	if ticket.ConfirmationStatus != models.ConfirmationPending {
		return nil, fmt.Errorf("%w: confirmation already %s", models.ErrInvalidTransition, ticket.ConfirmationStatus)
	}

	old := ticket.ConfirmationStatus
	ticket.ConfirmationStatus = status
	if err := s.store.Tickets.Update(ctx, userID, ticket); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "ticket", ticket.ID, "confirmation_updated", map[string]FieldChange{
		"confirmation_status": {Old: string(old), New: string(status)},
	})
	return ticket, nil
}

// Delete tombstones an open ticket. Closed tickets are kept for the
// financial history.
func (s *TicketService) Delete(ctx context.Context, ticketID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return err
	}
	if ticket.IsClosed() {
		return fmt.Errorf("%w: closed tickets cannot be deleted", models.ErrInvalidTransition)
	}
	if err := s.store.Tickets.SoftDelete(ctx, userID, ticketID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "ticket", ticketID, "deleted", nil)
	return nil
}

func ticketSnapshot(t *models.Ticket) map[string]interface{} {
	return map[string]interface{}{
		"title":                      t.Title,
		"description":                t.Description,
		"status":                     string(t.Status),
		"confirmation_status":        string(t.ConfirmationStatus),
		"address_id":                 uuidValue(t.AddressID),
		"scheduled_at":               timeValue(t.ScheduledAt),
		"estimated_duration_minutes": intValue(t.EstimatedDurationMinutes),
		"is_price_estimated":         t.IsPriceEstimated,
		"clock_in_at":                timeValue(t.ClockInAt),
		"clock_out_at":               timeValue(t.ClockOutAt),
		"closed_at":                  timeValue(t.ClosedAt),
	}
}

func timeValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func intValue(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func uuidValue(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
