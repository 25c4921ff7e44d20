package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// RecurrenceService turns recurring templates into tickets. Each
// template carries a next_occurrence_at pointer; the sweep
// materializes every due pointer and advances it under a
// compare-and-swap so concurrent sweeps generate exactly one ticket
// per occurrence.
type RecurrenceService struct {
	store  *repository.Store
	bus    *EventBus
	audit  *AuditService
	logger *zap.Logger
}

func NewRecurrenceService(store *repository.Store, bus *EventBus, audit *AuditService, logger *zap.Logger) *RecurrenceService {
	return &RecurrenceService{store: store, bus: bus, audit: audit, logger: logger}
}

// ComputeNextOccurrence advances one cadence step from the given
// anchor. Months clamp to the end of short months (the 31st lands on
// the 30th or 28th rather than rolling over); weeks snap forward to
// the preferred weekday when the raw advance misses it; a preferred
// day of month re-anchors clamped monthly schedules so they do not
// drift shorter permanently.
func ComputeNextOccurrence(from time.Time, intervalType models.IntervalType, intervalValue int, preferredWeekday, preferredDayOfMonth *int, preferredTime string) time.Time {
	if intervalValue < 1 {
		intervalValue = 1
	}

	var next time.Time
	switch intervalType {
	case models.IntervalWeeks:
		next = from.AddDate(0, 0, intervalValue*7)
		if preferredWeekday != nil {
			delta := (*preferredWeekday - int(next.Weekday()) + 7) % 7
			next = next.AddDate(0, 0, delta)
		}
	case models.IntervalMonths:
		next = addMonthsClamped(from, intervalValue, preferredDayOfMonth)
	default:
		next = from.AddDate(0, 0, intervalValue)
	}

	if preferredTime != "" {
		next = utils.CombineDateAndTime(next, preferredTime)
	}
	return next
}

func addMonthsClamped(from time.Time, months int, preferredDay *int) time.Time {
	anchorDay := from.Day()
	if preferredDay != nil {
		anchorDay = *preferredDay
	}
	year, month, _ := from.Date()
	hour, minute, sec := from.Clock()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, from.Location())
	lastDay := utils.DaysInMonth(firstOfTarget.Year(), firstOfTarget.Month())
	day := anchorDay
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, minute, sec, from.Nanosecond(), from.Location())
}

type CreateTemplateInput struct {
	CustomerID           uuid.UUID
	AddressID            *uuid.UUID
	Title                string
	Description          string
	IntervalType         models.IntervalType
	IntervalValue        int
	PreferredWeekday     *int
	PreferredDayOfMonth  *int
	PreferredTimeOfDay   string
	EstimatedDurationMin *int
	Items                []models.TemplateItem
	FirstOccurrenceAt    time.Time
}

func (s *RecurrenceService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*models.RecurringTemplate, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if input.FirstOccurrenceAt.IsZero() {
		return nil, fmt.Errorf("%w: first occurrence is required", models.ErrValidation)
	}
	if input.PreferredTimeOfDay != "" {
		if _, err := time.Parse("15:04", input.PreferredTimeOfDay); err != nil {
			return nil, fmt.Errorf("%w: preferred time must be HH:MM", models.ErrValidation)
		}
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
	for i := range input.Items {
		if input.Items[i].Quantity < 0 {
			return nil, fmt.Errorf("%w: item quantity cannot be negative", models.ErrValidation)
		}
		if _, err := s.store.Services.GetByID(ctx, userID, input.Items[i].ServiceID); err != nil {
			return nil, err
		}
	}

	template := &models.RecurringTemplate{
		CustomerID:           input.CustomerID,
		AddressID:            input.AddressID,
		Title:                title,
		Description:          input.Description,
		IntervalType:         input.IntervalType,
		IntervalValue:        input.IntervalValue,
		PreferredWeekday:     input.PreferredWeekday,
		PreferredDayOfMonth:  input.PreferredDayOfMonth,
		PreferredTimeOfDay:   input.PreferredTimeOfDay,
		EstimatedDurationMin: input.EstimatedDurationMin,
		Items:                input.Items,
		IsActive:             true,
		NextOccurrenceAt:     input.FirstOccurrenceAt.UTC(),
	}
	if err := template.ValidateSchedule(); err != nil {
		return nil, err
	}
	if err := s.store.Templates.Create(ctx, userID, template); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "recurring_template", template.ID, "created", nil)
	return template, nil
}

type UpdateTemplateInput struct {
	Title                *string
	Description          *string
	AddressID            *uuid.UUID
	IntervalType         *models.IntervalType
	IntervalValue        *int
	PreferredWeekday     *int
	PreferredDayOfMonth  *int
	PreferredTimeOfDay   *string
	EstimatedDurationMin *int
	Items                []models.TemplateItem
	NextOccurrenceAt     *time.Time
	IsActive             *bool
}

func (s *RecurrenceService) UpdateTemplate(ctx context.Context, templateID uuid.UUID, input UpdateTemplateInput) (*models.RecurringTemplate, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	template, err := s.store.Templates.GetByID(ctx, userID, templateID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
		}
		template.Title = title
	}
	if input.Description != nil {
		template.Description = *input.Description
	}
	if input.AddressID != nil {
		address, err := s.store.Addresses.GetByID(ctx, userID, *input.AddressID)
		if err != nil {
			return nil, err
		}
		if address.CustomerID != template.CustomerID {
			return nil, fmt.Errorf("%w: address belongs to a different customer", models.ErrValidation)
		}
		template.AddressID = input.AddressID
	}
	if input.IntervalType != nil {
		template.IntervalType = *input.IntervalType
	}
	if input.IntervalValue != nil {
		template.IntervalValue = *input.IntervalValue
	}
	if input.PreferredWeekday != nil {
		template.PreferredWeekday = input.PreferredWeekday
	}
	if input.PreferredDayOfMonth != nil {
		template.PreferredDayOfMonth = input.PreferredDayOfMonth
	}
	if input.PreferredTimeOfDay != nil {
		if *input.PreferredTimeOfDay != "" {
			if _, err := time.Parse("15:04", *input.PreferredTimeOfDay); err != nil {
				return nil, fmt.Errorf("%w: preferred time must be HH:MM", models.ErrValidation)
			}
		}
		template.PreferredTimeOfDay = *input.PreferredTimeOfDay
	}
	if input.EstimatedDurationMin != nil {
		template.EstimatedDurationMin = input.EstimatedDurationMin
	}
	if input.Items != nil {
		for i := range input.Items {
			if input.Items[i].Quantity < 0 {
				return nil, fmt.Errorf("%w: item quantity cannot be negative", models.ErrValidation)
			}
			if _, err := s.store.Services.GetByID(ctx, userID, input.Items[i].ServiceID); err != nil {
				return nil, err
			}
		}
		template.Items = input.Items
	}
	if input.NextOccurrenceAt != nil {
		template.NextOccurrenceAt = input.NextOccurrenceAt.UTC()
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}
	if err := template.ValidateSchedule(); err != nil {
		return nil, err
	}

	if err := s.store.Templates.Update(ctx, userID, template); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, userID, "recurring_template", template.ID, "updated", nil)
	return template, nil
}

func (s *RecurrenceService) Get(ctx context.Context, templateID uuid.UUID) (*models.RecurringTemplate, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Templates.GetByID(ctx, userID, templateID)
}

func (s *RecurrenceService) List(ctx context.Context, activeOnly bool) ([]models.RecurringTemplate, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Templates.List(ctx, userID, activeOnly)
}

func (s *RecurrenceService) Delete(ctx context.Context, templateID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Templates.SoftDelete(ctx, userID, templateID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "recurring_template", templateID, "deleted", nil)
	return nil
}

// MaterializeDue generates one ticket for every active template whose
// occurrence pointer is at or before asOf, then advances the pointer.
// After a long gap each overdue template still gets exactly one ticket
// and its pointer jumps forward from asOf, so downtime never turns
// into a ticket storm. Returns how many tickets were created.
func (s *RecurrenceService) MaterializeDue(ctx context.Context, asOf time.Time) (int, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return 0, err
	}
	due, err := s.store.Templates.ListDue(ctx, userID, asOf)
	if err != nil {
		return 0, err
	}

	created := 0
	var errs []error
	for i := range due {
		template := due[i]
		err := s.materializeWithRetry(ctx, userID, &template, asOf)
		switch {
		case err == nil:
			created++
		case errors.Is(err, models.ErrConflict):
			// A concurrent sweep already generated this occurrence.
			s.logger.Info("occurrence taken by concurrent sweep",
				zap.String("template_id", template.ID.String()),
			)
		default:
			errs = append(errs, fmt.Errorf("template %s: %w", template.ID, err))
		}
	}
	return created, errors.Join(errs...)
}

func (s *RecurrenceService) materializeWithRetry(ctx context.Context, userID uuid.UUID, template *models.RecurringTemplate, asOf time.Time) error {
	for attempt := 0; attempt < 3; attempt++ {
		err := s.materializeOne(ctx, userID, template, asOf)
		if err == nil || !errors.Is(err, models.ErrConflict) {
			return err
		}
		// Lost the advance race. Re-read and go again only if the
		// template is somehow still due.
		fresh, err := s.store.Templates.GetByID(ctx, userID, template.ID)
		if err != nil {
			return err
		}
		if !fresh.IsActive || fresh.NextOccurrenceAt.After(asOf) {
			return models.ErrConflict
		}
		*template = *fresh
	}
	return models.ErrConflict
}

func (s *RecurrenceService) materializeOne(ctx context.Context, userID uuid.UUID, template *models.RecurringTemplate, asOf time.Time) error {
	occurrence := template.NextOccurrenceAt
	next := ComputeNextOccurrence(occurrence, template.IntervalType, template.IntervalValue,
		template.PreferredWeekday, template.PreferredDayOfMonth, template.PreferredTimeOfDay)
	if !next.After(asOf) {
		// More than one period behind: recompute from the sweep time
		// instead of replaying every missed period.
		next = ComputeNextOccurrence(asOf, template.IntervalType, template.IntervalValue,
			template.PreferredWeekday, template.PreferredDayOfMonth, template.PreferredTimeOfDay)
	}

	var ticket *models.Ticket
	err := s.store.Transaction(func(tx *repository.Store) error {
		ticket = &models.Ticket{
			CustomerID:               template.CustomerID,
			AddressID:                template.AddressID,
			Title:                    template.Title,
			Description:              template.Description,
			Status:                   models.TicketScheduled,
			ConfirmationStatus:       models.ConfirmationPending,
			ScheduledAt:              &occurrence,
			EstimatedDurationMinutes: template.EstimatedDurationMin,
			RecurringTemplateID:      &template.ID,
		}
		if err := tx.Tickets.Create(ctx, userID, ticket); err != nil {
			return err
		}
		if len(template.Items) > 0 {
			inputs := make([]LineItemInput, 0, len(template.Items))
			for _, item := range template.Items {
				serviceID := item.ServiceID
				inputs = append(inputs, LineItemInput{
					ServiceID:           &serviceID,
					Quantity:            item.Quantity,
					PriceOverrideCents:  item.PriceOverrideCents,
					DurationOverrideMin: item.DurationOverrideMin,
				})
			}
			if _, err := assembleLineItems(ctx, tx, userID, ticket.ID, inputs); err != nil {
				return err
			}
		}
		// The pointer advance is the serialization point. Losing it
		// rolls the transaction back, discarding the ticket above.
		return tx.Templates.AdvanceOccurrence(ctx, userID, template.ID, template.NextOccurrenceAt, next, asOf)
	})
	if err != nil {
		return err
	}

	template.NextOccurrenceAt = next
	generatedAt := asOf
	template.LastGeneratedAt = &generatedAt

	s.audit.Record(ctx, userID, "recurring_template", template.ID, "occurrence_materialized", map[string]FieldChange{
		"ticket_id":          {Old: nil, New: ticket.ID.String()},
		"next_occurrence_at": {Old: occurrence.Format(time.RFC3339), New: next.Format(time.RFC3339)},
	})
	s.bus.Publish(ctx, OccurrenceMaterialized{
		UserID:     userID,
		TemplateID: template.ID,
		TicketID:   ticket.ID,
		OccursAt:   occurrence,
	})
	s.bus.Publish(ctx, TicketCreated{
		UserID:      userID,
		TicketID:    ticket.ID,
		CustomerID:  ticket.CustomerID,
		ScheduledAt: ticket.ScheduledAt,
	})
	return nil
}
