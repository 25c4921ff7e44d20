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

// LineItemInput is one entry to price onto a ticket. ServiceID nil
// means an ad-hoc line, which must carry its own price and
// description.
type LineItemInput struct {
	ServiceID           *uuid.UUID
	Description         string
	Quantity            int64
	PriceOverrideCents  *int64
	DurationOverrideMin *int
}

// LineItemService prices entries onto tickets. Every batch is
// all-or-nothing, and a closed ticket rejects every mutation.
type LineItemService struct {
	store  *repository.Store
	audit  *AuditService
	logger *zap.Logger
}

func NewLineItemService(store *repository.Store, audit *AuditService, logger *zap.Logger) *LineItemService {
	return &LineItemService{store: store, audit: audit, logger: logger}
}

// Add prices and attaches a batch of line items to an open ticket.
func (s *LineItemService) Add(ctx context.Context, ticketID uuid.UUID, inputs []LineItemInput) ([]models.LineItem, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no line items given", models.ErrValidation)
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, fmt.Errorf("%w: ticket is closed", models.ErrInvalidTransition)
	}

	var items []models.LineItem
	err = s.store.Transaction(func(tx *repository.Store) error {
		created, err := assembleLineItems(ctx, tx, userID, ticketID, inputs)
		if err != nil {
			return err
		}
		items = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, userID, "ticket", ticketID, "line_items_added", map[string]FieldChange{
		"count": {Old: nil, New: len(items)},
	})
	return items, nil
}

type UpdateLineItemInput struct {
	Description     *string
	Quantity        *int64
	UnitPriceCents  *int64
	DurationMinutes *int
}

// Update edits one line on an open ticket. The total is recomputed
// from unit price and quantity; it never drifts independently.
func (s *LineItemService) Update(ctx context.Context, itemID uuid.UUID, input UpdateLineItemInput) (*models.LineItem, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.store.LineItems.GetByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, item.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() {
		return nil, fmt.Errorf("%w: ticket is closed", models.ErrInvalidTransition)
	}

	before := lineItemSnapshot(item)
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description is required", models.ErrValidation)
		}
		item.Description = description
	}
	if input.Quantity != nil {
		if *input.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
		}
		item.Quantity = *input.Quantity
	}
	if input.UnitPriceCents != nil {
		if *input.UnitPriceCents < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", models.ErrValidation)
		}
		item.UnitPriceCents = *input.UnitPriceCents
	}
	if input.DurationMinutes != nil {
		item.DurationMinutes = input.DurationMinutes
	}
	item.TotalCents = item.UnitPriceCents * item.Quantity

	if err := s.store.LineItems.Update(ctx, userID, item); err != nil {
		return nil, err
	}

	if changes := ComputeChanges(before, lineItemSnapshot(item)); len(changes) > 0 {
		s.audit.Record(ctx, userID, "line_item", item.ID, "updated", changes)
	}
	return item, nil
}

// Remove tombstones one line on an open ticket.
func (s *LineItemService) Remove(ctx context.Context, itemID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	item, err := s.store.LineItems.GetByID(ctx, userID, itemID)
	if err != nil {
		return err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, item.TicketID)
	if err != nil {
		return err
	}
	if ticket.IsClosed() {
		return fmt.Errorf("%w: ticket is closed", models.ErrInvalidTransition)
	}
	if err := s.store.LineItems.SoftDelete(ctx, userID, itemID); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "line_item", itemID, "deleted", nil)
	return nil
}

func (s *LineItemService) ListByTicket(ctx context.Context, ticketID uuid.UUID) ([]models.LineItem, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Tickets.GetByID(ctx, userID, ticketID); err != nil {
		return nil, err
	}
	return s.store.LineItems.ListByTicket(ctx, userID, ticketID)
}

// assembleLineItems prices a batch and persists it through the given
// store, which callers bind to a transaction so the batch lands whole
// or not at all.
func assembleLineItems(ctx context.Context, tx *repository.Store, userID, ticketID uuid.UUID, inputs []LineItemInput) ([]models.LineItem, error) {
	items := make([]models.LineItem, 0, len(inputs))
	for _, input := range inputs {
		item, err := priceLineItem(ctx, tx, userID, ticketID, input)
		if err != nil {
			return nil, err
		}
		if err := tx.LineItems.Create(ctx, userID, item); err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// priceLineItem resolves the service and applies its pricing rule.
// Soft-deleted services fail resolution here: history keeps showing
// them, new lines never use them.
func priceLineItem(ctx context.Context, tx *repository.Store, userID, ticketID uuid.UUID, input LineItemInput) (*models.LineItem, error) {
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
	}

	description := strings.TrimSpace(input.Description)
	var serviceID *uuid.UUID
	var unitPrice int64
	var duration *int

	if input.ServiceID == nil {
		if input.PriceOverrideCents == nil {
			return nil, fmt.Errorf("%w: ad-hoc line items require a price", models.ErrValidation)
		}
		if description == "" {
			return nil, fmt.Errorf("%w: ad-hoc line items require a description", models.ErrValidation)
		}
		unitPrice = *input.PriceOverrideCents
	} else {
		service, err := tx.Services.GetByID(ctx, userID, *input.ServiceID)
		if err != nil {
			return nil, err
		}
		serviceID = &service.ID
		if description == "" {
			description = service.Name
		}
		duration = service.DurationMinutes

		switch service.PricingType {
		case models.PricingFixed:
			switch {
			case input.PriceOverrideCents != nil:
				unitPrice = *input.PriceOverrideCents
			case service.DefaultPriceCents != nil:
				unitPrice = *service.DefaultPriceCents
			default:
				return nil, fmt.Errorf("%w: service %q has no default price", models.ErrValidation, service.Name)
			}
		case models.PricingPerUnit:
			switch {
			case input.PriceOverrideCents != nil:
				unitPrice = *input.PriceOverrideCents
			case service.UnitPriceCents != nil:
				unitPrice = *service.UnitPriceCents
			default:
				return nil, fmt.Errorf("%w: service %q has no unit price", models.ErrValidation, service.Name)
			}
		case models.PricingFlexible:
			if input.PriceOverrideCents == nil {
				return nil, fmt.Errorf("%w: flexible-priced service %q requires a price", models.ErrValidation, service.Name)
			}
			unitPrice = *input.PriceOverrideCents
		default:
			return nil, fmt.Errorf("%w: unknown pricing type %q", models.ErrValidation, service.PricingType)
		}
	}

	if unitPrice < 0 {
		return nil, fmt.Errorf("%w: price cannot be negative", models.ErrValidation)
	}
	if input.DurationOverrideMin != nil {
		duration = input.DurationOverrideMin
	}

	return &models.LineItem{
		TicketID:        ticketID,
		ServiceID:       serviceID,
		Description:     description,
		Quantity:        quantity,
		UnitPriceCents:  unitPrice,
		TotalCents:      unitPrice * quantity,
		DurationMinutes: duration,
	}, nil
}

func lineItemSnapshot(item *models.LineItem) map[string]interface{} {
	return map[string]interface{}{
		"description":      item.Description,
		"quantity":         item.Quantity,
		"unit_price_cents": item.UnitPriceCents,
		"total_cents":      item.TotalCents,
		"duration_minutes": intValue(item.DurationMinutes),
	}
}
