package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// InvoiceService derives billing snapshots from completed tickets and
// walks them through draft → sent → partial|paid, with void as the
// only escape hatch. Amounts are recomputed from live line items at
// derivation and frozen once dispatched.
type InvoiceService struct {
	store  *repository.Store
	bus    *EventBus
	audit  *AuditService
	logger *zap.Logger
}

func NewInvoiceService(store *repository.Store, bus *EventBus, audit *AuditService, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{store: store, bus: bus, audit: audit, logger: logger}
}

// ComputeTaxCents applies a basis-point rate with round-half-up
// integer arithmetic. 15000 cents at 825 bps is 1237.5, which rounds
// to 1238.
func ComputeTaxCents(subtotalCents, taxRateBps int64) int64 {
	return (subtotalCents*taxRateBps + 5000) / 10000
}

// Derive computes the invoice for a completed ticket. Calling it again
// returns the existing draft (recomputed if the ticket was reopened
// and corrected in between); a dispatched invoice is never overwritten
// and yields Conflict, forcing void-and-reissue.
func (s *InvoiceService) Derive(ctx context.Context, ticketID uuid.UUID) (*models.Invoice, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var invoice *models.Invoice
	var action string
	derive := func() error {
		return s.store.Transaction(func(tx *repository.Store) error {
			ticket, err := tx.Tickets.GetByID(ctx, userID, ticketID)
			if err != nil {
				return err
			}
			if ticket.Status != models.TicketCompleted {
				return fmt.Errorf("%w: invoices derive from completed tickets, ticket is %s", models.ErrInvalidTransition, ticket.Status)
			}

			// Touch the ticket row under its status guard. This both
			// takes the row lock that serializes concurrent derivations
			// and re-verifies the status inside the transaction.
			err = tx.Tickets.TransitionStatus(ctx, userID, ticketID, models.TicketCompleted, map[string]interface{}{
				"updated_at": time.Now().UTC(),
			})
			if err != nil {
				return err
			}

			items, err := tx.LineItems.ListByTicket(ctx, userID, ticketID)
			if err != nil {
				return err
			}
			var subtotal int64
			for _, item := range items {
				subtotal += item.TotalCents
			}

			user, err := tx.Users.GetByID(ctx, userID)
			if err != nil {
				return err
			}
			taxRate := int64(user.DefaultTaxRateBps)
			tax := ComputeTaxCents(subtotal, taxRate)
			total := subtotal + tax

			existing, err := tx.Invoices.GetActiveByTicket(ctx, userID, ticketID)
			switch {
			case err == nil:
				if existing.Status != models.InvoiceDraft {
					return fmt.Errorf("%w: invoice %s already dispatched, void it to reissue", models.ErrConflict, existing.InvoiceNumber)
				}
				if existing.SubtotalCents != subtotal || existing.TaxRateBps != taxRate {
					existing.SubtotalCents = subtotal
					existing.TaxRateBps = taxRate
					existing.TaxCents = tax
					existing.TotalCents = total
					if err := tx.Invoices.Update(ctx, userID, existing); err != nil {
						return err
					}
					action = "refreshed"
				}
				invoice = existing
				return nil
			case errors.Is(err, models.ErrNotFound):
				// No active invoice yet; fall through and create one.
			default:
				return err
			}

			number, err := tx.Invoices.NextInvoiceNumber(ctx, userID, time.Now().UTC())
			if err != nil {
				return err
			}
			invoice = &models.Invoice{
				TicketID:      ticketID,
				CustomerID:    ticket.CustomerID,
				InvoiceNumber: number,
				Status:        models.InvoiceDraft,
				SubtotalCents: subtotal,
				TaxRateBps:    taxRate,
				TaxCents:      tax,
				TotalCents:    total,
			}
			action = "derived"
			return tx.Invoices.Create(ctx, userID, invoice)
		})
	}

	err = derive()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another derivation grabbed the same number for this account;
		// one retry recounts and takes the next free one.
		err = derive()
	}
	if err != nil {
		return nil, err
	}

	if action != "" {
		s.audit.Record(ctx, userID, "invoice", invoice.ID, action, map[string]FieldChange{
			"subtotal_cents": {Old: nil, New: invoice.SubtotalCents},
			"total_cents":    {Old: nil, New: invoice.TotalCents},
		})
	}
	return invoice, nil
}

// Send dispatches a draft. Amounts freeze here; corrections from now
// on go through void and re-derive.
func (s *InvoiceService) Send(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	invoice, err := s.store.Invoices.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceDraft {
		return nil, fmt.Errorf("%w: only drafts can be sent, invoice is %s", models.ErrInvalidTransition, invoice.Status)
	}

	now := time.Now().UTC()
	due := now.AddDate(0, 0, 30)
	err = s.store.Invoices.TransitionStatus(ctx, userID, invoiceID, models.InvoiceDraft, map[string]interface{}{
		"status":  models.InvoiceSent,
		"sent_at": now,
		"due_at":  due,
	})
	if err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceSent
	invoice.SentAt = &now
	invoice.DueAt = &due

	s.audit.Record(ctx, userID, "invoice", invoice.ID, "sent", map[string]FieldChange{
		"status": {Old: string(models.InvoiceDraft), New: string(models.InvoiceSent)},
	})
	s.bus.Publish(ctx, InvoiceSent{
		UserID:     userID,
		InvoiceID:  invoice.ID,
		TicketID:   invoice.TicketID,
		CustomerID: invoice.CustomerID,
		TotalCents: invoice.TotalCents,
	})
	return invoice, nil
}

// RecordPayment adds a received amount. Crossing the total flips the
// invoice to paid; anything short leaves it partial.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, amountCents int64) (*models.Invoice, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", models.ErrValidation)
	}
	invoice, err := s.store.Invoices.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.IsOpen() {
		return nil, fmt.Errorf("%w: cannot record a payment on a %s invoice", models.ErrInvalidTransition, invoice.Status)
	}

	from := invoice.Status
	newPaid := invoice.PaidCents + amountCents
	updates := map[string]interface{}{
		"paid_cents": newPaid,
	}
	newStatus := models.InvoicePartial
	var paidAt *time.Time
	if newPaid >= invoice.TotalCents {
		newStatus = models.InvoicePaid
		now := time.Now().UTC()
		paidAt = &now
		updates["paid_at"] = now
	}
	updates["status"] = newStatus

	// Guarded on the status and paid amount read above: a concurrent
	// payment forces the caller to re-read and retry instead of
	// overwriting the other payment's balance.
	err = s.store.Invoices.ApplyPayment(ctx, userID, invoiceID, from, invoice.PaidCents, updates)
	if err != nil {
		return nil, err
	}
	invoice.PaidCents = newPaid
	invoice.Status = newStatus
	invoice.PaidAt = paidAt

	s.audit.Record(ctx, userID, "invoice", invoice.ID, "payment_recorded", map[string]FieldChange{
		"paid_cents": {Old: newPaid - amountCents, New: newPaid},
		"status":     {Old: string(from), New: string(newStatus)},
	})
	if newStatus == models.InvoicePaid {
		s.bus.Publish(ctx, InvoicePaid{
			UserID:     userID,
			InvoiceID:  invoice.ID,
			CustomerID: invoice.CustomerID,
			TotalCents: invoice.TotalCents,
		})
	}
	return invoice, nil
}

// Void retires an invoice in any non-paid state. The ticket can then
// be re-derived into a fresh invoice.
func (s *InvoiceService) Void(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	invoice, err := s.store.Invoices.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case models.InvoicePaid:
		return nil, fmt.Errorf("%w: paid invoices cannot be voided", models.ErrInvalidTransition)
	case models.InvoiceVoid:
		return nil, fmt.Errorf("%w: invoice is already void", models.ErrInvalidTransition)
	}

	from := invoice.Status
	err = s.store.Invoices.TransitionStatus(ctx, userID, invoiceID, from, map[string]interface{}{
		"status": models.InvoiceVoid,
	})
	if err != nil {
		return nil, err
	}
	invoice.Status = models.InvoiceVoid

	s.audit.Record(ctx, userID, "invoice", invoice.ID, "voided", map[string]FieldChange{
		"status": {Old: string(from), New: string(models.InvoiceVoid)},
	})
	return invoice, nil
}

func (s *InvoiceService) Get(ctx context.Context, invoiceID uuid.UUID) (*models.Invoice, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Invoices.GetByID(ctx, userID, invoiceID)
}

// GetActiveForTicket returns the ticket's authoritative invoice.
func (s *InvoiceService) GetActiveForTicket(ctx context.Context, ticketID uuid.UUID) (*models.Invoice, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Invoices.GetActiveByTicket(ctx, userID, ticketID)
}

func (s *InvoiceService) List(ctx context.Context, filter repository.InvoiceFilter) ([]models.Invoice, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Invoices.List(ctx, userID, filter)
}
