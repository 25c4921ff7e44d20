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

// SMSGateway sends one text message. clients.TwilioSMS implements it
// in production; tests substitute a recorder.
type SMSGateway interface {
	SendSMS(to, body string) error
}

// MessageService queues reminder messages against tickets and invoices
// and dispatches the due ones. It never sends inline with a request:
// every send goes through a pending ScheduledMessage row the sweep
// picks up, so a gateway outage delays messages instead of failing
// ticket operations.
type MessageService struct {
	store   *repository.Store
	gateway SMSGateway
	audit   *AuditService
	logger  *zap.Logger
}

func NewMessageService(store *repository.Store, gateway SMSGateway, audit *AuditService, logger *zap.Logger) *MessageService {
	return &MessageService{store: store, gateway: gateway, audit: audit, logger: logger}
}

// reminderLeadTime is how long before the appointment the reminder
// text goes out.
const reminderLeadTime = 24 * time.Hour

// ScheduleTicketMessages queues the confirmation and, when the visit
// is far enough out, the day-before reminder for a freshly scheduled
// ticket. Customers without a phone number get nothing queued.
func (s *MessageService) ScheduleTicketMessages(ctx context.Context, ticketID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return err
	}
	if ticket.ScheduledAt == nil || ticket.IsClosed() {
		return nil
	}
	customer, err := s.store.Customers.GetByID(ctx, userID, ticket.CustomerID)
	if err != nil {
		return err
	}
	if customer.Phone == "" {
		s.logger.Info("no phone on customer, skipping ticket messages",
			zap.String("ticket_id", ticketID.String()),
			zap.String("customer_id", customer.ID.String()),
		)
		return nil
	}

	now := time.Now().UTC()
	when := ticket.ScheduledAt.Format("Mon Jan 2 at 3:04 PM")

	messages := []*models.ScheduledMessage{{
		CustomerID: customer.ID,
		TicketID:   &ticket.ID,
		Type:       models.MessageAppointmentConfirmation,
		ToPhone:    customer.Phone,
		Body: fmt.Sprintf("Hi %s! Your %s is booked for %s. Reply YES to confirm or call us to reschedule.",
			customer.DisplayName(), ticket.Title, when),
		SendAt: now,
	}}

	if reminderAt := ticket.ScheduledAt.Add(-reminderLeadTime); reminderAt.After(now) {
		messages = append(messages, &models.ScheduledMessage{
			CustomerID: customer.ID,
			TicketID:   &ticket.ID,
			Type:       models.MessageAppointmentReminder,
			ToPhone:    customer.Phone,
			Body: fmt.Sprintf("Reminder: your %s is tomorrow, %s. See you then!",
				ticket.Title, when),
			SendAt: reminderAt.UTC(),
		})
	}

	return s.store.Transaction(func(tx *repository.Store) error {
		for _, msg := range messages {
			if err := tx.Messages.Create(ctx, userID, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

// RescheduleTicketMessages drops whatever was queued for the old slot
// and queues for the new one.
func (s *MessageService) RescheduleTicketMessages(ctx context.Context, ticketID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if _, err := s.store.Messages.CancelPendingByTicket(ctx, userID, ticketID); err != nil {
		return err
	}
	return s.ScheduleTicketMessages(ctx, ticketID)
}

// CancelTicketMessages cancels every pending message queued for the
// ticket, typically because the ticket itself was cancelled.
func (s *MessageService) CancelTicketMessages(ctx context.Context, ticketID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	cancelled, err := s.store.Messages.CancelPendingByTicket(ctx, userID, ticketID)
	if err != nil {
		return err
	}
	if cancelled > 0 {
		s.logger.Info("cancelled pending ticket messages",
			zap.String("ticket_id", ticketID.String()),
			zap.Int64("count", cancelled),
		)
	}
	return nil
}

// ScheduleReceipt queues a thank-you text after an invoice is paid in
// full.
func (s *MessageService) ScheduleReceipt(ctx context.Context, customerID uuid.UUID, totalCents int64) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	customer, err := s.store.Customers.GetByID(ctx, userID, customerID)
	if err != nil {
		return err
	}
	if customer.Phone == "" {
		return nil
	}

	msg := &models.ScheduledMessage{
		CustomerID: customer.ID,
		Type:       models.MessagePaymentReceipt,
		ToPhone:    customer.Phone,
		Body: fmt.Sprintf("Thanks %s! We received your payment of $%d.%02d.",
			customer.DisplayName(), totalCents/100, totalCents%100),
		SendAt: time.Now().UTC(),
	}
	return s.store.Messages.Create(ctx, userID, msg)
}

type CustomMessageInput struct {
	CustomerID uuid.UUID
	TicketID   *uuid.UUID
	Body       string
	SendAt     time.Time
}

// ScheduleCustom queues an operator-written message.
func (s *MessageService) ScheduleCustom(ctx context.Context, input CustomMessageInput) (*models.ScheduledMessage, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if input.Body == "" {
		return nil, fmt.Errorf("%w: message body is required", models.ErrValidation)
	}
	customer, err := s.store.Customers.GetByID(ctx, userID, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.Phone == "" {
		return nil, fmt.Errorf("%w: customer has no phone number", models.ErrValidation)
	}
	sendAt := input.SendAt
	if sendAt.IsZero() {
		sendAt = time.Now().UTC()
	}

	msg := &models.ScheduledMessage{
		CustomerID: customer.ID,
		TicketID:   input.TicketID,
		Type:       models.MessageCustom,
		ToPhone:    customer.Phone,
		Body:       input.Body,
		SendAt:     sendAt.UTC(),
	}
	if err := s.store.Messages.Create(ctx, userID, msg); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, userID, "scheduled_message", msg.ID, "created", nil)
	return msg, nil
}

// Cancel moves one pending message to cancelled.
func (s *MessageService) Cancel(ctx context.Context, messageID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if _, err := s.store.Messages.GetByID(ctx, userID, messageID); err != nil {
		return err
	}
	if err := s.store.Messages.Claim(ctx, userID, messageID, models.MessageCancelled, nil); err != nil {
		return err
	}
	s.audit.Record(ctx, userID, "scheduled_message", messageID, "cancelled", nil)
	return nil
}

func (s *MessageService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.ScheduledMessage, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Messages.ListByCustomer(ctx, userID, customerID)
}

// DispatchDue sends every pending message whose time has come for the
// tenant in the context. Each row is claimed with a guarded update
// before the gateway call, so two overlapping sweeps cannot text the
// same customer twice; a gateway failure flips the claimed row to
// failed with the error recorded. Returns how many were sent.
func (s *MessageService) DispatchDue(ctx context.Context, asOf time.Time, limit int) (int, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if s.gateway == nil {
		s.logger.Warn("no sms gateway configured, leaving due messages pending")
		return 0, nil
	}
	due, err := s.store.Messages.ListDue(ctx, userID, asOf, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		msg := &due[i]
		if msg.ToPhone == "" {
			if err := s.store.Messages.Claim(ctx, userID, msg.ID, models.MessageSkipped, map[string]interface{}{
				"fail_reason": "no phone number",
			}); err != nil {
				continue
			}
			continue
		}

		now := time.Now().UTC()
		err := s.store.Messages.Claim(ctx, userID, msg.ID, models.MessageSent, map[string]interface{}{
			"sent_at": now,
		})
		if err != nil {
			// Another sweep claimed it first.
			continue
		}

		if err := s.gateway.SendSMS(msg.ToPhone, msg.Body); err != nil {
			s.logger.Error("message send failed",
				zap.String("message_id", msg.ID.String()),
				zap.Error(err),
			)
			msg.Status = models.MessageFailed
			msg.FailReason = err.Error()
			msg.SentAt = nil
			if updateErr := s.store.Messages.Update(ctx, userID, msg); updateErr != nil {
				s.logger.Error("failed to record message failure",
					zap.String("message_id", msg.ID.String()),
					zap.Error(updateErr),
				)
			}
			continue
		}
		sent++
	}
	return sent, nil
}
