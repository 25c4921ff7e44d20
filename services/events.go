package services

import (
	"time"

	"github.com/google/uuid"
)

// Event is anything the bus can carry. Concrete events are small value
// types; handlers receive them synchronously on the publishing
// goroutine.
type Event interface {
	EventName() string
}

type CustomerCreated struct {
	UserID     uuid.UUID
	CustomerID uuid.UUID
}

func (CustomerCreated) EventName() string { return "customer.created" }

type TicketCreated struct {
	UserID      uuid.UUID
	TicketID    uuid.UUID
	CustomerID  uuid.UUID
	ScheduledAt *time.Time
}

func (TicketCreated) EventName() string { return "ticket.created" }

type TicketRescheduled struct {
	UserID         uuid.UUID
	TicketID       uuid.UUID
	CustomerID     uuid.UUID
	OldScheduledAt *time.Time
	NewScheduledAt *time.Time
}

func (TicketRescheduled) EventName() string { return "ticket.rescheduled" }

type TicketClockIn struct {
	UserID   uuid.UUID
	TicketID uuid.UUID
}

func (TicketClockIn) EventName() string { return "ticket.clock_in" }

type TicketCompleted struct {
	UserID     uuid.UUID
	TicketID   uuid.UUID
	CustomerID uuid.UUID
}

func (TicketCompleted) EventName() string { return "ticket.completed" }

type TicketCancelled struct {
	UserID     uuid.UUID
	TicketID   uuid.UUID
	CustomerID uuid.UUID
}

func (TicketCancelled) EventName() string { return "ticket.cancelled" }

type InvoiceSent struct {
	UserID     uuid.UUID
	InvoiceID  uuid.UUID
	TicketID   uuid.UUID
	CustomerID uuid.UUID
	TotalCents int64
}

func (InvoiceSent) EventName() string { return "invoice.sent" }

type InvoicePaid struct {
	UserID     uuid.UUID
	InvoiceID  uuid.UUID
	CustomerID uuid.UUID
	TotalCents int64
}

func (InvoicePaid) EventName() string { return "invoice.paid" }

type NoteCreated struct {
	UserID     uuid.UUID
	NoteID     uuid.UUID
	CustomerID uuid.UUID
}

func (NoteCreated) EventName() string { return "note.created" }

type LeadCreated struct {
	UserID uuid.UUID
	LeadID uuid.UUID
}

func (LeadCreated) EventName() string { return "lead.created" }

// OccurrenceMaterialized fires when the recurrence sweep turns a
// template occurrence into a ticket.
type OccurrenceMaterialized struct {
	UserID     uuid.UUID
	TemplateID uuid.UUID
	TicketID   uuid.UUID
	OccursAt   time.Time
}

func (OccurrenceMaterialized) EventName() string { return "occurrence.materialized" }
