package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageStatus is the delivery state of a scheduled message.
type MessageStatus string

const (
	MessagePending   MessageStatus = "pending"
	MessageSent      MessageStatus = "sent"
	MessageCancelled MessageStatus = "cancelled"
	MessageFailed    MessageStatus = "failed"
	MessageSkipped   MessageStatus = "skipped"
)

// MessageType classifies what a scheduled message is for.
type MessageType string

const (
	MessageServiceReminder         MessageType = "service_reminder"
	MessageAppointmentConfirmation MessageType = "appointment_confirmation"
	MessageAppointmentReminder     MessageType = "appointment_reminder"
	MessagePaymentReceipt          MessageType = "payment_receipt"
	MessageCustom                  MessageType = "custom"
)

// ScheduledMessage is an outbound SMS queued for a future send. The
// dispatcher sweep picks up pending rows whose SendAt has passed;
// cancelling a ticket cancels its pending messages.
type ScheduledMessage struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	CustomerID uuid.UUID  `gorm:"type:uuid;index;not null"`
	TicketID   *uuid.UUID `gorm:"type:uuid;index"`

	Type    MessageType   `gorm:"type:varchar(40);not null"`
	Status  MessageStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ToPhone string        `gorm:"not null"`
	Body    string        `gorm:"type:text;not null"`

	SendAt     time.Time `gorm:"not null;index"`
	SentAt     *time.Time
	FailReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *ScheduledMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
