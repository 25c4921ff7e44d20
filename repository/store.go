// Package repository is the only code that touches the database.
// Every method on a tenant-owned table takes the owning user ID as its
// first argument after the context and folds it into the WHERE clause,
// so cross-tenant access is unrepresentable rather than a discipline.
package repository

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fieldpro-backend/models"
)

type Store struct {
	db  *gorm.DB
	log *zap.Logger

	Users      *UserRepo
	Customers  *CustomerRepo
	Addresses  *AddressRepo
	Services   *ServiceRepo
	Tickets    *TicketRepo
	LineItems  *LineItemRepo
	Invoices   *InvoiceRepo
	Templates  *TemplateRepo
	Leads      *LeadRepo
	Notes      *NoteRepo
	Attributes *AttributeRepo
	Messages   *MessageRepo
	Waitlist   *WaitlistRepo
	AuditLogs  *AuditLogRepo
}

func NewStore(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{
		db:  db,
		log: log,

		Users:      &UserRepo{db: db},
		Customers:  &CustomerRepo{db: db},
		Addresses:  &AddressRepo{db: db},
		Services:   &ServiceRepo{db: db},
		Tickets:    &TicketRepo{db: db},
		LineItems:  &LineItemRepo{db: db},
		Invoices:   &InvoiceRepo{db: db},
		Templates:  &TemplateRepo{db: db},
		Leads:      &LeadRepo{db: db},
		Notes:      &NoteRepo{db: db},
		Attributes: &AttributeRepo{db: db},
		Messages:   &MessageRepo{db: db},
		Waitlist:   &WaitlistRepo{db: db},
		AuditLogs:  &AuditLogRepo{db: db},
	}
}

// Transaction runs fn against a store bound to one transaction. An
// error from fn rolls everything back.
func (s *Store) Transaction(fn func(txStore *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx, s.log))
	})
}

// DB exposes the raw handle for migrations only.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// notFound translates gorm's sentinel so callers match on the service
// error taxonomy. A row owned by another tenant and a row that does
// not exist are indistinguishable on purpose.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
