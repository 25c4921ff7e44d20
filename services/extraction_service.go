package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldpro-backend/clients"
	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// ExtractedAttribute is one structured fact pulled out of free text.
type ExtractedAttribute struct {
	Key        string      `json:"key"`
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence"`
}

// LeadFields are the structured contact fields extractable from a raw
// lead message.
type LeadFields struct {
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Urgency         string `json:"urgency"`
	ServiceInterest string `json:"service_interest"`
}

// Extractor pulls structure out of free text. The quality of what
// comes back is the model's problem; persistence and the manual-wins
// rule are ours.
type Extractor interface {
	ExtractAttributes(ctx context.Context, noteText string) ([]ExtractedAttribute, error)
	ExtractLeadFields(ctx context.Context, rawText string) (*LeadFields, error)
}

const attributePrompt = `You extract durable customer facts from a field service operator's note.
Return a JSON array of {"key", "value", "confidence"} objects.
Keys are snake_case (examples: gate_code, dog_name, preferred_entrance, allergy).
Only include facts worth remembering across visits. Confidence is 0 to 1.
Return [] when there is nothing durable.`

const leadPrompt = `You extract contact details from a raw inbound service inquiry.
Return a JSON object {"name", "phone", "email", "urgency", "service_interest"}.
Use "" for anything not present. Urgency is one of "", "low", "medium", "high".`

// LLMExtractor implements Extractor over a chat-completions endpoint.
type LLMExtractor struct {
	llm *clients.LLMClient
}

func NewLLMExtractor(llm *clients.LLMClient) *LLMExtractor {
	return &LLMExtractor{llm: llm}
}

func (e *LLMExtractor) ExtractAttributes(ctx context.Context, noteText string) ([]ExtractedAttribute, error) {
	reply, err := e.llm.Complete(ctx, attributePrompt, noteText)
	if err != nil {
		return nil, err
	}
	var attrs []ExtractedAttribute
	if err := json.Unmarshal([]byte(clients.StripCodeFences(reply)), &attrs); err != nil {
		return nil, fmt.Errorf("parse extraction reply: %w", err)
	}
	return attrs, nil
}

func (e *LLMExtractor) ExtractLeadFields(ctx context.Context, rawText string) (*LeadFields, error) {
	reply, err := e.llm.Complete(ctx, leadPrompt, rawText)
	if err != nil {
		return nil, err
	}
	var fields LeadFields
	if err := json.Unmarshal([]byte(clients.StripCodeFences(reply)), &fields); err != nil {
		return nil, fmt.Errorf("parse lead extraction reply: %w", err)
	}
	return &fields, nil
}

// ExtractionService walks unprocessed notes through the extractor and
// lands the results as customer attributes.
type ExtractionService struct {
	store      *repository.Store
	attributes *AttributeService
	extractor  Extractor
	logger     *zap.Logger
}

func NewExtractionService(store *repository.Store, attributes *AttributeService, extractor Extractor, logger *zap.Logger) *ExtractionService {
	return &ExtractionService{store: store, attributes: attributes, extractor: extractor, logger: logger}
}

// ProcessUnprocessedNotes drains up to limit unprocessed notes for the
// tenant in the context. A note that extracts cleanly is marked
// processed even when it yielded nothing; a note the extractor fails
// on stays unprocessed for the next sweep.
func (s *ExtractionService) ProcessUnprocessedNotes(ctx context.Context, limit int) (int, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if s.extractor == nil {
		return 0, nil
	}
	notes, err := s.store.Notes.ListUnprocessed(ctx, userID, limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range notes {
		if err := s.processNote(ctx, userID, &notes[i]); err != nil {
			s.logger.Warn("note extraction failed",
				zap.String("note_id", notes[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *ExtractionService) processNote(ctx context.Context, userID uuid.UUID, note *models.Note) error {
	attrs, err := s.extractor.ExtractAttributes(ctx, note.Content)
	if err != nil {
		return err
	}
	noteID := note.ID
	for _, attr := range attrs {
		if attr.Key == "" {
			continue
		}
		if _, err := s.attributes.ApplyExtracted(ctx, note.CustomerID, attr.Key, attr.Value, attr.Confidence, &noteID); err != nil {
			return err
		}
	}
	return s.store.Notes.MarkProcessed(ctx, userID, note.ID, time.Now().UTC())
}

// ProcessTicketNotes runs extraction for one ticket's customer right
// away, typically on completion.
func (s *ExtractionService) ProcessTicketNotes(ctx context.Context, ticketID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if s.extractor == nil {
		return nil
	}
	ticket, err := s.store.Tickets.GetByID(ctx, userID, ticketID)
	if err != nil {
		return err
	}
	notes, err := s.store.Notes.ListUnprocessed(ctx, userID, 0)
	if err != nil {
		return err
	}
	for i := range notes {
		if notes[i].TicketID == nil || *notes[i].TicketID != ticket.ID {
			continue
		}
		if err := s.processNote(ctx, userID, &notes[i]); err != nil {
			return err
		}
	}
	return nil
}

// EnrichLead fills a lead's structured fields from its raw text.
func (s *ExtractionService) EnrichLead(ctx context.Context, leadID uuid.UUID) error {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return err
	}
	if s.extractor == nil {
		return nil
	}
	lead, err := s.store.Leads.GetByID(ctx, userID, leadID)
	if err != nil {
		return err
	}
	if lead.RawText == "" {
		return nil
	}

	fields, err := s.extractor.ExtractLeadFields(ctx, lead.RawText)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	lead.ExtractedData = raw
	if lead.Name == "" {
		lead.Name = fields.Name
	}
	if lead.Phone == "" {
		lead.Phone = utils.NormalizePhone(fields.Phone)
	}
	if lead.Email == "" {
		lead.Email = fields.Email
	}
	if lead.Urgency == "" {
		lead.Urgency = fields.Urgency
	}
	return s.store.Leads.Update(ctx, userID, lead)
}
