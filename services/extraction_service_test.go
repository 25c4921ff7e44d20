package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubExtractor returns canned attributes and lead fields.
type stubExtractor struct {
	attrs  []ExtractedAttribute
	fields LeadFields
	err    error
}

func (s *stubExtractor) ExtractAttributes(ctx context.Context, noteText string) ([]ExtractedAttribute, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.attrs, nil
}

func (s *stubExtractor) ExtractLeadFields(ctx context.Context, rawText string) (*LeadFields, error) {
	if s.err != nil {
		return nil, s.err
	}
	fields := s.fields
	return &fields, nil
}

func TestProcessUnprocessedNotes(t *testing.T) {
	env := newTestEnv(t)
	extractor := &stubExtractor{attrs: []ExtractedAttribute{
		{Key: "gate_code", Value: "4417", Confidence: 0.92},
		{Key: "", Value: "dropped"}, // blank keys are discarded
	}}
	extraction := NewExtractionService(env.store, env.attributes, extractor, zap.NewNop())

	customer := env.createCustomer("")
	note, err := env.notes.Create(env.ctx, NoteInput{
		CustomerID: customer.ID,
		Content:    "Gate code is 4417, side entrance.",
	})
	require.NoError(t, err)

	processed, err := extraction.ProcessUnprocessedNotes(env.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	attrs, err := env.attributes.ListByCustomer(env.ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "gate_code", attrs[0].Key)
	require.NotNil(t, attrs[0].SourceNoteID)
	assert.Equal(t, note.ID, *attrs[0].SourceNoteID)

	// The note is consumed; the next sweep finds nothing.
	processed, err = extraction.ProcessUnprocessedNotes(env.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestProcessUnprocessedNotesKeepsFailedNotes(t *testing.T) {
	env := newTestEnv(t)
	extractor := &stubExtractor{err: errors.New("model unavailable")}
	extraction := NewExtractionService(env.store, env.attributes, extractor, zap.NewNop())

	customer := env.createCustomer("")
	_, err := env.notes.Create(env.ctx, NoteInput{
		CustomerID: customer.ID,
		Content:    "Gate code is 4417.",
	})
	require.NoError(t, err)

	processed, err := extraction.ProcessUnprocessedNotes(env.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	// Once the extractor recovers the note is still in the queue.
	extractor.err = nil
	extractor.attrs = []ExtractedAttribute{{Key: "gate_code", Value: "4417", Confidence: 0.9}}
	processed, err = extraction.ProcessUnprocessedNotes(env.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
}

func TestProcessUnprocessedNotesWithoutExtractorIsNoop(t *testing.T) {
	env := newTestEnv(t)
	extraction := NewExtractionService(env.store, env.attributes, nil, zap.NewNop())

	customer := env.createCustomer("")
	_, err := env.notes.Create(env.ctx, NoteInput{
		CustomerID: customer.ID,
		Content:    "Gate code is 4417.",
	})
	require.NoError(t, err)

	processed, err := extraction.ProcessUnprocessedNotes(env.ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestEnrichLeadFillsMissingFields(t *testing.T) {
	env := newTestEnv(t)
	extractor := &stubExtractor{fields: LeadFields{
		Name:    "Jordan Oak",
		Phone:   "(555) 123-0002",
		Email:   "jordan@example.com",
		Urgency: "high",
	}}
	extraction := NewExtractionService(env.store, env.attributes, extractor, zap.NewNop())

	lead, err := env.leads.Create(env.ctx, LeadInput{
		RawText: "hi this is jordan, windows are filthy, call 555 123 0002 asap",
	})
	require.NoError(t, err)

	require.NoError(t, extraction.EnrichLead(env.ctx, lead.ID))

	enriched, err := env.leads.Get(env.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Oak", enriched.Name)
	assert.Equal(t, "5551230002", enriched.Phone)
	assert.Equal(t, "jordan@example.com", enriched.Email)
	assert.Equal(t, "high", enriched.Urgency)
	assert.NotEmpty(t, enriched.ExtractedData)
}

func TestEnrichLeadDoesNotOverwrite(t *testing.T) {
	env := newTestEnv(t)
	extractor := &stubExtractor{fields: LeadFields{Name: "Wrong Name", Phone: "999"}}
	extraction := NewExtractionService(env.store, env.attributes, extractor, zap.NewNop())

	lead, err := env.leads.Create(env.ctx, LeadInput{
		Name:    "Jordan Oak",
		Phone:   "+15551230002",
		RawText: "quote request",
	})
	require.NoError(t, err)

	require.NoError(t, extraction.EnrichLead(env.ctx, lead.ID))

	enriched, err := env.leads.Get(env.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Oak", enriched.Name)
	assert.Equal(t, "+15551230002", enriched.Phone)
}
