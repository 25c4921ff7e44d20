package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpro-backend/models"
)

func (e *testEnv) createLead(name string) *models.Lead {
	e.t.Helper()
	lead, err := e.leads.Create(e.ctx, LeadInput{
		Name:    name,
		Phone:   "+15551230002",
		Email:   "lead@example.com",
		Source:  "website",
		RawText: "Needs a quote for 14 windows, two story house.",
	})
	require.NoError(e.t, err)
	return lead
}

func TestLeadPipeline(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead("Jordan Oak")
	assert.Equal(t, models.LeadNew, lead.Status)

	contacted, err := env.leads.MarkContacted(env.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadContacted, contacted.Status)
	require.NotNil(t, contacted.ContactedAt)

	qualified, err := env.leads.MarkQualified(env.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadQualified, qualified.Status)

	// The pipeline does not run backwards.
	_, err = env.leads.MarkContacted(env.ctx, lead.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestLeadConvertCreatesCustomer(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead("Jordan Oak")

	converted, customer, err := env.leads.Convert(env.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadConverted, converted.Status)
	require.NotNil(t, converted.ConvertedCustomerID)
	assert.Equal(t, customer.ID, *converted.ConvertedCustomerID)
	assert.Equal(t, "Jordan", customer.FirstName)
	assert.Equal(t, "Oak", customer.LastName)
	assert.Equal(t, "+15551230002", customer.Phone)

	// The customer is a real tenant record.
	fetched, err := env.customers.Get(env.ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, fetched.ID)

	// Terminal leads stay terminal.
	_, _, err = env.leads.Convert(env.ctx, lead.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = env.leads.Archive(env.ctx, lead.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestLeadArchive(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead("Jordan Oak")

	archived, err := env.leads.Archive(env.ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadArchived, archived.Status)

	_, _, err = env.leads.Convert(env.ctx, lead.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
}
