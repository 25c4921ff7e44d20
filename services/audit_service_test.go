package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeChanges(t *testing.T) {
	before := map[string]interface{}{
		"title":      "Window Cleaning",
		"status":     "scheduled",
		"updated_at": "2026-08-01T00:00:00Z",
	}
	after := map[string]interface{}{
		"title":      "Window Cleaning",
		"status":     "in_progress",
		"updated_at": "2026-08-02T00:00:00Z",
	}

	changes := ComputeChanges(before, after)
	require.Len(t, changes, 1)
	assert.Equal(t, "scheduled", changes["status"].Old)
	assert.Equal(t, "in_progress", changes["status"].New)
}

func TestComputeChangesNewField(t *testing.T) {
	changes := ComputeChanges(
		map[string]interface{}{},
		map[string]interface{}{"closed_at": "2026-08-02T00:00:00Z"},
	)
	require.Len(t, changes, 1)
	assert.Nil(t, changes["closed_at"].Old)
}

func TestAuditTrailFollowsLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ticket := env.createScheduledTicket()
	env.completeTicket(ticket.ID)

	history, err := env.audit.History(env.ctx, "ticket", ticket.ID)
	require.NoError(t, err)

	actions := make([]string, 0, len(history))
	for _, entry := range history {
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, "created")
	assert.Contains(t, actions, "clock_in")
	assert.Contains(t, actions, "completed")
}
