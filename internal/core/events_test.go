package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergeRequestPayload(kind string, projectID, iid int, action string) *WebhookPayload {
	p := &WebhookPayload{ObjectKind: kind}
	p.Project.ID = projectID
	p.ObjectAttributes.IID = iid
	p.ObjectAttributes.Action = action
	p.User.Email = "dev@example.com"
	return p
}

func TestEventFromWebhook(t *testing.T) {
	event, err := EventFromWebhook(mergeRequestPayload("merge_request", 42, 7, "open"))
	require.NoError(t, err)

	assert.Equal(t, 42, event.ProjectID)
	assert.Equal(t, 7, event.MRIID)
	assert.Equal(t, "open", event.Action)
	assert.Equal(t, "dev@example.com", event.TriggerEmail)
}

func TestEventFromWebhookRejectsOtherKinds(t *testing.T) {
	for _, kind := range []string{"push", "note", "pipeline", ""} {
		t.Run("kind "+kind, func(t *testing.T) {
			_, err := EventFromWebhook(mergeRequestPayload(kind, 42, 7, "open"))
			assert.ErrorIs(t, err, ErrNotMergeRequestEvent)
		})
	}
}

func TestEventFromWebhookRequiresIdentifiers(t *testing.T) {
	_, err := EventFromWebhook(mergeRequestPayload("merge_request", 0, 7, "open"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotMergeRequestEvent)

	_, err = EventFromWebhook(mergeRequestPayload("merge_request", 42, 0, "open"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotMergeRequestEvent)
}

func TestManualEvent(t *testing.T) {
	event := ManualEvent(42, 7)

	assert.Equal(t, 42, event.ProjectID)
	assert.Equal(t, 7, event.MRIID)
	assert.Equal(t, ActionManual, event.Action)
	assert.Empty(t, event.TriggerEmail)
}
