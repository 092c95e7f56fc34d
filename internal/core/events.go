package core

import (
	"errors"
	"fmt"
)

// ErrNotMergeRequestEvent marks webhook payloads of a kind other than
// "merge_request". Such payloads are ignored, not rejected.
var ErrNotMergeRequestEvent = errors.New("event is not a merge request event")

// ActionManual is the synthetic action used when a review is triggered
// directly through the API or CLI instead of by a host webhook.
const ActionManual = "manual"

// WebhookPayload mirrors the relevant parts of the host's merge request
// webhook body.
type WebhookPayload struct {
	ObjectKind       string `json:"object_kind"`
	EventType        string `json:"event_type"`
	ObjectAttributes struct {
		IID    int    `json:"iid"`
		Action string `json:"action"`
	} `json:"object_attributes"`
	Project struct {
		ID int `json:"id"`
	} `json:"project"`
	User struct {
		Email string `json:"email"`
	} `json:"user"`
}

// ReviewEvent is the application's internal view of one review trigger,
// whether it arrived as a webhook or was requested manually.
type ReviewEvent struct {
	ProjectID    int
	MRIID        int
	Action       string
	TriggerEmail string
}

// EventFromWebhook transforms a raw webhook payload into the internal
// ReviewEvent representation. It acts as an anti-corruption layer: the
// payload kind is checked and the identifiers required to fetch the merge
// request must be present before a job is ever dispatched.
func EventFromWebhook(payload *WebhookPayload) (*ReviewEvent, error) {
	if payload.ObjectKind != "merge_request" {
		return nil, fmt.Errorf("%w: object_kind %q", ErrNotMergeRequestEvent, payload.ObjectKind)
	}
	if payload.Project.ID <= 0 {
		return nil, fmt.Errorf("missing project id in webhook payload")
	}
	if payload.ObjectAttributes.IID <= 0 {
		return nil, fmt.Errorf("missing merge request iid in webhook payload")
	}

	return &ReviewEvent{
		ProjectID:    payload.Project.ID,
		MRIID:        payload.ObjectAttributes.IID,
		Action:       payload.ObjectAttributes.Action,
		TriggerEmail: payload.User.Email,
	}, nil
}

// ManualEvent builds the ReviewEvent for a manually triggered review.
func ManualEvent(projectID, mrIID int) *ReviewEvent {
	return &ReviewEvent{
		ProjectID: projectID,
		MRIID:     mrIID,
		Action:    ActionManual,
	}
}
