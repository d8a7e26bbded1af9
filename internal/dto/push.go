package dto

import "github.com/pushmasterhq/pushmaster-api/internal/models"

// CreatePushPayload names a new push. The name is optional.
type CreatePushPayload struct {
	Name string `json:"name"`
}

// AcceptRequestPayload identifies the request to pull into a push.
type AcceptRequestPayload struct {
	RequestID string `json:"request_id" validate:"required"`
}

// SendToStagePayload selects the deploy stage for a push.
type SendToStagePayload struct {
	Stage string `json:"stage" validate:"required"`
}

// PushDetail is the push view returned by the API: the push itself,
// its member requests, and (for the push owner) the still-pending
// requests that could be accepted into it.
type PushDetail struct {
	Push            *models.Push     `json:"push"`
	Requests        []models.Request `json:"requests"`
	PendingRequests []models.Request `json:"pending_requests,omitempty"`
}
