package models

import "time"

// RequestState captures the lifecycle of a deploy request.
type RequestState string

const (
	RequestStateRequested RequestState = "requested"
	RequestStateAccepted  RequestState = "accepted"
	RequestStateCheckedIn RequestState = "checkedin"
	RequestStateOnStage   RequestState = "onstage"
	RequestStateTested    RequestState = "tested"
	RequestStateLive      RequestState = "live"
	RequestStateAbandoned RequestState = "abandoned"
	RequestStateRejected  RequestState = "rejected"
)

// RequestDefaultState is the state every new or re-edited request
// starts in.
const RequestDefaultState = RequestStateRequested

// AllRequestStates enumerates every legal request state.
var AllRequestStates = []RequestState{
	RequestStateRequested,
	RequestStateAccepted,
	RequestStateCheckedIn,
	RequestStateOnStage,
	RequestStateTested,
	RequestStateLive,
	RequestStateAbandoned,
	RequestStateRejected,
}

// Request is a single engineer's ask to include a change in a push.
type Request struct {
	ID           string       `db:"id" json:"key"`
	Owner        string       `db:"owner" json:"owner"`
	Subject      string       `db:"subject" json:"subject"`
	Branch       string       `db:"branch" json:"branch"`
	Message      string       `db:"message" json:"message"`
	State        RequestState `db:"state" json:"state"`
	RejectReason string       `db:"reject_reason" json:"reject_reason"`
	TargetDate   time.Time    `db:"target_date" json:"target_date"`
	PushPlans    bool         `db:"push_plans" json:"push_plans"`
	JSSerials    bool         `db:"js_serials" json:"js_serials"`
	ImgSerials   bool         `db:"img_serials" json:"img_serials"`
	Urgent       bool         `db:"urgent" json:"urgent"`
	TestsPass    bool         `db:"tests_pass" json:"tests_pass"`
	TestsPassURL string       `db:"tests_pass_url" json:"tests_pass_url"`
	PushID       *string      `db:"push_id" json:"push,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"ctime"`
	ModifiedAt   time.Time    `db:"modified_at" json:"mtime"`
	CreatedBy    string       `db:"created_by" json:"-"`
	ModifiedBy   string       `db:"modified_by" json:"-"`
	Version      int          `db:"version" json:"-"`
}

// StateIn reports whether the request is in one of the given states.
func (r *Request) StateIn(states ...RequestState) bool {
	for _, s := range states {
		if r.State == s {
			return true
		}
	}
	return false
}

// HasPush reports whether the request currently belongs to a push.
func (r *Request) HasPush() bool {
	return r.PushID != nil && *r.PushID != ""
}

// Editable reports whether the request can be edited and resubmitted.
func (r *Request) Editable() bool {
	return r.StateIn(RequestStateRequested, RequestStateRejected)
}

// CanChangeOwner reports whether ownership transfer is allowed.
func (r *Request) CanChangeOwner() bool {
	return r.StateIn(
		RequestStateRequested,
		RequestStateAccepted,
		RequestStateCheckedIn,
		RequestStateOnStage,
		RequestStateRejected,
	)
}

// Path is the request's canonical API path.
func (r *Request) Path() string {
	return "/requests/" + r.ID
}

// RequestFilter constrains request listing queries.
type RequestFilter struct {
	States []RequestState
	Owner  string
	PushID string
	Limit  int
}
