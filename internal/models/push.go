package models

import "time"

// PushState captures the lifecycle of a push.
type PushState string

const (
	PushStateAccepting PushState = "accepting"
	PushStateOnStage   PushState = "onstage"
	PushStateLive      PushState = "live"
	PushStateAbandoned PushState = "abandoned"
)

// PushDefaultState is the state every new push starts in.
const PushDefaultState = PushStateAccepting

// OpenPushStates are the states a push passes through before it is
// closed out. Used by the open-pushes and current-push views.
var OpenPushStates = []PushState{PushStateAccepting, PushStateOnStage, PushStateLive}

// Push is a batch deployment event bundling accepted requests.
type Push struct {
	ID         string     `db:"id" json:"key"`
	Owner      string     `db:"owner" json:"owner"`
	State      PushState  `db:"state" json:"state"`
	Name       string     `db:"name" json:"name"`
	Stage      string     `db:"stage" json:"stage"`
	LTime      *time.Time `db:"ltime" json:"ltime,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"ctime"`
	ModifiedAt time.Time  `db:"modified_at" json:"mtime"`
	CreatedBy  string     `db:"created_by" json:"-"`
	ModifiedBy string     `db:"modified_by" json:"-"`
	Version    int        `db:"version" json:"-"`
}

// StateIn reports whether the push is in one of the given states.
func (p *Push) StateIn(states ...PushState) bool {
	for _, s := range states {
		if p.State == s {
			return true
		}
	}
	return false
}

// PTime is the canonical sort time of a push: the live timestamp once
// set, the creation time before that.
func (p *Push) PTime() time.Time {
	if p.LTime != nil {
		return *p.LTime
	}
	return p.CreatedAt
}

// Editable reports whether the push still accepts membership changes.
func (p *Push) Editable() bool {
	return p.StateIn(PushStateAccepting, PushStateOnStage)
}

// CanChangeOwner reports whether ownership transfer is allowed.
func (p *Push) CanChangeOwner() bool {
	return p.Editable()
}

// DisplayName is the name used in notifications, falling back to a
// generic label for unnamed pushes.
func (p *Push) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return "the push"
}

// Path is the push's canonical API path.
func (p *Push) Path() string {
	return "/pushes/" + p.ID
}

// RequestsCacheKey is the cache key holding this push's request set.
func (p *Push) RequestsCacheKey() string {
	return "push-requests-" + p.ID
}

// PushFilter constrains push listing queries.
type PushFilter struct {
	States []PushState
	Owner  string
	Limit  int
}
