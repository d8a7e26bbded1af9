package dto

// RequestPayload carries the editable fields of a deploy request. The
// same shape serves create and edit.
type RequestPayload struct {
	Subject      string `json:"subject" validate:"required"`
	Branch       string `json:"branch"`
	Message      string `json:"message"`
	TargetDate   string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	PushPlans    bool   `json:"push_plans"`
	JSSerials    bool   `json:"js_serials"`
	ImgSerials   bool   `json:"img_serials"`
	Urgent       bool   `json:"urgent"`
	TestsPass    bool   `json:"tests_pass"`
	TestsPassURL string `json:"tests_pass_url"`
}

// RejectRequestPayload carries an optional rejection reason.
type RejectRequestPayload struct {
	Reason string `json:"reason"`
}
