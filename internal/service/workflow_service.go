package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pushmasterhq/pushmaster-api/internal/dto"
	"github.com/pushmasterhq/pushmaster-api/internal/models"
	"github.com/pushmasterhq/pushmaster-api/pkg/config"
	appErrors "github.com/pushmasterhq/pushmaster-api/pkg/errors"
)

// Notifier is the fire-and-forget notification surface the engine
// uses. Delivery happens asynchronously after the transition commits.
type Notifier interface {
	SendMail(to []string, subject, body, replyTo string)
	SendIM(to, template string, params map[string]string)
}

// Instant-message templates. Parameters are substituted with
// HTML-escaped values since the transport speaks markup.
const (
	imAcceptedTemplate  = `{pushmaster} accepted your request "{subject}" into {push}. {url}`
	imCheckedInTemplate = `Changes for "{subject}" are checked into {push}. {url}`
	imOnStageTemplate   = `Please verify your changes on {stage}. {url}`
	imVerifiedTemplate  = `All changes for the push are verified on stage. {url}`
	imRejectedTemplate  = `{rejecter} rejected your request "{subject}". {reason} {url}`
)

// WorkflowService is the deploy workflow engine: every request and
// push transition goes through it. Each single-entity transition is a
// version-guarded update; multi-entity push transitions commit in one
// transaction. Cache busts run after commit, then notifications are
// enqueued in order.
type WorkflowService struct {
	requests RequestStore
	pushes   PushStore
	query    *QueryService
	notifier Notifier
	validate *validator.Validate
	cfg      *config.Config
	logger   *zap.Logger
}

// NewWorkflowService constructs the engine.
func NewWorkflowService(requests RequestStore, pushes PushStore, query *QueryService, notifier Notifier, cfg *config.Config, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{
		requests: requests,
		pushes:   pushes,
		query:    query,
		notifier: notifier,
		validate: validator.New(),
		cfg:      cfg,
		logger:   logger,
	}
}

// CreateRequest files a new deploy request owned by the actor.
func (s *WorkflowService) CreateRequest(ctx context.Context, actor models.Identity, payload dto.RequestPayload) (*models.Request, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	targetDate, err := parseTargetDate(payload.TargetDate)
	if err != nil {
		return nil, err
	}

	request := &models.Request{
		Owner:        actor.Email,
		Subject:      payload.Subject,
		Branch:       payload.Branch,
		Message:      payload.Message,
		State:        models.RequestStateRequested,
		TargetDate:   targetDate,
		PushPlans:    payload.PushPlans,
		JSSerials:    payload.JSSerials,
		ImgSerials:   payload.ImgSerials,
		Urgent:       payload.Urgent,
		TestsPass:    payload.TestsPass,
		TestsPassURL: payload.TestsPassURL,
		CreatedBy:    actor.Email,
		ModifiedBy:   actor.Email,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.query.BustRequestCaches(ctx)
	s.sendRequestMail(actor, request, requestMailBody(request))
	return request, nil
}

// EditRequest updates an editable request and resubmits it.
func (s *WorkflowService) EditRequest(ctx context.Context, actor models.Identity, id string, payload dto.RequestPayload) (*models.Request, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}
	targetDate, err := parseTargetDate(payload.TargetDate)
	if err != nil {
		return nil, err
	}

	request, err := s.fetchRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.Editable() {
		return nil, precondition("request in state %q cannot be edited", request.State)
	}

	request.Subject = payload.Subject
	request.Branch = payload.Branch
	request.Message = payload.Message
	request.TargetDate = targetDate
	request.PushPlans = payload.PushPlans
	request.JSSerials = payload.JSSerials
	request.ImgSerials = payload.ImgSerials
	request.Urgent = payload.Urgent
	request.TestsPass = payload.TestsPass
	request.TestsPassURL = payload.TestsPassURL
	request.State = models.RequestStateRequested
	request.RejectReason = ""
	request.ModifiedBy = actor.Email

	if err := s.updateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.query.BustRequestCaches(ctx)
	s.sendRequestMail(actor, request, requestMailBody(request))
	return request, nil
}

// AbandonRequest retires a request. An accepted request leaves its
// push on the way out.
func (s *WorkflowService) AbandonRequest(ctx context.Context, actor models.Identity, id string) (*models.Request, error) {
	request, err := s.fetchRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.StateIn(
		models.RequestStateRequested,
		models.RequestStateAccepted,
		models.RequestStateRejected,
	) {
		return nil, precondition("request in state %q cannot be abandoned", request.State)
	}

	pushID := request.PushID
	request.PushID = nil
	request.State = models.RequestStateAbandoned
	request.ModifiedBy = actor.Email
	if err := s.updateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.query.BustRequestCaches(ctx)
	if pushID != nil {
		s.query.BustPushRequestsCache(ctx, &models.Push{ID: *pushID})
	}
	return request, nil
}

// WithdrawRequest pulls a request back out of its push and returns it
// to the current queue.
func (s *WorkflowService) WithdrawRequest(ctx context.Context, actor models.Identity, id string) (*models.Request, error) {
	request, err := s.fetchRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !request.HasPush() || !request.StateIn(
		models.RequestStateAccepted,
		models.RequestStateCheckedIn,
		models.RequestStateOnStage,
		models.RequestStateTested,
	) {
		return nil, precondition("request in state %q cannot be withdrawn", request.State)
	}

	push, err := s.fetchPush(ctx, *request.PushID)
	if err != nil {
		return nil, err
	}
	if !push.StateIn(models.PushStateAccepting, models.PushStateOnStage) {
		return nil, precondition("push in state %q cannot release requests", push.State)
	}

	request.PushID = nil
	request.State = models.RequestStateRequested
	request.ModifiedBy = actor.Email
	if err := s.updateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.query.BustRequestCaches(ctx)
	s.query.BustPushRequestsCache(ctx, push)
	s.notifier.SendMail(
		s.requestRecipients(push.Owner),
		mailSubject(actor, request),
		"I withdrew my request.\n\n"+s.cfg.URL(request.Path()),
		s.cfg.Mail.RequestList,
	)
	return request, nil
}

// SetCheckedIn marks an accepted request's changes as checked in.
func (s *WorkflowService) SetCheckedIn(ctx context.Context, actor models.Identity, id string) (*models.Request, error) {
	request, err := s.fetchRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != models.RequestStateAccepted || !request.HasPush() {
		return nil, precondition("request in state %q cannot be checked in", request.State)
	}

	push, err := s.fetchPush(ctx, *request.PushID)
	if err != nil {
		return nil, err
	}

	request.State = models.RequestStateCheckedIn
	request.ModifiedBy = actor.Email
	if err := s.updateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.query.BustPushRequestsCache(ctx, push)
	s.notifier.SendMail(
		[]string{push.Owner, s.cfg.Mail.To},
		mailSubject(actor, request),
		"Changes are checked in.\n\n"+s.cfg.URL(push.Path()),
		s.cfg.Mail.RequestList,
	)
	s.notifier.SendIM(request.Owner, imCheckedInTemplate, map[string]string{
		"subject": request.Subject,
		"push":    push.DisplayName(),
		"url":     s.cfg.URL(push.Path()),
	})
	return request, nil
}

// SetTested marks a staged request as verified. When the whole push is
// verified the push owner gets an aggregate notification.
func (s *WorkflowService) SetTested(ctx context.Context, actor models.Identity, id string) (*models.Request, error) {
	request, err := s.fetchRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.State != models.RequestStateOnStage || !request.HasPush() {
		return nil, precondition("request in state %q cannot be marked tested", request.State)
	}

	push, err := s.fetchPush(ctx, *request.PushID)
	if err != nil {
		return nil, err
	}

	request.State = models.RequestStateTested
	request.ModifiedBy = actor.Email
	if err := s.updateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.query.BustPushRequestsCache(ctx, push)
	s.notifier.SendMail(
		[]string{push.Owner, s.cfg.Mail.To},
		mailSubject(actor, request),
		"Looks good to me.\n\n"+s.cfg.URL(push.Path()),
		s.cfg.Mail.RequestList,
	)

	members, err := s.requests.ByPush(ctx, push.ID)
	if err != nil {
		s.logger.Warn("aggregate verification check failed", zap.String("push_id", push.ID), zap.Error(err))
		return request, nil
	}
	allTested := true
	for i := range members {
		if members[i].State != models.RequestStateTested {
			allTested = false
			break
		}
	}
	if allTested && len(members) > 0 {
		s.notifier.SendIM(push.Owner, imVerifiedTemplate, map[string]string{
			"url": s.cfg.URL(push.Path()),
		})
	}
	return request, nil
}

// RejectRequest bounces a request back to its owner with a reason. A
// rejected request leaves its push, if it had one.
func (s *WorkflowService) RejectRequest(ctx context.Context, actor models.Identity, id, reason string) (*models.Request, error) {
	request, err := s.fetchRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.StateIn(models.RequestStateLive, models.RequestStateAbandoned) {
		return nil, precondition("request in state %q cannot be rejected", request.State)
	}

	var push *models.Push
	if request.HasPush() {
		if push, err = s.fetchPush(ctx, *request.PushID); err != nil {
			return nil, err
		}
	}

	request.PushID = nil
	request.State = models.RequestStateRejected
	request.RejectReason = reason
	request.ModifiedBy = actor.Email
	if err := s.updateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.query.BustRequestCaches(ctx)
	if push != nil {
		s.query.BustPushRequestsCache(ctx, push)
	}

	body := reason
	if body == "" {
		body = "Your request was rejected."
	}
	s.notifier.SendMail(
		[]string{request.Owner},
		mailSubject(actor, request),
		body+"\n\n"+s.cfg.URL(request.Path()),
		s.cfg.Mail.RequestList,
	)
	s.notifier.SendIM(request.Owner, imRejectedTemplate, map[string]string{
		"rejecter": actor.Nickname(),
		"subject":  request.Subject,
		"reason":   reason,
		"url":      s.cfg.URL(request.Path()),
	})
	return request, nil
}

// CreatePush opens a new push owned by the actor on the default stage.
func (s *WorkflowService) CreatePush(ctx context.Context, actor models.Identity, payload dto.CreatePushPayload) (*models.Push, error) {
	push := &models.Push{
		Owner:      actor.Email,
		Name:       payload.Name,
		State:      models.PushStateAccepting,
		Stage:      s.defaultStage(),
		CreatedBy:  actor.Email,
		ModifiedBy: actor.Email,
	}
	if err := s.pushes.Create(ctx, push); err != nil {
		return nil, appErrors.FromError(err)
	}

	s.query.BustPushCaches(ctx)
	return push, nil
}

// AcceptRequest pulls a pending request into a push.
func (s *WorkflowService) AcceptRequest(ctx context.Context, actor models.Identity, pushID string, payload dto.AcceptRequestPayload) (*models.Request, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid accept payload")
	}

	push, err := s.fetchPush(ctx, pushID)
	if err != nil {
		return nil, err
	}
	if !push.Editable() {
		return nil, precondition("push in state %q cannot accept requests", push.State)
	}

	request, err := s.fetchRequest(ctx, payload.RequestID)
	if err != nil {
		return nil, err
	}
	if request.State != models.RequestStateRequested {
		return nil, precondition("request in state %q cannot be accepted", request.State)
	}

	request.PushID = &push.ID
	request.State = models.RequestStateAccepted
	request.ModifiedBy = actor.Email
	if err := s.updateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.query.BustRequestCaches(ctx)
	s.query.BustPushRequestsCache(ctx, push)
	s.notifier.SendIM(request.Owner, imAcceptedTemplate, map[string]string{
		"pushmaster": actor.Nickname(),
		"subject":    request.Subject,
		"push":       push.DisplayName(),
		"url":        s.cfg.URL(push.Path()),
	})
	return request, nil
}

// SendToStage deploys every checked-in request to the given stage. With
// nothing checked in the call is a no-op, so retries are harmless.
func (s *WorkflowService) SendToStage(ctx context.Context, actor models.Identity, pushID string, payload dto.SendToStagePayload) (*models.Push, error) {
	if err := s.validate.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid stage payload")
	}
	if !s.validStage(payload.Stage) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown stage %q", payload.Stage))
	}

	push, err := s.fetchPush(ctx, pushID)
	if err != nil {
		return nil, err
	}
	if !push.StateIn(models.PushStateAccepting, models.PushStateOnStage) {
		return nil, precondition("push in state %q cannot be sent to stage", push.State)
	}

	members, err := s.requests.ByPush(ctx, push.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	var staged []*models.Request
	for i := range members {
		if members[i].State == models.RequestStateCheckedIn {
			staged = append(staged, &members[i])
		}
	}
	if len(staged) == 0 {
		return push, nil
	}

	for _, request := range staged {
		request.State = models.RequestStateOnStage
		request.ModifiedBy = actor.Email
	}

	// The push row is only re-persisted (and the push views only
	// busted) when its state or stage actually changes; re-invoking
	// with the same stage just moves the newly checked-in requests.
	if push.State != models.PushStateOnStage || push.Stage != payload.Stage {
		push.State = models.PushStateOnStage
		push.Stage = payload.Stage
		push.ModifiedBy = actor.Email
		if err := s.updatePushWithRequests(ctx, push, staged); err != nil {
			return nil, err
		}
		s.query.BustPushCaches(ctx)
	} else {
		for _, request := range staged {
			if err := s.updateRequest(ctx, request); err != nil {
				return nil, err
			}
		}
	}

	s.query.BustPushRequestsCache(ctx, push)
	for _, request := range staged {
		s.notifier.SendMail(
			[]string{request.Owner, s.cfg.Mail.To},
			mailSubject(actor, request),
			fmt.Sprintf("Please verify your changes on %s.\n\n%s", push.Stage, s.cfg.URL(push.Path())),
			s.cfg.Mail.RequestList,
		)
		s.notifier.SendIM(request.Owner, imOnStageTemplate, map[string]string{
			"stage": push.Stage,
			"url":   s.cfg.URL(push.Path()),
		})
	}
	return push, nil
}

// SendToLive marks a fully verified push as live.
func (s *WorkflowService) SendToLive(ctx context.Context, actor models.Identity, pushID string) (*models.Push, error) {
	push, err := s.fetchPush(ctx, pushID)
	if err != nil {
		return nil, err
	}
	if push.State != models.PushStateOnStage {
		return nil, precondition("push in state %q cannot go live", push.State)
	}

	members, err := s.requests.ByPush(ctx, push.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	for i := range members {
		if members[i].State != models.RequestStateTested {
			return nil, precondition("request %q is not verified yet", members[i].Subject)
		}
	}

	return s.markLive(ctx, actor, push, members, time.Now().UTC())
}

// ForceLive marks a push live without waiting for verification. The
// live timestamp records when the push last changed, not when the
// bookkeeping caught up.
func (s *WorkflowService) ForceLive(ctx context.Context, actor models.Identity, pushID string) (*models.Push, error) {
	push, err := s.fetchPush(ctx, pushID)
	if err != nil {
		return nil, err
	}
	if !push.StateIn(models.PushStateAccepting, models.PushStateOnStage) {
		return nil, precondition("push in state %q cannot be forced live", push.State)
	}

	members, err := s.requests.ByPush(ctx, push.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return s.markLive(ctx, actor, push, members, push.ModifiedAt)
}

// Unlive rolls a live push back to stage, e.g. after a bad deploy.
func (s *WorkflowService) Unlive(ctx context.Context, actor models.Identity, pushID string) (*models.Push, error) {
	push, err := s.fetchPush(ctx, pushID)
	if err != nil {
		return nil, err
	}
	if push.State != models.PushStateLive {
		return nil, precondition("push in state %q cannot be rolled back", push.State)
	}

	members, err := s.requests.ByPush(ctx, push.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	updated := make([]*models.Request, 0, len(members))
	for i := range members {
		if members[i].State != models.RequestStateLive {
			continue
		}
		members[i].State = models.RequestStateTested
		members[i].ModifiedBy = actor.Email
		updated = append(updated, &members[i])
	}

	push.State = models.PushStateOnStage
	push.LTime = nil
	push.ModifiedBy = actor.Email
	if err := s.updatePushWithRequests(ctx, push, updated); err != nil {
		return nil, err
	}

	s.query.BustPushCaches(ctx)
	s.query.BustPushRequestsCache(ctx, push)
	return push, nil
}

// AbandonPush closes a push and returns every member request to the
// current queue.
func (s *WorkflowService) AbandonPush(ctx context.Context, actor models.Identity, pushID string) (*models.Push, error) {
	push, err := s.fetchPush(ctx, pushID)
	if err != nil {
		return nil, err
	}
	if !push.Editable() {
		return nil, precondition("push in state %q cannot be abandoned", push.State)
	}

	members, err := s.requests.ByPush(ctx, push.ID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	updated := make([]*models.Request, 0, len(members))
	for i := range members {
		members[i].PushID = nil
		members[i].State = models.RequestStateRequested
		members[i].ModifiedBy = actor.Email
		updated = append(updated, &members[i])
	}

	push.State = models.PushStateAbandoned
	push.ModifiedBy = actor.Email
	if err := s.updatePushWithRequests(ctx, push, updated); err != nil {
		return nil, err
	}

	s.query.BustRequestCaches(ctx)
	s.query.BustPushCaches(ctx)
	s.query.BustPushRequestsCache(ctx, push)
	return push, nil
}

// TakeOwnership reassigns a request or push to the actor.
func (s *WorkflowService) TakeOwnership(ctx context.Context, actor models.Identity, kind models.EntityKind, id string) error {
	switch kind {
	case models.EntityKindRequest:
		request, err := s.fetchRequest(ctx, id)
		if err != nil {
			return err
		}
		if !request.CanChangeOwner() {
			return precondition("request in state %q cannot change owner", request.State)
		}
		request.Owner = actor.Email
		request.ModifiedBy = actor.Email
		if err := s.updateRequest(ctx, request); err != nil {
			return err
		}
		s.query.BustRequestCaches(ctx)
		if request.HasPush() {
			s.query.BustPushRequestsCache(ctx, &models.Push{ID: *request.PushID})
		}
		return nil
	case models.EntityKindPush:
		push, err := s.fetchPush(ctx, id)
		if err != nil {
			return err
		}
		if !push.CanChangeOwner() {
			return precondition("push in state %q cannot change owner", push.State)
		}
		push.Owner = actor.Email
		push.ModifiedBy = actor.Email
		if err := s.updatePush(ctx, push); err != nil {
			return err
		}
		s.query.BustPushCaches(ctx)
		return nil
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown entity kind %q", kind))
	}
}

// GetRequest fetches a request for display.
func (s *WorkflowService) GetRequest(ctx context.Context, id string) (*models.Request, error) {
	return s.fetchRequest(ctx, id)
}

// GetPush fetches a push for display.
func (s *WorkflowService) GetPush(ctx context.Context, id string) (*models.Push, error) {
	return s.fetchPush(ctx, id)
}

func (s *WorkflowService) markLive(ctx context.Context, actor models.Identity, push *models.Push, members []models.Request, ltime time.Time) (*models.Push, error) {
	updated := make([]*models.Request, 0, len(members))
	for i := range members {
		if members[i].State == models.RequestStateLive {
			continue
		}
		members[i].State = models.RequestStateLive
		members[i].ModifiedBy = actor.Email
		updated = append(updated, &members[i])
	}

	push.State = models.PushStateLive
	push.LTime = &ltime
	push.ModifiedBy = actor.Email
	if err := s.updatePushWithRequests(ctx, push, updated); err != nil {
		return nil, err
	}

	s.query.BustPushCaches(ctx)
	s.query.BustPushRequestsCache(ctx, push)
	return push, nil
}

func (s *WorkflowService) fetchRequest(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.FromError(err)
	}
	return request, nil
}

func (s *WorkflowService) fetchPush(ctx context.Context, id string) (*models.Push, error) {
	push, err := s.pushes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "push not found")
		}
		return nil, appErrors.FromError(err)
	}
	return push, nil
}

func (s *WorkflowService) updateRequest(ctx context.Context, request *models.Request) error {
	if err := s.requests.Update(ctx, request); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "request changed concurrently, retry")
		}
		return appErrors.FromError(err)
	}
	return nil
}

func (s *WorkflowService) updatePush(ctx context.Context, push *models.Push) error {
	if err := s.pushes.Update(ctx, push); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "push changed concurrently, retry")
		}
		return appErrors.FromError(err)
	}
	return nil
}

func (s *WorkflowService) updatePushWithRequests(ctx context.Context, push *models.Push, requests []*models.Request) error {
	if err := s.pushes.UpdateWithRequests(ctx, push, requests); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "push changed concurrently, retry")
		}
		return appErrors.FromError(err)
	}
	return nil
}

// sendRequestMail announces a new or edited request to its owner and
// the engineering lists.
func (s *WorkflowService) sendRequestMail(actor models.Identity, request *models.Request, body string) {
	s.notifier.SendMail(
		s.requestRecipients(request.Owner),
		mailSubject(actor, request),
		body+"\n\n"+s.cfg.URL(request.Path()),
		s.cfg.Mail.RequestList,
	)
}

func (s *WorkflowService) requestRecipients(first string) []string {
	return []string{first, s.cfg.Mail.To, s.cfg.Mail.RequestList}
}

func (s *WorkflowService) defaultStage() string {
	if len(s.cfg.Pushes.Stages) > 0 {
		return s.cfg.Pushes.Stages[0]
	}
	return ""
}

func (s *WorkflowService) validStage(stage string) bool {
	for _, known := range s.cfg.Pushes.Stages {
		if known == stage {
			return true
		}
	}
	return false
}

func mailSubject(actor models.Identity, request *models.Request) string {
	return fmt.Sprintf("%s: %s", actor.Nickname(), request.Subject)
}

func requestMailBody(request *models.Request) string {
	if request.Message != "" {
		return request.Message
	}
	return request.Subject
}

func parseTargetDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "target_date must be YYYY-MM-DD")
	}
	return date, nil
}

func precondition(format string, args ...interface{}) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf(format, args...))
}
