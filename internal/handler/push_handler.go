package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pushmasterhq/pushmaster-api/internal/dto"
	"github.com/pushmasterhq/pushmaster-api/internal/models"
	appErrors "github.com/pushmasterhq/pushmaster-api/pkg/errors"
	"github.com/pushmasterhq/pushmaster-api/pkg/response"
)

type pushWorkflow interface {
	CreatePush(ctx context.Context, actor models.Identity, payload dto.CreatePushPayload) (*models.Push, error)
	AcceptRequest(ctx context.Context, actor models.Identity, pushID string, payload dto.AcceptRequestPayload) (*models.Request, error)
	SendToStage(ctx context.Context, actor models.Identity, pushID string, payload dto.SendToStagePayload) (*models.Push, error)
	SendToLive(ctx context.Context, actor models.Identity, pushID string) (*models.Push, error)
	ForceLive(ctx context.Context, actor models.Identity, pushID string) (*models.Push, error)
	Unlive(ctx context.Context, actor models.Identity, pushID string) (*models.Push, error)
	AbandonPush(ctx context.Context, actor models.Identity, pushID string) (*models.Push, error)
	TakeOwnership(ctx context.Context, actor models.Identity, kind models.EntityKind, id string) error
	GetPush(ctx context.Context, id string) (*models.Push, error)
}

type pushQueries interface {
	OpenPushes(ctx context.Context) ([]models.Push, error)
	CurrentPush(ctx context.Context) (*models.Push, error)
	PushRequests(ctx context.Context, push *models.Push, states ...models.RequestState) ([]models.Request, error)
	PendingRequests(ctx context.Context, notAfter *time.Time) ([]models.Request, error)
}

// PushHandler exposes the push endpoints.
type PushHandler struct {
	workflow pushWorkflow
	queries  pushQueries
}

// NewPushHandler builds a new handler.
func NewPushHandler(workflow pushWorkflow, queries pushQueries) *PushHandler {
	return &PushHandler{workflow: workflow, queries: queries}
}

// List godoc
// @Summary List open pushes
// @Tags Pushes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pushes [get]
func (h *PushHandler) List(c *gin.Context) {
	pushes, err := h.queries.OpenPushes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pushes)
}

// Create godoc
// @Summary Open a new push
// @Tags Pushes
// @Accept json
// @Produce json
// @Param payload body dto.CreatePushPayload false "Push payload"
// @Success 201 {object} response.Envelope
// @Router /pushes [post]
func (h *PushHandler) Create(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.CreatePushPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid push payload"))
			return
		}
	}
	push, err := h.workflow.CreatePush(c.Request.Context(), identity, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, push)
}

// Current godoc
// @Summary Get the current push
// @Tags Pushes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /pushes/current [get]
func (h *PushHandler) Current(c *gin.Context) {
	push, err := h.queries.CurrentPush(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if push == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no current push"))
		return
	}
	response.JSON(c, http.StatusOK, push)
}

// Get godoc
// @Summary Get a push with its requests
// @Tags Pushes
// @Produce json
// @Param id path string true "Push ID"
// @Success 200 {object} response.Envelope
// @Router /pushes/{id} [get]
func (h *PushHandler) Get(c *gin.Context) {
	push, err := h.workflow.GetPush(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	requests, err := h.queries.PushRequests(c.Request.Context(), push)
	if err != nil {
		response.Error(c, err)
		return
	}

	detail := dto.PushDetail{Push: push, Requests: requests}
	if push.Editable() {
		pending, err := h.queries.PendingRequests(c.Request.Context(), nil)
		if err != nil {
			response.Error(c, err)
			return
		}
		detail.PendingRequests = pending
	}
	response.JSON(c, http.StatusOK, detail)
}

// Accept godoc
// @Summary Accept a request into a push
// @Tags Pushes
// @Accept json
// @Produce json
// @Param id path string true "Push ID"
// @Param payload body dto.AcceptRequestPayload true "Accept payload"
// @Success 200 {object} response.Envelope
// @Router /pushes/{id}/accept [post]
func (h *PushHandler) Accept(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.AcceptRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid accept payload"))
		return
	}
	request, err := h.workflow.AcceptRequest(c.Request.Context(), identity, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// Stage godoc
// @Summary Send checked-in requests to a stage
// @Tags Pushes
// @Accept json
// @Produce json
// @Param id path string true "Push ID"
// @Param payload body dto.SendToStagePayload true "Stage payload"
// @Success 200 {object} response.Envelope
// @Router /pushes/{id}/stage [post]
func (h *PushHandler) Stage(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.SendToStagePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid stage payload"))
		return
	}
	push, err := h.workflow.SendToStage(c.Request.Context(), identity, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, push)
}

// Live godoc
// @Summary Mark a verified push as live
// @Tags Pushes
// @Produce json
// @Param id path string true "Push ID"
// @Success 200 {object} response.Envelope
// @Router /pushes/{id}/live [post]
func (h *PushHandler) Live(c *gin.Context) {
	h.transition(c, h.workflow.SendToLive)
}

// ForceLive godoc
// @Summary Mark a push live without verification
// @Tags Pushes
// @Produce json
// @Param id path string true "Push ID"
// @Success 200 {object} response.Envelope
// @Router /pushes/{id}/force-live [post]
func (h *PushHandler) ForceLive(c *gin.Context) {
	h.transition(c, h.workflow.ForceLive)
}

// Unlive godoc
// @Summary Roll a live push back to stage
// @Tags Pushes
// @Produce json
// @Param id path string true "Push ID"
// @Success 200 {object} response.Envelope
// @Router /pushes/{id}/unlive [post]
func (h *PushHandler) Unlive(c *gin.Context) {
	h.transition(c, h.workflow.Unlive)
}

// Abandon godoc
// @Summary Abandon a push
// @Tags Pushes
// @Produce json
// @Param id path string true "Push ID"
// @Success 200 {object} response.Envelope
// @Router /pushes/{id}/abandon [post]
func (h *PushHandler) Abandon(c *gin.Context) {
	h.transition(c, h.workflow.AbandonPush)
}

// TakeOwnership godoc
// @Summary Take ownership of a push
// @Tags Pushes
// @Produce json
// @Param id path string true "Push ID"
// @Success 200 {object} response.Envelope
// @Router /pushes/{id}/take-ownership [post]
func (h *PushHandler) TakeOwnership(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.workflow.TakeOwnership(c.Request.Context(), identity, models.EntityKindPush, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	push, err := h.workflow.GetPush(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, push)
}

func (h *PushHandler) transition(c *gin.Context, op func(context.Context, models.Identity, string) (*models.Push, error)) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	push, err := op(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, push)
}
