package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pushmasterhq/pushmaster-api/internal/dto"
	"github.com/pushmasterhq/pushmaster-api/internal/models"
	appErrors "github.com/pushmasterhq/pushmaster-api/pkg/errors"
	"github.com/pushmasterhq/pushmaster-api/pkg/response"
)

type requestWorkflow interface {
	CreateRequest(ctx context.Context, actor models.Identity, payload dto.RequestPayload) (*models.Request, error)
	EditRequest(ctx context.Context, actor models.Identity, id string, payload dto.RequestPayload) (*models.Request, error)
	AbandonRequest(ctx context.Context, actor models.Identity, id string) (*models.Request, error)
	WithdrawRequest(ctx context.Context, actor models.Identity, id string) (*models.Request, error)
	SetCheckedIn(ctx context.Context, actor models.Identity, id string) (*models.Request, error)
	SetTested(ctx context.Context, actor models.Identity, id string) (*models.Request, error)
	RejectRequest(ctx context.Context, actor models.Identity, id, reason string) (*models.Request, error)
	TakeOwnership(ctx context.Context, actor models.Identity, kind models.EntityKind, id string) error
	GetRequest(ctx context.Context, id string) (*models.Request, error)
}

type requestQueries interface {
	CurrentRequests(ctx context.Context) ([]models.Request, error)
}

// RequestHandler exposes the deploy-request endpoints.
type RequestHandler struct {
	workflow requestWorkflow
	queries  requestQueries
}

// NewRequestHandler builds a new handler.
func NewRequestHandler(workflow requestWorkflow, queries requestQueries) *RequestHandler {
	return &RequestHandler{workflow: workflow, queries: queries}
}

// List godoc
// @Summary List requests awaiting a push
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	requests, err := h.queries.CurrentRequests(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// Create godoc
// @Summary File a deploy request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.RequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.RequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	request, err := h.workflow.CreateRequest(c.Request.Context(), identity, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Get godoc
// @Summary Get a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	request, err := h.workflow.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// Update godoc
// @Summary Edit and resubmit a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.RequestPayload true "Request payload"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [put]
func (h *RequestHandler) Update(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.RequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	request, err := h.workflow.EditRequest(c.Request.Context(), identity, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// Abandon godoc
// @Summary Abandon a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/abandon [post]
func (h *RequestHandler) Abandon(c *gin.Context) {
	h.transition(c, h.workflow.AbandonRequest)
}

// Withdraw godoc
// @Summary Withdraw a request from its push
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/withdraw [post]
func (h *RequestHandler) Withdraw(c *gin.Context) {
	h.transition(c, h.workflow.WithdrawRequest)
}

// CheckIn godoc
// @Summary Mark a request's changes as checked in
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/checkin [post]
func (h *RequestHandler) CheckIn(c *gin.Context) {
	h.transition(c, h.workflow.SetCheckedIn)
}

// Tested godoc
// @Summary Mark a staged request as verified
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/tested [post]
func (h *RequestHandler) Tested(c *gin.Context) {
	h.transition(c, h.workflow.SetTested)
}

// Reject godoc
// @Summary Reject a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.RejectRequestPayload false "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var payload dto.RejectRequestPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reject payload"))
			return
		}
	}
	request, err := h.workflow.RejectRequest(c.Request.Context(), identity, c.Param("id"), payload.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

// TakeOwnership godoc
// @Summary Take ownership of a request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/take-ownership [post]
func (h *RequestHandler) TakeOwnership(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.workflow.TakeOwnership(c.Request.Context(), identity, models.EntityKindRequest, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	request, err := h.workflow.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}

func (h *RequestHandler) transition(c *gin.Context, op func(context.Context, models.Identity, string) (*models.Request, error)) {
	identity, ok := identityFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := op(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request)
}
