package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pushmasterhq/pushmaster-api/internal/models"
	"github.com/pushmasterhq/pushmaster-api/pkg/response"
)

type userQueries interface {
	RequestsForUser(ctx context.Context, email string) ([]models.Request, error)
	PushesForUser(ctx context.Context, email string) ([]models.Push, error)
}

type userInfoResolver interface {
	InfoForUser(ctx context.Context, email, fallbackName string) (*models.UserInfo, error)
}

// UserHandler exposes per-user workflow views.
type UserHandler struct {
	queries userQueries
	info    userInfoResolver
}

// NewUserHandler builds a new handler.
func NewUserHandler(queries userQueries, info userInfoResolver) *UserHandler {
	return &UserHandler{queries: queries, info: info}
}

// Get godoc
// @Summary Get a user's display info
// @Tags Users
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} response.Envelope
// @Router /users/{email} [get]
func (h *UserHandler) Get(c *gin.Context) {
	info, err := h.info.InfoForUser(c.Request.Context(), c.Param("email"), "")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

// Requests godoc
// @Summary List a user's recent requests
// @Tags Users
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} response.Envelope
// @Router /users/{email}/requests [get]
func (h *UserHandler) Requests(c *gin.Context) {
	requests, err := h.queries.RequestsForUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests)
}

// Pushes godoc
// @Summary List a user's recent pushes
// @Tags Users
// @Produce json
// @Param email path string true "User email"
// @Success 200 {object} response.Envelope
// @Router /users/{email}/pushes [get]
func (h *UserHandler) Pushes(c *gin.Context) {
	pushes, err := h.queries.PushesForUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pushes)
}
