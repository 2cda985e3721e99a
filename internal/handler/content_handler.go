package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type contentPublisher interface {
	Publish(ctx context.Context, claims *models.JWTClaims, req service.PublishContentRequest) (*models.ContentRecord, error)
}

// ContentHandler publishes class content.
type ContentHandler struct {
	content contentPublisher
}

// NewContentHandler constructs the handler.
func NewContentHandler(content contentPublisher) *ContentHandler {
	return &ContentHandler{content: content}
}

// Publish godoc
// @Summary Publish an announcement, assignment or quiz
// @Tags Content
// @Accept json
// @Produce json
// @Param payload body service.PublishContentRequest true "Content"
// @Success 201 {object} response.Envelope
// @Router /content [post]
func (h *ContentHandler) Publish(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.PublishContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	content, err := h.content.Publish(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, content)
}
