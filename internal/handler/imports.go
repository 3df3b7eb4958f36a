package handler

import (
	"net/http"

	"cashdesk/internal/dto"
	"cashdesk/internal/middleware"
	"cashdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type ImportHandler struct{ svc service.ImportService }

func NewImportHandler(svc service.ImportService) *ImportHandler { return &ImportHandler{svc: svc} }

// Import godoc
// @Summary Bulk-imports historical days through the regular lifecycle (admin only)
// @Tags import
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.ImportRequest true "Historical days"
// @Success 200 {object} dto.ImportResult
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ImportHistory(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
