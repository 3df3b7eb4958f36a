package handler

import (
	"net/http"
	"time"

	"cashdesk/internal/apierror"
	"cashdesk/internal/dto"
	"cashdesk/internal/middleware"
	"cashdesk/internal/reconcile"
	"cashdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type CashHandler struct {
	svc service.SessionService
	loc *time.Location
}

func NewCashHandler(svc service.SessionService, loc *time.Location) *CashHandler {
	return &CashHandler{svc: svc, loc: loc}
}

// Proposal godoc
// @Summary Carry-forward opening balance proposal for a day
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.OpeningProposal
// @Failure 422 {object} apierror.APIError
// @Router /v1/cash/proposal [get]
func (h *CashHandler) Proposal(c *gin.Context) {
	date := c.DefaultQuery("date", reconcile.DayOf(time.Now(), h.loc))
	if _, err := time.Parse(reconcile.DateLayout, date); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("Invalid date"))
		return
	}
	resp, err := h.svc.Proposal(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Open godoc
// @Summary Opens the cash session for a day
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Opening data"
// @Success 201 {object} dto.SessionReport
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cash/open [post]
func (h *CashHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Reconciles the counted drawer against the ledger and closes the day
// @Tags cash
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseSessionRequest true "Denomination count"
// @Success 200 {object} dto.ClosureResult
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cash/close [post]
func (h *CashHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reopen godoc
// @Summary Reverts a closed session to open (admin only)
// @Tags cash
// @Produce json
// @Security BearerAuth
// @Param date path string true "Day (YYYY-MM-DD)"
// @Success 200 {object} dto.SessionReport
// @Failure 403 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/cash/{date}/reopen [post]
func (h *CashHandler) Reopen(c *gin.Context) {
	resp, err := h.svc.Reopen(c.Request.Context(), middleware.Actor(c), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report returns the session report for a day with live totals.
func (h *CashHandler) Report(c *gin.Context) {
	resp, err := h.svc.Report(c.Request.Context(), c.Param("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of sessions, newest first.
func (h *CashHandler) History(c *gin.Context) {
	page, limit := pagination(c)
	sessions, total, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions, "total": total, "page": page, "limit": limit})
}
