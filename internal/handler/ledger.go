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
	"github.com/google/uuid"
)

type LedgerHandler struct {
	svc service.LedgerService
	loc *time.Location
}

func NewLedgerHandler(svc service.LedgerService, loc *time.Location) *LedgerHandler {
	return &LedgerHandler{svc: svc, loc: loc}
}

// Append godoc
// @Summary Records a sale, expense or deposit in the day's ledger
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AppendEntryRequest true "Entry data"
// @Success 201 {object} dto.EntryResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/entries [post]
func (h *LedgerHandler) Append(c *gin.Context) {
	var req dto.AppendEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Append(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.LedgerEntriesTotal.WithLabelValues(resp.Type).Inc()
	c.JSON(http.StatusCreated, resp)
}

// List returns the ledger for one day. Newest first by default; pass
// order=asc for chronological output.
func (h *LedgerHandler) List(c *gin.Context) {
	date := c.DefaultQuery("date", reconcile.DayOf(time.Now(), h.loc))
	asc := c.Query("order") == "asc"
	entries, err := h.svc.ListForDay(c.Request.Context(), date, asc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "date": date})
}

// Update godoc
// @Summary Rewrites a ledger entry (supervisor or admin)
// @Tags ledger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param body body dto.UpdateEntryRequest true "New entry data"
// @Success 200 {object} dto.EntryResponse
// @Failure 403 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/entries/{id} [put]
func (h *LedgerHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid entry ID"))
		return
	}
	var req dto.UpdateEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Remove deletes a ledger entry (supervisor or admin, day still open).
func (h *LedgerHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid entry ID"))
		return
	}
	if err := h.svc.Remove(c.Request.Context(), middleware.Actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
