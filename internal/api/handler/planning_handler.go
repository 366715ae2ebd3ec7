package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/model"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/service"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/response"
)

// PlanningHandler weekly planning and item endpoints.
type PlanningHandler struct {
	planningSvc service.PlanningService
	slotSvc     service.SlotService
}

// NewPlanningHandler creates a PlanningHandler.
func NewPlanningHandler(planningSvc service.PlanningService, slotSvc service.SlotService) *PlanningHandler {
	return &PlanningHandler{planningSvc: planningSvc, slotSvc: slotSvc}
}

// ────────────────────── plannings ──────────────────────

// List lists the caller's weekly plannings.
// GET /api/v1/plannings
func (h *PlanningHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.PlanningListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	list, total, err := h.planningSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Get fetches one planning with its items.
// GET /api/v1/plannings/:id
func (h *PlanningHandler) Get(c *gin.Context) {
	result, err := h.planningSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// StartExecution em_planejamento → em_execucao.
// POST /api/v1/plannings/:id/start
func (h *PlanningHandler) StartExecution(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planningSvc.StartExecution(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// Complete em_execucao → concluida.
// POST /api/v1/plannings/:id/complete
func (h *PlanningHandler) Complete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planningSvc.Complete(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// Evaluate concluida → avaliada with retrospective notes.
// POST /api/v1/plannings/:id/evaluate
func (h *PlanningHandler) Evaluate(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.EvaluatePlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.planningSvc.Evaluate(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// Reopen any state → em_planejamento.
// POST /api/v1/plannings/:id/reopen
func (h *PlanningHandler) Reopen(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planningSvc.Reopen(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// Cancel non-terminal state → cancelada.
// POST /api/v1/plannings/:id/cancel
func (h *PlanningHandler) Cancel(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CancelPlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.planningSvc.Cancel(c.Request.Context(), c.Param("id"), req.Reason, callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete soft-deletes a planning; active items block unless resolution is
// given.
// DELETE /api/v1/plannings/:id
func (h *PlanningHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DeletePlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	if err := h.planningSvc.Delete(c.Request.Context(), c.Param("id"), &req, callerID); err != nil {
		var activeErr *service.ActiveItemsError
		if errors.As(err, &activeErr) {
			response.ErrorWithDetails(c, http.StatusConflict, 14005,
				"planning has active items; cancel them or pass resolution=concluir",
				toItemBriefs(activeErr.Items))
			return
		}
		h.handlePlanningError(c, err)
		return
	}

	response.OK(c, nil)
}

// ────────────────────── items ──────────────────────

// CreateItem schedules a visit; the weekly planning is resolved or created
// from the planned date.
// POST /api/v1/plannings/items
func (h *PlanningHandler) CreateItem(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.planningSvc.CreateItem(c.Request.Context(), userID, &req, userID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}

	response.Created(c, result)
}

// RescheduleItem moves a visit to another slot.
// POST /api/v1/plannings/items/:id/reschedule
func (h *PlanningHandler) RescheduleItem(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RescheduleItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.planningSvc.RescheduleItem(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// CancelItem cancels a visit with a mandatory reason.
// POST /api/v1/plannings/items/:id/cancel
func (h *PlanningHandler) CancelItem(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CancelItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	if err := h.planningSvc.CancelItem(c.Request.Context(), c.Param("id"), req.Reason, callerID); err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, nil)
}

// CheckInItem marks the visit started.
// POST /api/v1/plannings/items/:id/check-in
func (h *PlanningHandler) CheckInItem(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.planningSvc.CheckInItem(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// CheckOutItem closes the visit with optional actual figures.
// POST /api/v1/plannings/items/:id/check-out
func (h *PlanningHandler) CheckOutItem(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CheckOutItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.planningSvc.CheckOutItem(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handlePlanningError(c, err)
		return
	}
	response.OK(c, result)
}

// AvailableSlots lists free slots for the caller on one date.
// GET /api/v1/plannings/slots?date=2006-01-02
func (h *PlanningHandler) AvailableSlots(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AvailableSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, 10001, "invalid date")
		return
	}

	slots, err := h.slotSvc.AvailableSlots(c.Request.Context(), userID, date)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, slots)
}

// ────────────────────── error mapping ──────────────────────

func (h *PlanningHandler) handlePlanningError(c *gin.Context, err error) {
	var slotErr *service.SlotConflictError
	if errors.As(err, &slotErr) {
		response.ErrorWithDetails(c, http.StatusConflict, 14001, "time slot already taken",
			toItemBrief(slotErr.Existing))
		return
	}

	switch {
	case errors.Is(err, service.ErrPlanningNotFound):
		response.NotFound(c, 14002, "planning not found")
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(c, 14003, "planning item not found")
	case errors.Is(err, service.ErrContactNotFound):
		response.NotFound(c, 13001, "contact not found")
	case errors.Is(err, service.ErrRetroactiveDate):
		response.BadRequest(c, 14004, "visits cannot be scheduled on past dates")
	case errors.Is(err, service.ErrDateOutsideWeek):
		response.BadRequest(c, 14006, "date falls outside the planning week")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "invalid date or time")
	case errors.Is(err, service.ErrEmptyPlanning):
		response.BadRequest(c, 14007, "planning has no items to execute")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 14008, "status transition not allowed")
	case errors.Is(err, service.ErrEvaluationRequired):
		response.BadRequest(c, 14009, "evaluation notes are required")
	case errors.Is(err, service.ErrJustificationTooShort):
		response.BadRequest(c, 14010, "justification must have at least 10 characters")
	case errors.Is(err, service.ErrItemNotActive):
		response.Conflict(c, 14011, "item is not in an active status")
	case errors.Is(err, service.ErrContinuityViolation):
		response.Conflict(c, 14012, "week boundaries disagree with the existing planning")
	default:
		response.InternalError(c)
	}
}

func toItemBrief(item *model.PlanningItem) dto.ItemBrief {
	brief := dto.ItemBrief{
		ID:          item.ItemID,
		PlannedDate: item.PlannedDate.Format("2006-01-02"),
		PlannedTime: item.PlannedTime,
		Status:      item.Status,
	}
	if item.Contact != nil {
		brief.ContactName = item.Contact.Name
	}
	return brief
}

func toItemBriefs(items []model.PlanningItem) []dto.ItemBrief {
	briefs := make([]dto.ItemBrief, 0, len(items))
	for i := range items {
		briefs = append(briefs, toItemBrief(&items[i]))
	}
	return briefs
}
