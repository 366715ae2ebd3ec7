package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/service"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/response"
)

// InviteHandler collaborator and invite endpoints.
type InviteHandler struct {
	inviteSvc service.InviteService
}

// NewInviteHandler creates an InviteHandler.
func NewInviteHandler(inviteSvc service.InviteService) *InviteHandler {
	return &InviteHandler{inviteSvc: inviteSvc}
}

// AddCollaborator grants a user permissions on a planning.
// POST /api/v1/plannings/:id/collaborators
func (h *InviteHandler) AddCollaborator(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.inviteSvc.AddCollaborator(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanningNotFound):
			response.NotFound(c, 14002, "planning not found")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12002, "user not found")
		case errors.Is(err, service.ErrAlreadyCollaborator):
			response.Conflict(c, 15001, "user is already a collaborator")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ListCollaborators lists a planning's collaborators.
// GET /api/v1/plannings/:id/collaborators
func (h *InviteHandler) ListCollaborators(c *gin.Context) {
	result, err := h.inviteSvc.ListCollaborators(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// RemoveCollaborator revokes a grant.
// DELETE /api/v1/plannings/:id/collaborators/:user_id
func (h *InviteHandler) RemoveCollaborator(c *gin.Context) {
	if err := h.inviteSvc.RemoveCollaborator(c.Request.Context(), c.Param("id"), c.Param("user_id")); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// CreateInvite sends a manual invite.
// POST /api/v1/invites
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.inviteSvc.CreateInvite(c.Request.Context(), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanningNotFound):
			response.NotFound(c, 14002, "planning not found")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 12002, "user not found")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// ListInvites lists a planning's invites.
// GET /api/v1/plannings/:id/invites
func (h *InviteHandler) ListInvites(c *gin.Context) {
	result, err := h.inviteSvc.ListInvites(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Respond accepts or declines a pending invite.
// POST /api/v1/invites/:id/respond
func (h *InviteHandler) Respond(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RespondInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.inviteSvc.Respond(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			response.NotFound(c, 15002, "invite not found")
		case errors.Is(err, service.ErrNotInvitee):
			response.Forbidden(c, 15003, "only the invited user can respond")
		case errors.Is(err, service.ErrInviteAlreadySettled):
			response.Conflict(c, 15004, "invite already responded or cancelled")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
