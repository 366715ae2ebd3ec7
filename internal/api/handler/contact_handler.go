package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/service"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/response"
)

// ContactHandler client/address book endpoints.
type ContactHandler struct {
	contactSvc service.ContactService
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// Create creates a contact.
// POST /api/v1/contacts
func (h *ContactHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.contactSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// Get fetches one contact.
// GET /api/v1/contacts/:id
func (h *ContactHandler) Get(c *gin.Context) {
	result, err := h.contactSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			response.NotFound(c, 13001, "contact not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// List lists contacts with search and pagination.
// GET /api/v1/contacts
func (h *ContactHandler) List(c *gin.Context) {
	var req dto.ContactListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	list, total, err := h.contactSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// Update partially updates a contact.
// PATCH /api/v1/contacts/:id
func (h *ContactHandler) Update(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	result, err := h.contactSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			response.NotFound(c, 13001, "contact not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Delete soft-deletes a contact.
// DELETE /api/v1/contacts/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.contactSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		if errors.Is(err, service.ErrContactNotFound) {
			response.NotFound(c, 13001, "contact not found")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// Geocode resolves and persists the contact's coordinates.
// POST /api/v1/contacts/:id/geocode
func (h *ContactHandler) Geocode(c *gin.Context) {
	result, err := h.contactSvc.Geocode(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContactNotFound):
			response.NotFound(c, 13001, "contact not found")
		case errors.Is(err, service.ErrGeocodingUnavailable):
			response.Error(c, http.StatusUnprocessableEntity, 13002, "address could not be geocoded")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
