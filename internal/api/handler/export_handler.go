package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/service"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler planning export endpoints.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportXLSX downloads the planning itinerary as a spreadsheet.
// GET /api/v1/plannings/:id/export/xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	data, filename, err := h.exportSvc.ExportXLSX(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, data, filename, contentTypeXLSX)
}

// ExportICS downloads the planning's visits as a calendar feed.
// GET /api/v1/plannings/:id/export/ics
func (h *ExportHandler) ExportICS(c *gin.Context) {
	data, filename, err := h.exportSvc.ExportICS(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, data, filename, contentTypeICS)
}

func writeDownload(c *gin.Context, data []byte, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPlanningNotFound) {
		response.NotFound(c, 14002, "planning not found")
		return
	}
	response.InternalError(c)
}
