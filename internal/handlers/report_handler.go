package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
)

// reportsPrefix is the path prefix of report item routes
const reportsPrefix = "/api/reports/"

// ReportHandler handles HTTP requests for research reports
type ReportHandler struct {
	reportService interfaces.ReportService
	logger        arbor.ILogger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService interfaces.ReportService, logger arbor.ILogger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

type submitRequest struct {
	Ticker string `json:"ticker"`
}

type submitResponse struct {
	Message  string `json:"message"`
	ReportID string `json:"reportId"`
}

// SubmitHandler handles POST /api/reports.
// It responds 202 as soon as the pending record is stored.
func (h *ReportHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req submitRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report, err := h.reportService.Submit(r.Context(), identity.UserID, req.Ticker)
	if err != nil {
		h.writeServiceError(w, err, "Failed to start report generation")
		return
	}

	WriteJSON(w, http.StatusAccepted, submitResponse{
		Message:  "Report generation started",
		ReportID: report.ID,
	})
}

// ListHandler handles GET /api/reports
func (h *ReportHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reports, err := h.reportService.List(r.Context(), *identity)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list reports")
		return
	}

	WriteJSON(w, http.StatusOK, summaries(reports))
}

// AdminListHandler handles GET /api/admin/reports
func (h *ReportHandler) AdminListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	reports, err := h.reportService.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to list reports")
		return
	}

	WriteJSON(w, http.StatusOK, summaries(reports))
}

// GetHandler handles GET /api/reports/{id}
func (h *ReportHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.itemRequest(w, r)
	if !ok {
		return
	}

	report, err := h.reportService.Get(r.Context(), *identity, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get report")
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// DeleteHandler handles DELETE /api/reports/{id}
func (h *ReportHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	identity, id, ok := h.itemRequest(w, r)
	if !ok {
		return
	}

	if err := h.reportService.Delete(r.Context(), *identity, id); err != nil {
		h.writeServiceError(w, err, "Failed to delete report")
		return
	}

	WriteMessage(w, http.StatusOK, "Report deleted successfully")
}

// ExportHandler handles GET /api/reports/{id}/export/{format} and /api/reports/{id}/export-{format}
func (h *ReportHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	identity, id, ok := h.itemRequest(w, r)
	if !ok {
		return
	}

	format := exportFormat(r.URL.Path)

	doc, err := h.reportService.Export(r.Context(), *identity, id, format)
	if err != nil {
		h.writeServiceError(w, err, "Failed to export report")
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Body)
}

// exportFormat reads the format from the last path segment, "pdf" or "export-pdf"
func exportFormat(path string) interfaces.ExportFormat {
	path = strings.TrimRight(path, "/")
	last := path[strings.LastIndex(path, "/")+1:]
	return interfaces.ExportFormat(strings.TrimPrefix(last, "export-"))
}

// itemRequest resolves the caller and the report id from an item route
func (h *ReportHandler) itemRequest(w http.ResponseWriter, r *http.Request) (*models.Identity, string, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, "", false
	}

	id := PathParam(r.URL.Path, reportsPrefix)
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Report ID is required")
		return nil, "", false
	}

	return identity, id, true
}

// writeServiceError maps report service errors to HTTP responses
func (h *ReportHandler) writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, interfaces.ErrMissingTicker):
		WriteError(w, http.StatusBadRequest, "Missing company ticker")
	case errors.Is(err, interfaces.ErrReportNotFound):
		WriteError(w, http.StatusNotFound, "Report not found")
	case errors.Is(err, interfaces.ErrAccessDenied):
		WriteError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, interfaces.ErrUnsupportedFormat):
		WriteError(w, http.StatusBadRequest, "Unsupported export format")
	default:
		h.logger.Error().Err(err).Msg(message)
		WriteError(w, http.StatusInternalServerError, message)
	}
}

func summaries(reports []*models.Report) []models.ReportSummary {
	result := make([]models.ReportSummary, 0, len(reports))
	for _, report := range reports {
		result = append(result, report.Summary())
	}
	return result
}
