package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mams-ops/apiserver/internal/services"
)

// ReportHandler provides dashboard and report endpoints over the
// aggregated ledgers.
type ReportHandler struct {
	reportService *services.ReportService
}

func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportRouter registers report routes on the given router.
func ReportRouter(r chi.Router, reportService *services.ReportService) {
	handler := NewReportHandler(reportService)

	r.Get("/summary", handler.Summary)
	r.Post("/export", handler.Export)
	r.Get("/export/*", handler.DownloadExport)
	r.Delete("/export/*", handler.DeleteExport)
}

// Dashboard serves the role-scoped movement summary used by the landing
// view. Unlike /reports, it is open to every authenticated role.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.Summary(w, r)
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	base := strings.TrimSpace(r.URL.Query().Get("base"))
	summary, err := h.reportService.Summary(r.Context(), user, base)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeRedirect(w, http.StatusUnauthorized, "unauthorized", loginPath, r.URL.RequestURI())
		return
	}

	key, err := h.reportService.Export(r.Context(), user)
	if err != nil {
		if errors.Is(err, services.ErrExportsDisabled) {
			writeError(w, http.StatusNotImplemented, "report exports are disabled")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to export report")
		return
	}
	writeJSON(w, http.StatusCreated, ExportResponse{Key: key})
}

type ExportResponse struct {
	Key string `json:"key"`
}

// exportKey extracts and validates the object key from an export route.
// Keys are issued by Export and always live under the reports/ prefix.
func exportKey(r *http.Request) (string, bool) {
	key := chi.URLParam(r, "*")
	if !strings.HasPrefix(key, "reports/") || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}

// DownloadExport streams an archived export back to the caller.
func (h *ReportHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	key, ok := exportKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid export key")
		return
	}

	object, err := h.reportService.Fetch(r.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrExportsDisabled) {
			writeError(w, http.StatusNotImplemented, "report exports are disabled")
			return
		}
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, object)
}

// DeleteExport removes an archived export from object storage.
func (h *ReportHandler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	key, ok := exportKey(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid export key")
		return
	}

	if err := h.reportService.Discard(r.Context(), key); err != nil {
		if errors.Is(err, services.ErrExportsDisabled) {
			writeError(w, http.StatusNotImplemented, "report exports are disabled")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete export")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
