package activity

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/commercemobile/storefront-admin/internal/transport"
	"github.com/commercemobile/storefront-admin/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) queryFromRequest(r *http.Request) (QueryDTO, error) {
	dto := QueryDTO{
		UserID:     r.URL.Query().Get("user_id"),
		Action:     r.URL.Query().Get("action"),
		Resource:   r.URL.Query().Get("resource"),
		Pagination: h.ParsePagination(r),
	}

	if raw := r.URL.Query().Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dto, fmt.Errorf("invalid start_date: %w", err)
		}
		dto.StartDate = &t
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return dto, fmt.Errorf("invalid end_date: %w", err)
		}
		dto.EndDate = &t
	}
	return dto, nil
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	dto, err := h.queryFromRequest(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, total, err := h.Service.Query(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  entries,
		"total": total,
		"page":  dto.Pagination.Page,
		"limit": dto.Pagination.Limit,
	})
}

// Export streams the filtered log as a CSV or PDF download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	dto, err := h.queryFromRequest(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatCSV
	}

	data, err := h.Service.Export(r.Context(), dto, format)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := fmt.Sprintf("activity-log-%s.%s", time.Now().Format("2006-01-02"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to write export", "error", err)
	}
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Service.Clear(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}
