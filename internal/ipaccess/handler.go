package ipaccess

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, h.Service.Get(r.Context()))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateSettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Update: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.Service.Update(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) AddRule(w http.ResponseWriter, r *http.Request) {
	var dto RuleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AddRule: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings, err := h.Service.AddRule(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, settings)
}

// RemoveRule takes the rule through the value query parameter because CIDR
// ranges contain slashes that would mangle a path segment.
func (h *Handler) RemoveRule(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	if value == "" {
		h.WriteError(w, http.StatusBadRequest, "value query parameter is required")
		return
	}

	settings, err := h.Service.RemoveRule(r.Context(), value)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, settings)
}
