package session

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/transport"
	"github.com/commercemobile/storefront-admin/pkg/logger"
	"github.com/go-chi/chi"
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := ListFilter{
		UserID:     r.URL.Query().Get("user_id"),
		IPAddress:  r.URL.Query().Get("ip_address"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}
	pagination := h.ParsePagination(r)

	views, total, err := h.Service.List(filter, pagination, actor.SessionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": views,
		"total":    total,
		"page":     pagination.Page,
		"limit":    pagination.Limit,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Service.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) Terminate(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sess, err := h.Service.Terminate(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sess)
}

// TerminateAll ends every active session for a user. An optional
// exclude_session_id keeps one alive, typically the caller's own.
func (h *Handler) TerminateAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto TerminateAllDTO
	if r.Body != nil {
		// body is optional
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	count, err := h.Service.TerminateAllForUser(r.Context(), chi.URLParam(r, "userID"), actor, dto.ExcludeSessionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"terminated": count})
}

// TerminateOthers ends every session of the caller except the current one.
func (h *Handler) TerminateOthers(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	count, err := h.Service.TerminateOthers(r.Context(), actor.ID, actor.SessionID, actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"terminated": count})
}

// Extend pushes a session's expiry out. Callers may always extend their own
// session; extending someone else's requires terminate:sessions.
func (h *Handler) Extend(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(r, "id")
	if id != actor.SessionID && !actor.HasPermission("terminate:sessions") {
		h.WriteError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	var dto ExtendDTO
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	additional := time.Duration(dto.Minutes) * time.Minute
	sess, err := h.Service.Extend(id, additional)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sess)
}
