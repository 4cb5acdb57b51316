package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/commercemobile/storefront-admin/internal"
	"github.com/commercemobile/storefront-admin/internal/session"
	"github.com/commercemobile/storefront-admin/internal/transport"
	"github.com/commercemobile/storefront-admin/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, userAgent, ipAddress string) (*LoginResult, error)
	VerifyTwoFactor(ctx context.Context, dto VerifyTwoFactorDTO) (*LoginResult, error)
	Resume(ctx context.Context, token string) (*LoginResult, error)
	Heartbeat(ctx context.Context, sessionID string) (*session.Session, error)
	Logout(ctx context.Context, actor *internal.Actor) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI

	heartbeatInterval time.Duration
}

func NewHandler(service ServiceAPI, heartbeatInterval time.Duration) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if heartbeatInterval <= 0 {
		heartbeatInterval = 5 * time.Minute
	}
	return &Handler{
		BaseHandler:       transport.NewBaseHandler(lg),
		Service:           service,
		heartbeatInterval: heartbeatInterval,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Login: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Login(r.Context(), dto, r.UserAgent(), h.ClientIP(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) VerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	var dto VerifyTwoFactorDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("VerifyTwoFactor: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.VerifyTwoFactor(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// Me returns the authenticated state for the current bearer token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	result, err := h.Service.Resume(r.Context(), token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// Heartbeat refreshes session activity. The response carries the configured
// interval so the SPA knows its ping cadence.
func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sess, err := h.Service.Heartbeat(r.Context(), actor.SessionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"session":                    sess,
		"heartbeat_interval_seconds": int(h.heartbeatInterval.Seconds()),
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := internal.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.Logout(r.Context(), actor); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}
