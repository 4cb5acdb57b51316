package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type authStubRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authStubUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type authStubResponse struct {
	Success bool          `json:"success"`
	User    *authStubUser `json:"user,omitempty"`
	Message string        `json:"message,omitempty"`
}

// AuthStubHandler backs the storefront customer login/register form. It is a
// stub: any non-empty email and password succeed, nothing is persisted. The
// admin panel authenticates through /api/v1/auth instead.
func AuthStubHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req authStubRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(authStubResponse{Success: false, Message: "invalid request body"})
			return
		}

		if req.Action != "login" && req.Action != "register" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(authStubResponse{Success: false, Message: "unknown action"})
			return
		}

		if req.Email == "" || req.Password == "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(authStubResponse{Success: false, Message: "Invalid credentials"})
			return
		}

		name := req.Name
		if name == "" {
			name = req.Email
		}

		logger.Debug("storefront auth stub", "action", req.Action, "email", req.Email)
		json.NewEncoder(w).Encode(authStubResponse{
			Success: true,
			User: &authStubUser{
				ID:        uuid.NewString(),
				Email:     req.Email,
				Name:      name,
				CreatedAt: time.Now(),
			},
		})
	}
}
