package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/moling/userservice/internal/authz"
	"github.com/moling/userservice/internal/services"
	"github.com/moling/userservice/internal/store"
)

// UserHandler provides administrative user endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user management routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, table authz.Table, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(userService)

	r.Use(authMiddleware)
	r.With(RequirePermission(table, authz.PermUserManageAny)).Patch("/{userID}/active", handler.SetActive)
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive soft-activates or soft-deactivates an account. Deactivation
// invalidates the user's outstanding tokens on their next validation.
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	var opErr error
	if req.Active {
		opErr = h.userService.Activate(r.Context(), userID)
	} else {
		opErr = h.userService.Deactivate(r.Context(), userID)
	}
	if opErr != nil {
		if errors.Is(opErr, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
