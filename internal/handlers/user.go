package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mams-ops/apiserver/internal/services"
	"github.com/mams-ops/apiserver/internal/store"
	"github.com/mams-ops/apiserver/types"
)

// UserHandler provides admin account management endpoints.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user management routes on the given router. The
// router is expected to be gated to admins.
func UserRouter(r chi.Router, userService *services.UserService) {
	handler := NewUserHandler(userService)

	r.Get("/{id}", handler.GetUser)
	r.Put("/{id}", handler.UpdateUser)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser lets an admin adjust an account's role and base assignment.
// Self-registered officers have no base until assigned one here.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	if req.Role != "" {
		role := types.Role(req.Role)
		if !role.Valid() {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
		user.Role = role
	}
	if req.BaseID != nil {
		baseID := strings.TrimSpace(*req.BaseID)
		if baseID == "" {
			user.BaseID = ""
			user.BaseName = ""
		} else {
			name := baseName(baseID)
			if name == "" {
				writeError(w, http.StatusBadRequest, "unknown base")
				return
			}
			user.BaseID = baseID
			user.BaseName = name
		}
	}
	if req.FirstName != "" {
		user.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		user.LastName = strings.TrimSpace(req.LastName)
	}

	updated, err := h.userService.Update(r.Context(), user)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func baseName(id string) string {
	for _, base := range types.DefaultBases {
		if base.ID == id {
			return base.Name
		}
	}
	return ""
}

// UpdateUserRequest carries the admin-editable account fields. A nil
// BaseID leaves the assignment untouched; an empty one clears it.
type UpdateUserRequest struct {
	Role      string  `json:"role,omitempty"`
	BaseID    *string `json:"base_id,omitempty"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
}
