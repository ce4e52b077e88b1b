package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type userStatusRequest struct {
	IsBlocked any `json:"isBlocked"`
}

func (h API) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Users.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to get user statistics")
		return
	}
	writeOK(w, "User statistics retrieved successfully", stats)
}

func (h API) GetUser(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Users.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to get user details")
		return
	}
	writeOK(w, "User details retrieved successfully", detail)
}

// PatchUserStatus blocks or unblocks a user. isBlocked must be a JSON boolean.
func (h API) PatchUserStatus(w http.ResponseWriter, r *http.Request) {
	var req userStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "isBlocked must be a boolean value")
		return
	}
	blocked, ok := req.IsBlocked.(bool)
	if !ok {
		writeFail(w, http.StatusBadRequest, "isBlocked must be a boolean value")
		return
	}

	user, err := h.Users.SetBlocked(r.Context(), chi.URLParam(r, "userId"), blocked)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update user status")
		return
	}
	msg := "User unblocked successfully"
	if blocked {
		msg = "User blocked successfully"
	}
	writeOK(w, msg, user)
}

func (h API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.DeleteUser(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeServiceError(w, r, err, "Failed to delete user")
		return
	}
	writeOK(w, "User deleted successfully", nil)
}
