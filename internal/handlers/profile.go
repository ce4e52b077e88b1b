package handlers

import (
	"net/http"

	"github.com/boostmysites25/zippty-backend/internal/service/admin"
)

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (h API) GetAdminProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	profile, err := h.Profile.GetProfile(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch admin profile")
		return
	}
	writeOK(w, "Admin profile retrieved successfully", profile)
}

// PutAdminProfile applies the fields present in the body. Absent and null
// fields are left unchanged.
func (h API) PutAdminProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var patch admin.ProfilePatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	profile, err := h.Profile.UpdateProfile(r.Context(), p.ID, patch)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update admin profile")
		return
	}
	writeOK(w, "Admin profile updated successfully", profile)
}

func (h API) PutAdminPassword(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil || validate.Struct(req) != nil {
		writeFail(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}
	if err := h.Profile.ChangePassword(r.Context(), p.ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err, "Failed to change password")
		return
	}
	writeOK(w, "Password changed successfully", nil)
}
