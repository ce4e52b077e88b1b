package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// PostAdminLogin exchanges admin credentials for a token.
func (h API) PostAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "max" {
			writeFail(w, http.StatusBadRequest, "Email or password is too long")
			return
		}
		writeFail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Internal server error")
		return
	}
	writeOK(w, "Admin login successful", res)
}
