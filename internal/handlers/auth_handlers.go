package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"drawroom/internal/auth"
	"drawroom/internal/models"
	"drawroom/pkg/logger"
)

type AuthHandlers struct {
	authService *auth.Service
}

func NewAuthHandlers(authService *auth.Service) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

type signupResponse struct {
	UserID string `json:"userId"`
}

func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid format")
		return
	}

	user, err := h.authService.Signup(r.Context(), &req)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrUserExists):
		// 411 is what existing clients check for.
		writeMessage(w, http.StatusLengthRequired, "user already exists")
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("signup failed", logger.Err(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, signupResponse{UserID: user.ID})
}

func (h *AuthHandlers) Signin(w http.ResponseWriter, r *http.Request) {
	var req models.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid format")
		return
	}

	token, err := h.authService.Signin(r.Context(), &req)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeMessage(w, http.StatusForbidden, "invalid credentials")
		return
	case err != nil:
		logger.FromContext(r.Context()).Error("signin failed", logger.Err(err))
		writeMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, models.SigninResponse{Message: "signin success", Token: token})
}
