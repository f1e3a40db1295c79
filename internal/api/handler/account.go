package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aweston/flagchase/internal/api/middleware"
	"github.com/aweston/flagchase/internal/api/request"
	"github.com/aweston/flagchase/internal/api/response"
	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/services/account"
)

// AccountHandler handles account and guest session endpoints
type AccountHandler struct {
	accounts *account.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *account.Service) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
	}
}

// Register handles POST /api/v1/accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}

	if err := h.accounts.Register(r.Context(), req.Email, req.DisplayName, req.Password); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, response.MessageResponse{
		Message: "Verification email sent",
	})
}

// VerifyEmail handles POST /api/v1/accounts/verify
func (h *AccountHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" || req.Token == "" {
		WriteError(w, NewInvalidRequestError("email and token are required"))
		return
	}

	user, token, err := h.accounts.VerifyEmail(r.Context(), req.Email, req.Token)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponse{
		Message: "Account verified",
		User:    user,
		Token:   token,
	})
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		WriteError(w, NewInvalidRequestError("email and password are required"))
		return
	}

	user, token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponse{
		Message: "Logged in",
		User:    user,
		Token:   token,
	})
}

// ForgotPassword handles POST /api/v1/accounts/password/forgot
func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" {
		WriteError(w, NewInvalidRequestError("email is required"))
		return
	}

	if err := h.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusAccepted, response.MessageResponse{
		Message: "If the email is registered, a reset link has been sent",
	})
}

// ResetPassword handles POST /api/v1/accounts/password/reset
func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Email == "" || req.Token == "" || req.Password == "" {
		WriteError(w, NewInvalidRequestError("email, token and password are required"))
		return
	}

	if err := h.accounts.ResetPassword(r.Context(), req.Email, req.Token, req.Password); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MessageResponse{
		Message: "Password updated",
	})
}

// GetMe handles GET /api/v1/accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	act := middleware.MustGetActor(r.Context())

	if act.IsGuest() {
		guest, err := h.accounts.GetGuest(r.Context(), act.ID)
		if err != nil {
			WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, response.GuestResponse{
			Message: "Guest session",
			Guest:   guest,
		})
		return
	}

	user, err := h.accounts.GetUser(r.Context(), model.UserID(act.ID))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.UserResponse{
		Message: "Account",
		User:    user,
	})
}
