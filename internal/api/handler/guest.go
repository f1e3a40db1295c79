package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aweston/flagchase/internal/api/request"
	"github.com/aweston/flagchase/internal/api/response"
	"github.com/aweston/flagchase/internal/services/account"
)

// GuestHandler handles guest session endpoints
type GuestHandler struct {
	accounts *account.Service
}

// NewGuestHandler creates a new guest handler
func NewGuestHandler(accounts *account.Service) *GuestHandler {
	return &GuestHandler{
		accounts: accounts,
	}
}

// Init handles POST /api/v1/guests/init
func (h *GuestHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req request.InitGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Allow empty body; display name is optional for guests
		req = request.InitGuestRequest{}
	}

	guest, err := h.accounts.InitGuest(r.Context(), req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GuestResponse{
		Message: "Guest session created",
		Guest:   guest,
	})
}

// End handles POST /api/v1/guests/end
func (h *GuestHandler) End(w http.ResponseWriter, r *http.Request) {
	var req request.GuestTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}
	if req.GuestToken == "" {
		WriteError(w, NewInvalidRequestError("guest_token is required"))
		return
	}

	if err := h.accounts.EndGuest(r.Context(), req.GuestToken); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MessageResponse{
		Message: "Guest session ended",
	})
}

// Upgrade handles POST /api/v1/guests/upgrade
func (h *GuestHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	var req request.UpgradeGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.GuestToken == "" {
		WriteError(w, NewInvalidRequestError("guest_token is required"))
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

	user, token, err := h.accounts.UpgradeGuest(r.Context(), req.GuestToken, req.Email, req.DisplayName, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponse{
		Message: "Guest upgraded to account",
		User:    user,
		Token:   token,
	})
}
