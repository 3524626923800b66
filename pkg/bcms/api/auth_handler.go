package api

import (
	"encoding/json"
	"net/http"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// AuthHandler handles registration, login, logout and the current-user
// endpoint.
type AuthHandler struct {
	service bcms.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service bcms.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// authPayload pairs a user with the plaintext token issued for it. The
// token appears only here; afterwards the server knows just its digest.
type authPayload struct {
	User  *bcms.User `json:"user"`
	Token string     `json:"token"`
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req bcms.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, r, "invalid request body")
		return
	}

	user, token, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, authPayload{User: user, Token: token})
}

// Login authenticates credentials and issues a token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req bcms.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, r, "invalid request body")
		return
	}

	user, token, err := h.service.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, authPayload{User: user, Token: token})
}

// Logout revokes the token used on this request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), identityFrom(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "logged out")
}

// Me returns the authenticated caller's user record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context(), identityFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, user)
}
