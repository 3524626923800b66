package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// ClientHandler handles the admin client management and association
// endpoints.
type ClientHandler struct {
	service bcms.Service
}

// NewClientHandler creates a new client handler
func NewClientHandler(service bcms.Service) *ClientHandler {
	return &ClientHandler{service: service}
}

// attachPayload echoes both sides of a new association.
type attachPayload struct {
	Client *bcms.Client `json:"client"`
	User   *bcms.User   `json:"user"`
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePagination(r)
	clients, total, err := h.service.ListClients(r.Context(), identityFrom(r.Context()), page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, clients, bcms.NewPageMeta(page, total))
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bcms.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, r, "invalid request body")
		return
	}

	client, err := h.service.CreateClient(r.Context(), identityFrom(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, client)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrClientNotFound)
		return
	}

	client, err := h.service.GetClient(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, client)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrClientNotFound)
		return
	}

	var req bcms.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, r, "invalid request body")
		return
	}

	client, err := h.service.UpdateClient(r.Context(), identityFrom(r.Context()), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, client)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrClientNotFound)
		return
	}

	if err := h.service.DeleteClient(r.Context(), identityFrom(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "client deleted")
}

// ListUsers returns the users attached to a client, in attachment order.
func (h *ClientHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrClientNotFound)
		return
	}

	users, err := h.service.ListClientUsers(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, users)
}

// AttachUser creates a client-user association.
func (h *ClientHandler) AttachUser(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrClientNotFound)
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, bcms.ErrUserNotFound)
		return
	}

	client, user, err := h.service.AttachUser(r.Context(), identityFrom(r.Context()), clientID, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, attachPayload{Client: client, User: user})
}

// DetachUser removes a client-user association.
func (h *ClientHandler) DetachUser(w http.ResponseWriter, r *http.Request) {
	clientID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrClientNotFound)
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, bcms.ErrUserNotFound)
		return
	}

	if err := h.service.DetachUser(r.Context(), identityFrom(r.Context()), clientID, userID); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "user detached")
}
