package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// UserHandler handles the admin user management endpoints.
type UserHandler struct {
	service bcms.Service
}

// NewUserHandler creates a new user handler
func NewUserHandler(service bcms.Service) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePagination(r)
	users, total, err := h.service.ListUsers(r.Context(), identityFrom(r.Context()), page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, users, bcms.NewPageMeta(page, total))
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bcms.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, r, "invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), identityFrom(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrUserNotFound)
		return
	}

	user, err := h.service.GetUser(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrUserNotFound)
		return
	}

	var req bcms.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, r, "invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), identityFrom(r.Context()), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrUserNotFound)
		return
	}

	if err := h.service.DeleteUser(r.Context(), identityFrom(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "user deleted")
}

// Search finds users by email substring, for the association picker.
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	req := bcms.SearchUsersRequest{Email: q.Get("email"), Limit: limit}

	users, err := h.service.SearchUsers(r.Context(), identityFrom(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, users)
}
