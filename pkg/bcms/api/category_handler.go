package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// CategoryHandler handles the post category endpoints. Scoping to the
// caller's client happens in the service.
type CategoryHandler struct {
	service bcms.Service
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service bcms.Service) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePagination(r)

	var filters bcms.CategoryFilters
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, r, bcms.NewValidationError("client_id", "must be a valid UUID"))
			return
		}
		filters.ClientID = &id
	}

	categories, total, err := h.service.ListCategories(r.Context(), identityFrom(r.Context()), page, filters)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, categories, bcms.NewPageMeta(page, total))
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bcms.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, r, "invalid request body")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), identityFrom(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, category)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrCategoryNotFound)
		return
	}

	category, err := h.service.GetCategory(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, category)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrCategoryNotFound)
		return
	}

	var req bcms.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, r, "invalid request body")
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), identityFrom(r.Context()), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrCategoryNotFound)
		return
	}

	if err := h.service.DeleteCategory(r.Context(), identityFrom(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "post category deleted")
}
