package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms"
)

// maxMultipartMemory bounds the in-memory part of multipart parsing;
// larger uploads spill to temp files.
const maxMultipartMemory = 32 << 20

// PostHandler handles the post endpoints. Creates and updates accept
// either JSON or multipart/form-data; the multipart form may carry an
// image file.
type PostHandler struct {
	service bcms.Service
}

// NewPostHandler creates a new post handler
func NewPostHandler(service bcms.Service) *PostHandler {
	return &PostHandler{service: service}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePagination(r)

	var filters bcms.PostFilters
	q := r.URL.Query()
	if raw := q.Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, r, bcms.NewValidationError("client_id", "must be a valid UUID"))
			return
		}
		filters.ClientID = &id
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, r, bcms.NewValidationError("user_id", "must be a valid UUID"))
			return
		}
		filters.UserID = &id
	}

	posts, total, err := h.service.ListPosts(r.Context(), identityFrom(r.Context()), page, filters)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, r, posts, bcms.NewPageMeta(page, total))
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bcms.CreatePostRequest

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			respondBadRequest(w, r, "failed to parse multipart form")
			return
		}

		req.Title = r.FormValue("title")
		req.Content = r.FormValue("content")
		req.ImageURL = r.FormValue("image_url")
		if raw := r.FormValue("post_category_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				respondError(w, r, bcms.NewValidationError("post_category_id", "must be a valid UUID"))
				return
			}
			req.PostCategoryID = id
		}
		if raw := r.FormValue("client_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				respondError(w, r, bcms.NewValidationError("client_id", "must be a valid UUID"))
				return
			}
			req.ClientID = &id
		}

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			req.Image = &bcms.ImageUpload{Filename: header.Filename, Size: header.Size, Reader: file}
		} else if !errors.Is(err, http.ErrMissingFile) {
			respondBadRequest(w, r, "invalid image upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondBadRequest(w, r, "invalid request body")
			return
		}
	}

	post, err := h.service.CreatePost(r.Context(), identityFrom(r.Context()), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, post)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrPostNotFound)
		return
	}

	post, err := h.service.GetPost(r.Context(), identityFrom(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, post)
}

// Update handles both PUT /posts/{id} and POST /posts/{id}. A multipart
// body is how a new image file gets attached to an existing post; absent
// form fields leave the post unchanged.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrPostNotFound)
		return
	}

	var req bcms.UpdatePostRequest

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			respondBadRequest(w, r, "failed to parse multipart form")
			return
		}

		form := r.MultipartForm.Value
		if vs, ok := form["title"]; ok && len(vs) > 0 {
			req.Title = &vs[0]
		}
		if vs, ok := form["content"]; ok && len(vs) > 0 {
			req.Content = &vs[0]
		}
		if vs, ok := form["image_url"]; ok && len(vs) > 0 {
			req.ImageURL = &vs[0]
		}
		if vs, ok := form["post_category_id"]; ok && len(vs) > 0 {
			categoryID, err := uuid.Parse(vs[0])
			if err != nil {
				respondError(w, r, bcms.NewValidationError("post_category_id", "must be a valid UUID"))
				return
			}
			req.PostCategoryID = &categoryID
		}

		file, header, err := r.FormFile("image")
		if err == nil {
			defer file.Close()
			req.Image = &bcms.ImageUpload{Filename: header.Filename, Size: header.Size, Reader: file}
		} else if !errors.Is(err, http.ErrMissingFile) {
			respondBadRequest(w, r, "invalid image upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondBadRequest(w, r, "invalid request body")
			return
		}
	}

	post, err := h.service.UpdatePost(r.Context(), identityFrom(r.Context()), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, bcms.ErrPostNotFound)
		return
	}

	if err := h.service.DeletePost(r.Context(), identityFrom(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, r, http.StatusOK, "post deleted")
}
