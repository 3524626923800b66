package api

import (
	"net/http"

	"github.com/angeloghiotto/bcms-backend/pkg/bcms/admin"
)

// AdminHandler exposes operational statistics. Routes using it must sit
// behind RequireAdmin.
type AdminHandler struct {
	admin admin.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService admin.Service) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// Stats returns row counts per entity and posts per client.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.GetStatistics(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, stats)
}
