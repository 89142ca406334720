package handlers

import (
	"context"
	"net/http"

	"coachpath/internal/service"
)

// AdminHandler serves the admin overview
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Summary returns the aggregate of every user, member rows filtered by ?q=
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.adminService.Summary(ctx, r.URL.Query().Get("q"))
	if err != nil {
		respondWithServiceError(w, "Failed to build admin summary", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}
