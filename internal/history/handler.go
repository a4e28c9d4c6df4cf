package history

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanjaibalajee/weebsworldxplorers/pkg/middleware"
	"github.com/sanjaibalajee/weebsworldxplorers/pkg/response"
)

// Handler handles HTTP requests for history operations
type Handler struct {
	service *Service
}

// NewHandler creates a new history handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for history endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Feed)
	r.Get("/stats", h.Stats)

	return r
}

// Feed handles GET /history
// @Summary      Activity feed of expenses and settlements
// @Tags         history
// @Produce      json
// @Param        mine query bool false "Restrict to the caller's own activity"
// @Success      200 {object} response.APIResponse{data=[]Entry}
// @Router       /history [get]
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	entries, err := h.service.Feed(r.Context(), userID, r.URL.Query().Get("mine") == "true")
	if err != nil {
		response.InternalError(w, "Failed to load history")
		return
	}

	response.JSON(w, http.StatusOK, entries)
}

// Stats handles GET /history/stats
// @Summary      Trip-level and personal spending totals
// @Tags         history
// @Produce      json
// @Success      200 {object} response.APIResponse{data=Stats}
// @Router       /history/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	stats, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute stats")
		return
	}

	response.JSON(w, http.StatusOK, stats)
}
