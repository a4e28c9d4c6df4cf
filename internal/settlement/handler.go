package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanjaibalajee/weebsworldxplorers/pkg/middleware"
	"github.com/sanjaibalajee/weebsworldxplorers/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/pending", h.Pending)
	r.Get("/outgoing", h.Outgoing)
	r.Get("/balances", h.DashboardBalances)
	r.Get("/balances/detailed", h.DetailedBalances)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/confirm", h.Confirm)
	r.Post("/{id}/reject", h.Reject)

	return r
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSettlementNotFound):
		response.NotFound(w, "Settlement not found")
	case errors.Is(err, ErrNotReceiver):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrNotPending):
		response.Conflict(w, err.Error())
	case errors.Is(err, ErrInvalidSettlement), errors.Is(err, ErrSelfSettlement):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "Failed to process settlement")
	}
}

// Create handles POST /settlements
// @Summary      Record a settlement (pay or receive)
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        settlement body CreateSettlementRequest true "Settlement"
// @Success      201 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /settlements [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, resp)
}

// List handles GET /settlements
// @Summary      List settlements involving the caller
// @Tags         settlements
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Router       /settlements [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list settlements")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Pending handles GET /settlements/pending
// @Summary      List settlements awaiting the caller's confirmation
// @Tags         settlements
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Router       /settlements/pending [get]
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.service.Pending(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list pending settlements")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Outgoing handles GET /settlements/outgoing
// @Summary      List the caller's own unconfirmed settlements
// @Tags         settlements
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Router       /settlements/outgoing [get]
func (h *Handler) Outgoing(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.service.Outgoing(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list outgoing settlements")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /settlements/{id}
// @Summary      Get one settlement
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Settlement ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Confirm handles POST /settlements/{id}/confirm
// @Summary      Confirm a pending settlement (receiver only)
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id path string true "Settlement ID"
// @Param        confirm body ConfirmSettlementRequest true "Confirmation"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /settlements/{id}/confirm [post]
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req ConfirmSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.service.Confirm(r.Context(), userID, chi.URLParam(r, "id"), req.AffectsMyWallet)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Reject handles POST /settlements/{id}/reject
// @Summary      Reject a pending settlement (receiver only)
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Settlement ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /settlements/{id}/reject [post]
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.service.Reject(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// DashboardBalances handles GET /settlements/balances
// @Summary      Aggregate owed-to-me / owed-by-me totals with wallet balance
// @Tags         settlements
// @Produce      json
// @Success      200 {object} response.APIResponse{data=DashboardBalancesResponse}
// @Router       /settlements/balances [get]
func (h *Handler) DashboardBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.service.DashboardBalances(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// DetailedBalances handles GET /settlements/balances/detailed
// @Summary      Per-person balances with contributing expenses
// @Tags         settlements
// @Produce      json
// @Success      200 {object} response.APIResponse{data=DetailedBalancesResponse}
// @Router       /settlements/balances/detailed [get]
func (h *Handler) DetailedBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.service.DetailedBalances(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to compute balances")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}
