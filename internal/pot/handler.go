package pot

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanjaibalajee/weebsworldxplorers/pkg/middleware"
	"github.com/sanjaibalajee/weebsworldxplorers/pkg/response"
)

// Handler handles HTTP requests for pot operations
type Handler struct {
	service *Service
}

// NewHandler creates a new pot handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for pot endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/balance", h.Balance)
	r.Get("/transactions", h.Transactions)

	// Admin only
	r.Post("/load", h.Load)
	r.Post("/load-all", h.BulkLoad)
	r.Get("/users", h.Members)
	r.Get("/balances", h.AllBalances)

	return r
}

// Balance handles GET /pot/balance
// @Summary      Get current pot balance
// @Tags         pot
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /pot/balance [get]
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get pot balance")
		return
	}

	response.JSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

// Transactions handles GET /pot/transactions
// @Summary      List the caller's pot ledger entries, newest first
// @Tags         pot
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]TransactionResponse}
// @Router       /pot/transactions [get]
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	txns, err := h.service.Transactions(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list pot transactions")
		return
	}

	response.JSON(w, http.StatusOK, txns)
}

// Load handles POST /pot/load
// @Summary      Move money from one user's wallet into their pot (admin only)
// @Tags         pot
// @Accept       json
// @Produce      json
// @Param        load body LoadPotRequest true "Pot load"
// @Success      200 {object} response.APIResponse{data=LoadPotResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /pot/load [post]
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}
	if !middleware.IsAdmin(r.Context()) {
		response.Forbidden(w, "Only the admin can load pots")
		return
	}

	var req LoadPotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Load(r.Context(), adminID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrUserNotFound):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrInsufficientWallet):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to load pot")
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// BulkLoad handles POST /pot/load-all
// @Summary      Load every member's pot with the same amount (admin only)
// @Tags         pot
// @Accept       json
// @Produce      json
// @Param        load body BulkLoadRequest true "Bulk pot load"
// @Success      200 {object} response.APIResponse{data=BulkLoadResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /pot/load-all [post]
func (h *Handler) BulkLoad(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}
	if !middleware.IsAdmin(r.Context()) {
		response.Forbidden(w, "Only the admin can load pots")
		return
	}

	var req BulkLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.BulkLoad(r.Context(), adminID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to bulk load pots")
		return
	}

	response.JSON(w, http.StatusOK, result)
}

// Members handles GET /pot/users
// @Summary      List users eligible for pot loads (admin only)
// @Tags         pot
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Member}
// @Router       /pot/users [get]
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsAdmin(r.Context()) {
		response.Forbidden(w, "Only the admin can list pot users")
		return
	}

	members, err := h.service.Members(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	response.JSON(w, http.StatusOK, members)
}

// AllBalances handles GET /pot/balances
// @Summary      List every member's pot balance with the group total (admin only)
// @Tags         pot
// @Produce      json
// @Success      200 {object} response.APIResponse{data=PotBalancesResponse}
// @Router       /pot/balances [get]
func (h *Handler) AllBalances(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsAdmin(r.Context()) {
		response.Forbidden(w, "Only the admin can view all pot balances")
		return
	}

	balances, err := h.service.AllBalances(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list pot balances")
		return
	}

	response.JSON(w, http.StatusOK, balances)
}
