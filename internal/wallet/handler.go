package wallet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanjaibalajee/weebsworldxplorers/pkg/middleware"
	"github.com/sanjaibalajee/weebsworldxplorers/pkg/response"
)

// Handler handles HTTP requests for wallet operations
type Handler struct {
	service *Service
}

// NewHandler creates a new wallet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for wallet endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/balance", h.Balance)
	r.Get("/setup", h.HasSetup)
	r.Get("/transactions", h.Transactions)
	r.Get("/topups", h.Topups)
	r.Get("/topups/all", h.AllTopups)
	r.Post("/topups", h.CreateTopup)

	return r
}

// Balance handles GET /wallet/balance
// @Summary      Get current wallet balance
// @Tags         wallet
// @Produce      json
// @Success      200 {object} response.APIResponse{data=BalanceResponse}
// @Router       /wallet/balance [get]
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	balance, err := h.service.Balance(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get wallet balance")
		return
	}

	response.JSON(w, http.StatusOK, balance)
}

// HasSetup handles GET /wallet/setup
// @Summary      Check whether the wallet has any transactions
// @Tags         wallet
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /wallet/setup [get]
func (h *Handler) HasSetup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	has, err := h.service.HasSetup(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to check wallet setup")
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"has_setup": has})
}

// CreateTopup handles POST /wallet/topups
// @Summary      Load cash into the wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request body CreateTopupRequest true "Topup request"
// @Success      201 {object} response.APIResponse{data=TopupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /wallet/topups [post]
func (h *Handler) CreateTopup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req CreateTopupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	topup, err := h.service.Topup(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidRate) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create topup")
		return
	}

	response.JSON(w, http.StatusCreated, topup.ToResponse())
}

// Transactions handles GET /wallet/transactions
// @Summary      Get the full wallet money trail
// @Tags         wallet
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]TransactionResponse}
// @Router       /wallet/transactions [get]
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	txns, err := h.service.Transactions(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list wallet transactions")
		return
	}

	txnResponses := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		txnResponses[i] = t.ToResponse()
	}

	response.JSON(w, http.StatusOK, txnResponses)
}

// Topups handles GET /wallet/topups
// @Summary      List the current user's topups
// @Tags         wallet
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]TopupResponse}
// @Router       /wallet/topups [get]
func (h *Handler) Topups(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	topups, err := h.service.Topups(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list topups")
		return
	}

	topupResponses := make([]*TopupResponse, len(topups))
	for i, t := range topups {
		topupResponses[i] = t.ToResponse()
	}

	response.JSON(w, http.StatusOK, topupResponses)
}

// AllTopups handles GET /wallet/topups/all
// @Summary      List every user's topups
// @Tags         wallet
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]TopupResponse}
// @Router       /wallet/topups/all [get]
func (h *Handler) AllTopups(w http.ResponseWriter, r *http.Request) {
	topups, err := h.service.AllTopups(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list topups")
		return
	}

	topupResponses := make([]*TopupResponse, len(topups))
	for i, t := range topups {
		topupResponses[i] = t.ToResponse()
	}

	response.JSON(w, http.StatusOK, topupResponses)
}
