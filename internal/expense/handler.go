package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sanjaibalajee/weebsworldxplorers/pkg/middleware"
	"github.com/sanjaibalajee/weebsworldxplorers/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/recent", h.Recent)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	return r
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrExpenseNotFound):
		response.NotFound(w, "Expense not found")
	case errors.Is(err, ErrNotExpenseOwner), errors.Is(err, ErrAdminOnly):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrInvalidExpense), errors.Is(err, ErrPayerMismatch):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "Failed to process expense")
	}
}

// Create handles POST /expenses
// @Summary      Record an expense with payers and splits
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        expense body CreateExpenseRequest true "Expense"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.service.Create(r.Context(), userID, middleware.IsAdmin(r.Context()), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, resp)
}

// List handles GET /expenses
// @Summary      List expenses visible to the caller
// @Tags         expenses
// @Produce      json
// @Param        type query string false "Filter by expense type (group, individual, pot)"
// @Param        only_mine query bool false "Restrict to expenses the caller participates in"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	filter := ListFilter{
		Kind:     r.URL.Query().Get("type"),
		OnlyMine: r.URL.Query().Get("only_mine") == "true",
	}

	resp, err := h.service.List(r.Context(), userID, middleware.IsAdmin(r.Context()), filter)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Recent handles GET /expenses/recent
// @Summary      List the most recent expenses visible to the caller
// @Tags         expenses
// @Produce      json
// @Param        limit query int false "Maximum results (default 5)"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/recent [get]
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	resp, err := h.service.List(r.Context(), userID, middleware.IsAdmin(r.Context()), ListFilter{Limit: limit})
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Get handles GET /expenses/{id}
// @Summary      Get one expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	resp, err := h.service.Get(r.Context(), userID, middleware.IsAdmin(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Update handles PUT /expenses/{id}
// @Summary      Replace an expense's contents
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        expense body UpdateExpenseRequest true "Expense"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.service.Update(r.Context(), userID, middleware.IsAdmin(r.Context()), chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, resp)
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense and reverse its ledger effects
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	if err := h.service.Delete(r.Context(), userID, middleware.IsAdmin(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}
