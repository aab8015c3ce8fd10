package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"quickshow/internal/dto/request"
	"quickshow/internal/usecase"
	"quickshow/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ShowHandler struct {
	service usecase.ShowService
	log     *zap.Logger
}

func NewShowHandler(service usecase.ShowService, log *zap.Logger) *ShowHandler {
	return &ShowHandler{
		service: service,
		log:     log.With(zap.String("handler", "show")),
	}
}

// CreateShow handles POST /api/admin/shows (admin only)
func (h *ShowHandler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req request.CreateShowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	show, err := h.service.CreateShow(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create show")
		return
	}

	utils.ResponseCreated(w, "success", show)
}

// ListShows handles GET /api/shows (public)
func (h *ShowHandler) ListShows(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	shows, err := h.service.ListUpcoming(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "list shows")
		return
	}

	utils.ResponseSuccess(w, "success", shows)
}

// GetShowByID handles GET /api/shows/{id} (public)
func (h *ShowHandler) GetShowByID(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "id")
	if showID == "" {
		utils.ResponseBadRequest(w, "Show ID is required", nil)
		return
	}

	show, err := h.service.GetShowByID(r.Context(), showID)
	if err != nil {
		h.handleServiceError(w, err, "get show by ID")
		return
	}

	utils.ResponseSuccess(w, "success", show)
}

func (h *ShowHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrShowNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, "Show not found")

	case errors.Is(err, usecase.ErrInvalidShowID),
		strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "cannot create show in the past"):
		h.log.Warn(operation+" failed - invalid input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
