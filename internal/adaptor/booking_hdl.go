package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"quickshow/internal/data/repository"
	"quickshow/internal/dto/request"
	"quickshow/internal/dto/response"
	"quickshow/internal/usecase"
	"quickshow/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.ReservationService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/booking (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	holderID, ok := utils.GetHolderIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), holderID, &req)
	if err != nil {
		// Losing the seat race is an expected outcome, not an error
		// status. The client re-renders the seat map and retries.
		if errors.Is(err, repository.ErrSeatsUnavailable) {
			utils.ResponseJSON(w, http.StatusOK, false, "Selected seats are not available.", nil, nil)
			return
		}
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// GetOccupiedSeats handles GET /api/booking/seats/{showId} (public)
func (h *BookingHandler) GetOccupiedSeats(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "showId")
	if showID == "" {
		utils.ResponseBadRequest(w, "Show ID is required", nil)
		return
	}

	seats, err := h.service.GetOccupiedSeats(r.Context(), showID)
	if err != nil {
		h.handleServiceError(w, err, "get occupied seats")
		return
	}

	utils.ResponseSuccess(w, "success", response.OccupiedSeatsResponse{OccupiedSeats: seats})
}

// GetUserBookings handles GET /api/user/bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	holderID, ok := utils.GetHolderIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	bookings, err := h.service.GetHolderBookings(r.Context(), holderID, req)
	if err != nil {
		h.handleServiceError(w, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrShowNotFound):
		h.log.Warn(operation+" failed - show not found", zap.Error(err))
		utils.ResponseNotFound(w, "Show not found")

	case errors.Is(err, usecase.ErrInvalidSeats), errors.Is(err, usecase.ErrInvalidShowID):
		h.log.Warn(operation+" failed - invalid input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		h.log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
