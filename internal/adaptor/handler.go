package adaptor

import (
	"quickshow/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Show    *ShowHandler
	Booking *BookingHandler
	Webhook *WebhookHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Show:    NewShowHandler(service.Show, log),
		Booking: NewBookingHandler(service.Reservation, log),
		Webhook: NewWebhookHandler(service.Webhook, log),
	}
}
