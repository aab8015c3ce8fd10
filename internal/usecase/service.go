package usecase

import (
	"quickshow/internal/data/repository"
	"quickshow/pkg/gateway"
	"quickshow/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Show        ShowService
	Reservation ReservationService
	Webhook     WebhookService
}

func NewService(
	repo *repository.Repository,
	cache *repository.SeatCache,
	gw gateway.PaymentGateway,
	verifier gateway.EventVerifier,
	scheduler ExpiryScheduler,
	notifier ConfirmationNotifier,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Show:        NewShowService(repo, log),
		Reservation: NewReservationService(repo, cache, gw, scheduler, config.Booking.ExpiryDelay, log),
		Webhook:     NewWebhookService(repo, verifier, notifier, log),
	}
}
