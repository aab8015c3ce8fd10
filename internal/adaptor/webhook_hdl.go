package adaptor

import (
	"errors"
	"io"
	"net/http"

	"quickshow/internal/usecase"
	"quickshow/pkg/utils"

	"go.uber.org/zap"
)

// maxWebhookBody bounds the payload we read from the payment provider.
const maxWebhookBody = 65536

type WebhookHandler struct {
	service usecase.WebhookService
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.WebhookService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// HandleStripeEvent handles POST /api/stripe (public, signature-verified).
//
// Status codes steer the provider's retry behavior: 2xx means the event is
// settled (processed, duplicate, or flagged), 400 means a retry can never
// succeed, 5xx asks for redelivery.
func (h *WebhookHandler) HandleStripeEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.log.Error("Failed to read webhook body", zap.Error(err))
		utils.ResponseBadRequest(w, "Unable to read request body", nil)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")

	err = h.service.HandleEvent(r.Context(), payload, sigHeader)
	switch {
	case err == nil:
		utils.ResponseSuccess(w, "received", nil)

	case errors.Is(err, usecase.ErrBadSignature):
		h.log.Warn("Webhook rejected - bad signature", zap.Error(err))
		utils.ResponseBadRequest(w, "Invalid signature", nil)

	case errors.Is(err, usecase.ErrLatePayment):
		// Already logged at Error level with the booking details. Ack so
		// the provider stops retrying; redelivery cannot change the
		// outcome, reconciliation happens out of band.
		utils.ResponseSuccess(w, "received", nil)

	default:
		h.log.Error("Webhook processing failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
