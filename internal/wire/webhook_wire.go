package wire

import (
	"quickshow/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// POST /api/stripe - Payment provider webhook (signature-verified, no
	// identity middleware; the signature is the authentication)
	r.Post("/api/stripe", webhookHandler.HandleStripeEvent)
}
