package bookings

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"cinebook/pkg/logger"
)

const maxWebhookBodyBytes = 65536

// WebhookHandler receives payment gateway callbacks. Signature
// verification failures answer 400 so the gateway retries; everything
// else answers 200 because a retry cannot fix a payload we already
// rejected, and confirmed bookings are idempotent anyway.
type WebhookHandler struct {
	service Service
	secret  string
	log     *logger.Logger
}

func NewWebhookHandler(service Service, secret string, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, secret: secret, log: log}
}

func (h *WebhookHandler) HandleStripeWebhook(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.Status(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, ctx.GetHeader("Stripe-Signature"), h.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		h.log.ErrorWithContext(ctx.Request.Context(), "webhook signature verification failed", err, nil)
		ctx.Status(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(ctx, event.Data.Raw)
	case "checkout.session.expired":
		h.handleCheckoutExpired(ctx, event.Data.Raw)
	default:
		h.log.LogWebhookIgnored(ctx.Request.Context(), string(event.Type))
		ctx.Status(http.StatusOK)
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(ctx *gin.Context, raw json.RawMessage) {
	session, bookingID, ok := h.parseSession(ctx, raw)
	if !ok {
		return
	}

	if err := h.service.ConfirmBooking(ctx.Request.Context(), bookingID, session.ID); err != nil {
		h.log.ErrorWithContext(ctx.Request.Context(), "failed to reconcile completed checkout", err, map[string]interface{}{
			"booking_id": bookingID.String(),
			"session_id": session.ID,
		})
		// Still 200: the payment record holds the truth and the
		// booking flow has its own recovery, a gateway retry would
		// just hit the idempotency gate.
	}
	ctx.Status(http.StatusOK)
}

func (h *WebhookHandler) handleCheckoutExpired(ctx *gin.Context, raw json.RawMessage) {
	session, bookingID, ok := h.parseSession(ctx, raw)
	if !ok {
		return
	}

	if err := h.service.FailBooking(ctx.Request.Context(), bookingID, session.ID); err != nil {
		h.log.ErrorWithContext(ctx.Request.Context(), "failed to reconcile expired checkout", err, map[string]interface{}{
			"booking_id": bookingID.String(),
			"session_id": session.ID,
		})
	}
	ctx.Status(http.StatusOK)
}

// parseSession extracts the checkout session and the booking id from
// its metadata. Malformed payloads are acknowledged with 200 after
// logging: the gateway signed them, retrying cannot change the shape.
func (h *WebhookHandler) parseSession(ctx *gin.Context, raw json.RawMessage) (*stripe.CheckoutSession, uuid.UUID, bool) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		h.log.ErrorWithContext(ctx.Request.Context(), "failed to parse checkout session", err, nil)
		ctx.Status(http.StatusOK)
		return nil, uuid.Nil, false
	}

	bookingID, err := uuid.Parse(session.Metadata["bookingId"])
	if err != nil {
		h.log.ErrorWithContext(ctx.Request.Context(), "checkout session missing booking metadata", err, map[string]interface{}{
			"session_id": session.ID,
		})
		ctx.Status(http.StatusOK)
		return nil, uuid.Nil, false
	}
	return &session, bookingID, true
}
