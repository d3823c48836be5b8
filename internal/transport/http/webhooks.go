package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
)

// PaymentEventRecorder is the minimal interface needed to reflect payment
// processor callbacks.
type PaymentEventRecorder interface {
	RecordPaymentEvent(ctx context.Context, in app.PaymentEventInput) error
}

// HandlePaymentWebhook returns an HTTP handler for the payment processor
// callback. The processor is the source of truth for money movement; this
// endpoint only records the outcome.
func HandlePaymentWebhook(svc PaymentEventRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentWebhookRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.BookingID == "" || req.EventType == "" {
			writeError(w, http.StatusBadRequest, codeMissingField, "booking_id and event_type are required")
			return
		}

		err := svc.RecordPaymentEvent(r.Context(), app.PaymentEventInput{
			BookingID:     req.BookingID,
			EventType:     req.EventType,
			AmountCents:   req.AmountCents,
			DepositStatus: req.DepositStatus,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{Status: "recorded"})
	}
}

type paymentWebhookRequest struct {
	BookingID     string `json:"booking_id"`
	EventType     string `json:"event_type"`
	AmountCents   int64  `json:"amount_cents,omitempty"`
	DepositStatus string `json:"deposit_status,omitempty"`
}
