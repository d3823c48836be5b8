package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

func TestHandlePaymentWebhook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "deposit authorized",
			body:           `{"booking_id":"bk-1","event_type":"deposit_authorized","amount_cents":50000,"deposit_status":"held"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "payment captured",
			body:           `{"booking_id":"bk-1","event_type":"payment_captured","amount_cents":20000}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing event type",
			body:           `{"booking_id":"bk-1"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown booking",
			body:           `{"booking_id":"bk-x","event_type":"payment_captured"}`,
			serviceErr:     domain.ErrBookingNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubPaymentService{err: tt.serviceErr}
			req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			HandlePaymentWebhook(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

type stubPaymentService struct {
	in  app.PaymentEventInput
	err error
}

func (s *stubPaymentService) RecordPaymentEvent(_ context.Context, in app.PaymentEventInput) error {
	s.in = in
	return s.err
}
