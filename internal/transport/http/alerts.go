package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// AlertManager is the minimal interface needed for the alert endpoints.
type AlertManager interface {
	Acknowledge(ctx context.Context, alertID, actor string) error
	Resolve(ctx context.Context, alertID, actor string) error
	ListByBooking(ctx context.Context, bookingID string) ([]domain.Alert, error)
}

// HandleListAlerts returns an HTTP handler listing a booking's alerts.
func HandleListAlerts(svc AlertManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		alerts, err := svc.ListByBooking(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make([]alertResponse, 0, len(alerts))
		for _, a := range alerts {
			resp = append(resp, alertResponse{
				ID:        a.ID,
				Type:      string(a.Type),
				Status:    string(a.Status),
				BookingID: a.BookingID,
				Message:   a.Message,
				CreatedAt: a.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleAcknowledgeAlert returns an HTTP handler acknowledging an alert.
func HandleAcknowledgeAlert(svc AlertManager) http.HandlerFunc {
	return alertAction(svc.Acknowledge)
}

// HandleResolveAlert returns an HTTP handler resolving an alert.
func HandleResolveAlert(svc AlertManager) http.HandlerFunc {
	return alertAction(svc.Resolve)
}

func alertAction(action func(ctx context.Context, alertID, actor string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req alertActionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := action(r.Context(), r.PathValue("id"), req.Actor); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	}
}

type alertActionRequest struct {
	Actor string `json:"actor"`
}

type alertResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	BookingID string    `json:"booking_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
