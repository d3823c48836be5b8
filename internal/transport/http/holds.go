package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// HoldCreator is the minimal interface needed to place a reservation hold.
type HoldCreator interface {
	CreateHold(ctx context.Context, in app.CreateHoldInput) (domain.ReservationHold, error)
}

// HoldConverter is the minimal interface needed to convert a hold into a
// booking.
type HoldConverter interface {
	ConvertHold(ctx context.Context, holdID string, totalAmountCents, depositAmountCents int64) (domain.Booking, error)
}

// HandleCreateHold returns an HTTP handler for placing holds.
func HandleCreateHold(svc HoldCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.VehicleID == "" || req.CustomerID == "" {
			writeError(w, http.StatusBadRequest, codeMissingField, "vehicle_id and customer_id are required")
			return
		}
		startAt, endAt, err := parseWindow(req.StartAt, req.EndAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidWindow, err.Error())
			return
		}

		hold, err := svc.CreateHold(r.Context(), app.CreateHoldInput{
			VehicleID:  req.VehicleID,
			CustomerID: req.CustomerID,
			StartAt:    startAt,
			EndAt:      endAt,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, holdResponse{
			ID:         hold.ID,
			VehicleID:  hold.VehicleID,
			CustomerID: hold.CustomerID,
			Status:     string(hold.Status),
			StartAt:    hold.StartAt,
			EndAt:      hold.EndAt,
			ExpiresAt:  hold.ExpiresAt,
		})
	}
}

// HandleConvertHold returns an HTTP handler for converting a hold into a
// pending booking.
func HandleConvertHold(svc HoldConverter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		holdID := r.PathValue("id")

		var req convertHoldRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		booking, err := svc.ConvertHold(r.Context(), holdID, req.TotalAmountCents, req.DepositAmountCents)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(booking))
	}
}

type createHoldRequest struct {
	VehicleID  string `json:"vehicle_id"`
	CustomerID string `json:"customer_id"`
	StartAt    string `json:"start_at"`
	EndAt      string `json:"end_at"`
}

type convertHoldRequest struct {
	TotalAmountCents   int64 `json:"total_amount_cents"`
	DepositAmountCents int64 `json:"deposit_amount_cents"`
}

type holdResponse struct {
	ID         string    `json:"id"`
	VehicleID  string    `json:"vehicle_id"`
	CustomerID string    `json:"customer_id"`
	Status     string    `json:"status"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}
