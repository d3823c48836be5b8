package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// WalkInCreator is the minimal interface needed to create a staff walk-in
// booking.
type WalkInCreator interface {
	CreateWalkIn(ctx context.Context, in app.CreateWalkInInput) (domain.Booking, error)
}

// BookingReader is the minimal interface needed to read a single booking.
type BookingReader interface {
	GetBooking(ctx context.Context, bookingID string) (domain.Booking, error)
}

// BookingTransitioner is the minimal interface needed to move a booking
// through its status machine.
type BookingTransitioner interface {
	Transition(ctx context.Context, in app.TransitionInput) (domain.Booking, error)
}

// SnapshotReader is the minimal interface needed for the readiness
// projections.
type SnapshotReader interface {
	Snapshot(ctx context.Context, bookingID string) (app.BookingSnapshot, error)
}

// IntakeMarker is the minimal interface needed to record intake progress.
type IntakeMarker interface {
	MarkIntake(ctx context.Context, bookingID string, flags app.IntakeFlags, actor string) error
}

// VehicleAssigner is the minimal interface needed to assign or swap the
// vehicle on a booking.
type VehicleAssigner interface {
	AssignVehicle(ctx context.Context, bookingID, vehicleID, actor string) error
}

// HandleCreateBooking returns an HTTP handler for staff walk-in creation.
func HandleCreateBooking(svc WalkInCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		startAt, endAt, err := parseWindow(req.StartAt, req.EndAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidWindow, err.Error())
			return
		}

		booking, err := svc.CreateWalkIn(r.Context(), app.CreateWalkInInput{
			VehicleID:          req.VehicleID,
			CustomerID:         req.CustomerID,
			StartAt:            startAt,
			EndAt:              endAt,
			TotalAmountCents:   req.TotalAmountCents,
			DepositAmountCents: req.DepositAmountCents,
			Actor:              req.Actor,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(booking))
	}
}

// HandleGetBooking returns an HTTP handler for reading one booking.
func HandleGetBooking(svc BookingReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		booking, err := svc.GetBooking(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(booking))
	}
}

// HandleTransition returns an HTTP handler for booking status transitions.
func HandleTransition(svc BookingTransitioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transitionRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Target == "" {
			writeError(w, http.StatusBadRequest, codeMissingField, "target is required")
			return
		}

		booking, err := svc.Transition(r.Context(), app.TransitionInput{
			BookingID: r.PathValue("id"),
			Target:    domain.BookingStatus(req.Target),
			Actor:     req.Actor,
			Notes:     req.Notes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponse(booking))
	}
}

// HandleNextStep returns an HTTP handler for the single-next-step readiness
// view.
func HandleNextStep(svc SnapshotReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Snapshot(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := nextStepResponse{Ready: app.Ready(snapshot)}
		if step := app.NextStep(snapshot); step != nil {
			resp.Step = &stepResponse{ID: step.ID, Label: step.Label}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleChecklist returns an HTTP handler for the full checklist projection.
func HandleChecklist(svc SnapshotReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := svc.Snapshot(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		items := app.ChecklistItems(snapshot)
		resp := make([]checklistItemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, checklistItemResponse{
				ID:       item.ID,
				Status:   string(item.Status),
				Required: item.Required,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleIntake returns an HTTP handler for recording intake checklist
// progress. Absent fields leave the stored flags untouched.
func HandleIntake(svc IntakeMarker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req intakeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		err := svc.MarkIntake(r.Context(), r.PathValue("id"), app.IntakeFlags{
			PrepComplete:           req.PrepComplete,
			PhotosComplete:         req.PhotosComplete,
			AgreementSigned:        req.AgreementSigned,
			WalkaroundComplete:     req.WalkaroundComplete,
			WalkaroundAcknowledged: req.WalkaroundAcknowledged,
		}, req.Actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	}
}

// HandleAssignVehicle returns an HTTP handler for vehicle assignment.
func HandleAssignVehicle(svc VehicleAssigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignVehicleRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := svc.AssignVehicle(r.Context(), r.PathValue("id"), req.VehicleID, req.Actor); err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	}
}

type createBookingRequest struct {
	VehicleID          string `json:"vehicle_id"`
	CustomerID         string `json:"customer_id"`
	StartAt            string `json:"start_at"`
	EndAt              string `json:"end_at"`
	TotalAmountCents   int64  `json:"total_amount_cents"`
	DepositAmountCents int64  `json:"deposit_amount_cents"`
	Actor              string `json:"actor"`
}

type transitionRequest struct {
	Target string `json:"target"`
	Actor  string `json:"actor"`
	Notes  string `json:"notes,omitempty"`
}

type intakeRequest struct {
	PrepComplete           *bool  `json:"prep_complete,omitempty"`
	PhotosComplete         *bool  `json:"photos_complete,omitempty"`
	AgreementSigned        *bool  `json:"agreement_signed,omitempty"`
	WalkaroundComplete     *bool  `json:"walkaround_complete,omitempty"`
	WalkaroundAcknowledged *bool  `json:"walkaround_acknowledged,omitempty"`
	Actor                  string `json:"actor"`
}

type assignVehicleRequest struct {
	VehicleID string `json:"vehicle_id"`
	Actor     string `json:"actor"`
}

type nextStepResponse struct {
	Ready bool          `json:"ready"`
	Step  *stepResponse `json:"step,omitempty"`
}

type stepResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type checklistItemResponse struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Required bool   `json:"required"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type bookingPayload struct {
	ID                    string     `json:"id"`
	Code                  string     `json:"code"`
	VehicleID             string     `json:"vehicle_id,omitempty"`
	CustomerID            string     `json:"customer_id"`
	Status                string     `json:"status"`
	StartAt               time.Time  `json:"start_at"`
	EndAt                 time.Time  `json:"end_at"`
	ActualReturnAt        *time.Time `json:"actual_return_at,omitempty"`
	TotalAmountCents      int64      `json:"total_amount_cents"`
	DepositAmountCents    int64      `json:"deposit_amount_cents"`
	DepositStatus         string     `json:"deposit_status,omitempty"`
	ReturnIsException     bool       `json:"return_is_exception"`
	ReturnExceptionReason string     `json:"return_exception_reason,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

func toBookingResponse(b domain.Booking) bookingPayload {
	return bookingPayload{
		ID:                    b.ID,
		Code:                  b.Code,
		VehicleID:             b.VehicleID,
		CustomerID:            b.CustomerID,
		Status:                string(b.Status),
		StartAt:               b.StartAt,
		EndAt:                 b.EndAt,
		ActualReturnAt:        b.ActualReturnAt,
		TotalAmountCents:      b.TotalAmountCents,
		DepositAmountCents:    b.DepositAmountCents,
		DepositStatus:         b.DepositStatus,
		ReturnIsException:     b.ReturnIsException,
		ReturnExceptionReason: b.ReturnExceptionReason,
		CreatedAt:             b.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// parseWindow parses a start/end pair of RFC3339 timestamps. Ordering is
// validated by the services; only the format is checked here.
func parseWindow(start, end string) (time.Time, time.Time, error) {
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, errors.New("start_at and end_at are required")
	}
	startAt, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start_at format")
	}
	endAt, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end_at format")
	}
	return startAt, endAt, nil
}
