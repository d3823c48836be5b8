package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeMissingField        = "missing_required_field"
	codeInvalidWindow       = "invalid_window"
	codeInvalidID           = "invalid_id"
	codeInvalidAmount       = "invalid_amount"
	codeActorRequired       = "actor_required"
	codeVehicleNotFound     = "vehicle_not_found"
	codeBookingNotFound     = "booking_not_found"
	codeHoldNotFound        = "hold_not_found"
	codeHoldExpired         = "hold_expired"
	codeHoldConverted       = "hold_already_converted"
	codeConflict            = "vehicle_conflict"
	codeIllegalTransition   = "illegal_transition"
	codeBookingNotReady     = "booking_not_ready"
	codeDepositUnauthorized = "deposit_not_authorized"
	codeAlertNotFound       = "alert_not_found"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps service-layer errors onto HTTP statuses and codes.
// Structured errors (conflicts, illegal transitions) match their sentinels
// through errors.Is, so the message carries the detail and the code stays
// machine-readable.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrActorRequired):
		writeError(w, http.StatusBadRequest, codeActorRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, codeInvalidWindow, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, codeInvalidAmount, err.Error())
	case errors.Is(err, domain.ErrVehicleNotFound):
		writeError(w, http.StatusNotFound, codeVehicleNotFound, err.Error())
	case errors.Is(err, domain.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, codeBookingNotFound, err.Error())
	case errors.Is(err, domain.ErrHoldNotFound):
		writeError(w, http.StatusNotFound, codeHoldNotFound, err.Error())
	case errors.Is(err, domain.ErrAlertNotFound):
		writeError(w, http.StatusNotFound, codeAlertNotFound, err.Error())
	case errors.Is(err, domain.ErrHoldExpired):
		writeError(w, http.StatusConflict, codeHoldExpired, err.Error())
	case errors.Is(err, domain.ErrHoldAlreadyConverted):
		writeError(w, http.StatusConflict, codeHoldConverted, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		writeError(w, http.StatusConflict, codeIllegalTransition, err.Error())
	case errors.Is(err, domain.ErrBookingNotReady):
		writeError(w, http.StatusConflict, codeBookingNotReady, err.Error())
	case errors.Is(err, domain.ErrDepositNotAuthorized):
		writeError(w, http.StatusConflict, codeDepositUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
