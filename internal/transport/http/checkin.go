package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// CheckInCompleter is the minimal interface needed to score a check-in.
type CheckInCompleter interface {
	CompleteCheckIn(ctx context.Context, in app.CompleteCheckInInput) (domain.CheckInRecord, error)
}

// HandleCheckIn returns an HTTP handler for completing the check-in on a
// booking. Arrival time is optional; its absence records a no-show.
func HandleCheckIn(svc CheckInCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkInRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.CompleteCheckInInput{
			BookingID: r.PathValue("id"),
			Actor:     req.Actor,
		}

		arrival, err := parseOptionalTime(req.ArrivalTime)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid arrival_time format")
			return
		}
		in.ArrivalTime = arrival

		if in.DateOfBirth, err = parseOptionalDate(req.DateOfBirth); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid date_of_birth format")
			return
		}
		if in.LicenseExpiresAt, err = parseOptionalDate(req.LicenseExpiresAt); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid license_expires_at format")
			return
		}

		for _, v := range req.Validations {
			in.Validations = append(in.Validations, domain.Validation{
				Name:     v.Name,
				Label:    v.Label,
				Required: v.Required,
				Passed:   v.Passed,
			})
		}

		record, err := svc.CompleteCheckIn(r.Context(), in)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, checkInResponse{
			BookingID:          record.BookingID,
			CheckInStatus:      string(record.CheckInStatus),
			TimingStatus:       string(record.TimingStatus),
			BlockedReason:      record.BlockedReason,
			IdentityVerified:   record.IdentityVerified,
			LicenseVerified:    record.LicenseVerified,
			LicenseNameMatches: record.LicenseNameMatches,
			AgeVerified:        record.AgeVerified,
			ArrivalTime:        record.ArrivalTime,
		})
	}
}

type checkInRequest struct {
	Actor            string              `json:"actor"`
	ArrivalTime      string              `json:"arrival_time,omitempty"`
	DateOfBirth      string              `json:"date_of_birth,omitempty"`
	LicenseExpiresAt string              `json:"license_expires_at,omitempty"`
	Validations      []validationRequest `json:"validations,omitempty"`
}

type validationRequest struct {
	Name     string `json:"name"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required"`
	Passed   bool   `json:"passed"`
}

type checkInResponse struct {
	BookingID          string     `json:"booking_id"`
	CheckInStatus      string     `json:"check_in_status"`
	TimingStatus       string     `json:"timing_status"`
	BlockedReason      string     `json:"blocked_reason,omitempty"`
	IdentityVerified   bool       `json:"identity_verified"`
	LicenseVerified    bool       `json:"license_verified"`
	LicenseNameMatches bool       `json:"license_name_matches"`
	AgeVerified        bool       `json:"age_verified"`
	ArrivalTime        *time.Time `json:"arrival_time,omitempty"`
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseOptionalDate accepts calendar dates, for fields like date of birth
// where a time of day carries no meaning.
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
