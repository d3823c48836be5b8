package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

// DepositLedger is the minimal interface needed for the deposit endpoints.
type DepositLedger interface {
	Append(ctx context.Context, in app.AppendEntryInput) (domain.DepositEntry, error)
	Entries(ctx context.Context, bookingID string) ([]domain.DepositEntry, error)
	Balance(ctx context.Context, bookingID string) (int64, error)
}

// DamageRecorder is the minimal interface needed to file a damage report.
type DamageRecorder interface {
	RecordDamage(ctx context.Context, in app.RecordDamageInput) error
}

// FuelSettler is the minimal interface needed to settle fuel on return.
type FuelSettler interface {
	SettleFuel(ctx context.Context, in app.SettleFuelInput) (int64, error)
}

// HandleDeposit returns an HTTP handler serving the deposit ledger: GET
// reads entries plus the folded balance, POST appends a manual entry.
func HandleDeposit(svc DepositLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookingID := r.PathValue("id")

		switch r.Method {
		case http.MethodGet:
			entries, err := svc.Entries(r.Context(), bookingID)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			resp := depositLedgerResponse{
				BalanceCents: domain.FoldDepositBalance(entries),
				Entries:      make([]depositEntryResponse, 0, len(entries)),
			}
			for _, e := range entries {
				resp.Entries = append(resp.Entries, toDepositEntryResponse(e))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req appendEntryRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			category := domain.DepositCategory(req.Category)
			if category == "" {
				category = domain.DepositCategoryManual
			}
			entry, err := svc.Append(r.Context(), app.AppendEntryInput{
				BookingID:   bookingID,
				Action:      domain.DepositAction(req.Action),
				AmountCents: req.AmountCents,
				Reason:      req.Reason,
				Category:    category,
				Actor:       req.Actor,
			})
			if err != nil {
				writeServiceError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, toDepositEntryResponse(entry))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleRecordDamage returns an HTTP handler for filing a damage report
// against a booking.
func HandleRecordDamage(svc DamageRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordDamageRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.Severity == "" {
			writeError(w, http.StatusBadRequest, codeMissingField, "severity is required")
			return
		}

		err := svc.RecordDamage(r.Context(), app.RecordDamageInput{
			BookingID:          r.PathValue("id"),
			Severity:           domain.DamageSeverity(req.Severity),
			Description:        req.Description,
			EstimatedCostCents: req.EstimatedCostCents,
			Actor:              req.Actor,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
	}
}

// HandleSettleFuel returns an HTTP handler for the return-time fuel
// settlement.
func HandleSettleFuel(svc FuelSettler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settleFuelRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		charged, err := svc.SettleFuel(r.Context(), app.SettleFuelInput{
			BookingID:       r.PathValue("id"),
			PickupFuelLevel: req.PickupFuelLevel,
			ReturnFuelLevel: req.ReturnFuelLevel,
			Actor:           req.Actor,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, settleFuelResponse{WithheldCents: charged})
	}
}

type appendEntryRequest struct {
	Action      string `json:"action"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason,omitempty"`
	Category    string `json:"category,omitempty"`
	Actor       string `json:"actor"`
}

type recordDamageRequest struct {
	Severity           string `json:"severity"`
	Description        string `json:"description,omitempty"`
	EstimatedCostCents int64  `json:"estimated_cost_cents,omitempty"`
	Actor              string `json:"actor"`
}

type settleFuelRequest struct {
	PickupFuelLevel float64 `json:"pickup_fuel_level"`
	ReturnFuelLevel float64 `json:"return_fuel_level"`
	Actor           string  `json:"actor"`
}

type settleFuelResponse struct {
	WithheldCents int64 `json:"withheld_cents"`
}

type depositLedgerResponse struct {
	BalanceCents int64                  `json:"balance_cents"`
	Entries      []depositEntryResponse `json:"entries"`
}

type depositEntryResponse struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	Action      string    `json:"action"`
	AmountCents int64     `json:"amount_cents"`
	Reason      string    `json:"reason,omitempty"`
	Category    string    `json:"category"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDepositEntryResponse(e domain.DepositEntry) depositEntryResponse {
	return depositEntryResponse{
		ID:          e.ID,
		BookingID:   e.BookingID,
		Action:      string(e.Action),
		AmountCents: e.AmountCents,
		Reason:      e.Reason,
		Category:    string(e.Category),
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}
