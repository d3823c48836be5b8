package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mapsensemedia/betterrental-sub002/internal/app"
	"github.com/mapsensemedia/betterrental-sub002/internal/domain"
)

func TestHandleDeposit_Ledger(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := &stubDepositService{entries: []domain.DepositEntry{
		{ID: "e1", BookingID: "bk-1", Action: domain.DepositActionHold, AmountCents: 50000, Category: domain.DepositCategoryAuthorization, CreatedAt: now},
		{ID: "e2", BookingID: "bk-1", Action: domain.DepositActionWithhold, AmountCents: 7500, Category: domain.DepositCategoryDamage, CreatedAt: now.Add(time.Hour)},
		{ID: "e3", BookingID: "bk-1", Action: domain.DepositActionRelease, AmountCents: 57500, Category: domain.DepositCategoryManual, CreatedAt: now.Add(2 * time.Hour)},
	}}

	req := httptest.NewRequest(http.MethodGet, "/bookings/bk-1/deposit", nil)
	req.SetPathValue("id", "bk-1")
	rec := httptest.NewRecorder()

	HandleDeposit(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp depositLedgerResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.BalanceCents != 0 {
		t.Fatalf("expected folded balance 0, got %d", resp.BalanceCents)
	}
	if len(resp.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(resp.Entries))
	}
}

func TestHandleDeposit_Append(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		serviceErr     error
		expectedStatus int
	}{
		{
			name:           "success",
			body:           `{"action":"release","amount_cents":50000,"reason":"return complete","actor":"staff-1"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid amount",
			body:           `{"action":"release","amount_cents":0,"actor":"staff-1"}`,
			serviceErr:     domain.ErrInvalidAmount,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "actor required",
			body:           `{"action":"release","amount_cents":100}`,
			serviceErr:     domain.ErrActorRequired,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubDepositService{
				entry: domain.DepositEntry{ID: "e1", Action: domain.DepositActionRelease, AmountCents: 50000},
				err:   tt.serviceErr,
			}
			req := httptest.NewRequest(http.MethodPost, "/bookings/bk-1/deposit", bytes.NewBufferString(tt.body))
			req.SetPathValue("id", "bk-1")
			rec := httptest.NewRecorder()

			HandleDeposit(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleDeposit_DefaultsManualCategory(t *testing.T) {
	t.Parallel()

	svc := &stubDepositService{entry: domain.DepositEntry{ID: "e1"}}
	body := `{"action":"release","amount_cents":100,"actor":"staff-1"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/bk-1/deposit", bytes.NewBufferString(body))
	req.SetPathValue("id", "bk-1")
	rec := httptest.NewRecorder()

	HandleDeposit(svc).ServeHTTP(rec, req)

	if svc.appendIn.Category != domain.DepositCategoryManual {
		t.Fatalf("expected manual category default, got %q", svc.appendIn.Category)
	}
}

func TestHandleRecordDamage(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		svc := &stubDepositService{}
		body := `{"severity":"moderate","description":"door dent","estimated_cost_cents":18000,"actor":"staff-1"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings/bk-1/damage", bytes.NewBufferString(body))
		req.SetPathValue("id", "bk-1")
		rec := httptest.NewRecorder()

		HandleRecordDamage(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.damageIn.Severity != domain.DamageSeverityModerate {
			t.Fatalf("expected severity forwarded, got %q", svc.damageIn.Severity)
		}
	})

	t.Run("missing severity", func(t *testing.T) {
		t.Parallel()
		svc := &stubDepositService{}
		req := httptest.NewRequest(http.MethodPost, "/bookings/bk-1/damage", bytes.NewBufferString(`{"actor":"staff-1"}`))
		req.SetPathValue("id", "bk-1")
		rec := httptest.NewRecorder()

		HandleRecordDamage(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("booking not returned", func(t *testing.T) {
		t.Parallel()
		svc := &stubDepositService{err: &domain.IllegalTransitionError{From: domain.BookingStatusPending, To: domain.BookingStatusPending}}
		body := `{"severity":"minor","actor":"staff-1"}`
		req := httptest.NewRequest(http.MethodPost, "/bookings/bk-1/damage", bytes.NewBufferString(body))
		req.SetPathValue("id", "bk-1")
		rec := httptest.NewRecorder()

		HandleRecordDamage(svc).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status 409, got %d", rec.Code)
		}
	})
}

func TestHandleSettleFuel(t *testing.T) {
	t.Parallel()

	svc := &stubDepositService{fuelCharge: 5000}
	body := `{"pickup_fuel_level":1.0,"return_fuel_level":0.6,"actor":"staff-1"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/bk-1/fuel", bytes.NewBufferString(body))
	req.SetPathValue("id", "bk-1")
	rec := httptest.NewRecorder()

	HandleSettleFuel(svc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"withheld_cents":5000`) {
		t.Fatalf("expected withheld amount, got %q", rec.Body.String())
	}
}

type stubDepositService struct {
	entries    []domain.DepositEntry
	entry      domain.DepositEntry
	appendIn   app.AppendEntryInput
	damageIn   app.RecordDamageInput
	fuelCharge int64
	err        error
}

func (s *stubDepositService) Append(_ context.Context, in app.AppendEntryInput) (domain.DepositEntry, error) {
	s.appendIn = in
	return s.entry, s.err
}

func (s *stubDepositService) Entries(_ context.Context, _ string) ([]domain.DepositEntry, error) {
	return s.entries, s.err
}

func (s *stubDepositService) Balance(_ context.Context, _ string) (int64, error) {
	return domain.FoldDepositBalance(s.entries), s.err
}

func (s *stubDepositService) RecordDamage(_ context.Context, in app.RecordDamageInput) error {
	s.damageIn = in
	return s.err
}

func (s *stubDepositService) SettleFuel(_ context.Context, _ app.SettleFuelInput) (int64, error) {
	return s.fuelCharge, s.err
}
