package domain

import "time"

type DepositAction string

const (
	DepositActionHold     DepositAction = "hold"
	DepositActionWithhold DepositAction = "withhold"
	DepositActionRelease  DepositAction = "release"
)

type DepositCategory string

const (
	DepositCategoryAuthorization DepositCategory = "authorization"
	DepositCategoryDamage        DepositCategory = "damage"
	DepositCategoryFuel          DepositCategory = "fuel"
	DepositCategoryManual        DepositCategory = "manual"
)

// DepositEntry is one row of the append-only deposit ledger. Entries are
// never updated or deleted; the current deposit state of a booking is the
// fold of its entries in creation order.
type DepositEntry struct {
	ID          string
	BookingID   string
	Action      DepositAction
	AmountCents int64
	Reason      string
	Category    DepositCategory
	CreatedBy   string
	CreatedAt   time.Time
}

// FoldDepositBalance derives the current balance from entries in the order
// given: hold and withhold add, release subtracts. Replaying the same
// sequence always yields the same value.
func FoldDepositBalance(entries []DepositEntry) int64 {
	var balance int64
	for _, e := range entries {
		switch e.Action {
		case DepositActionHold, DepositActionWithhold:
			balance += e.AmountCents
		case DepositActionRelease:
			balance -= e.AmountCents
		}
	}
	return balance
}

type DamageSeverity string

const (
	DamageSeverityMinor    DamageSeverity = "minor"
	DamageSeverityModerate DamageSeverity = "moderate"
	DamageSeveritySevere   DamageSeverity = "severe"
)
