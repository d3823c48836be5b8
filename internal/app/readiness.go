package app

import "github.com/mapsensemedia/betterrental-sub002/internal/domain"

// BookingSnapshot gathers every boolean the readiness gate needs up front so
// the decision itself is a pure function over one struct.
type BookingSnapshot struct {
	Status                 domain.BookingStatus
	VehicleAssigned        bool
	PrepComplete           bool
	PhotosComplete         bool
	CheckInComplete        bool
	PaymentCollected       bool
	DepositCollected       bool
	AgreementSigned        bool
	WalkaroundComplete     bool
	WalkaroundAcknowledged bool
}

// Step is the single next action required before a booking may advance.
type Step struct {
	ID    string
	Label string
}

const (
	StepConfirmBooking  = "confirm_booking"
	StepAssignVehicle   = "assign_vehicle"
	StepPrepChecklist   = "complete_prep_checklist"
	StepInspectionPhoto = "complete_inspection_photos"
	StepCheckIn         = "complete_check_in"
	StepCollectPayment  = "collect_payment"
	StepCollectDeposit  = "collect_deposit"
	StepSignAgreement   = "sign_agreement"
	StepWalkaround      = "complete_walkaround"
	StepActivateRental  = "activate_rental"
)

// readinessOrder is a design contract, not an incidental default: each step
// operationally depends on the ones before it (a vehicle cannot be
// photographed before it is assigned, a deposit is not collected before
// identity is verified).
var readinessOrder = []struct {
	id    string
	label string
	met   func(BookingSnapshot) bool
}{
	{StepAssignVehicle, "Assign a vehicle", func(s BookingSnapshot) bool { return s.VehicleAssigned }},
	{StepPrepChecklist, "Complete the prep checklist", func(s BookingSnapshot) bool { return s.PrepComplete }},
	{StepInspectionPhoto, "Complete pre-inspection photos", func(s BookingSnapshot) bool { return s.PhotosComplete }},
	{StepCheckIn, "Complete customer check-in", func(s BookingSnapshot) bool { return s.CheckInComplete }},
	{StepCollectPayment, "Collect payment", func(s BookingSnapshot) bool { return s.PaymentCollected }},
	{StepCollectDeposit, "Collect the security deposit", func(s BookingSnapshot) bool { return s.DepositCollected }},
	{StepSignAgreement, "Sign the rental agreement", func(s BookingSnapshot) bool { return s.AgreementSigned }},
	{StepWalkaround, "Complete and acknowledge the walkaround", func(s BookingSnapshot) bool {
		return s.WalkaroundComplete && s.WalkaroundAcknowledged
	}},
}

// NextStep returns the single most relevant action for the booking, or nil
// when no step applies. For pending bookings the only step is confirmation;
// for confirmed bookings it is the first unmet readiness condition, or the
// activation step once all are met. Never mutates anything.
func NextStep(snapshot BookingSnapshot) *Step {
	switch snapshot.Status {
	case domain.BookingStatusPending:
		return &Step{ID: StepConfirmBooking, Label: "Confirm the booking"}
	case domain.BookingStatusConfirmed:
		for _, cond := range readinessOrder {
			if !cond.met(snapshot) {
				return &Step{ID: cond.id, Label: cond.label}
			}
		}
		return &Step{ID: StepActivateRental, Label: "Activate the rental"}
	default:
		return nil
	}
}

// Ready reports whether every pre-activation condition is satisfied.
func Ready(snapshot BookingSnapshot) bool {
	step := NextStep(snapshot)
	return step != nil && step.ID == StepActivateRental
}

type ChecklistItemStatus string

const (
	ChecklistComplete   ChecklistItemStatus = "complete"
	ChecklistIncomplete ChecklistItemStatus = "incomplete"
	ChecklistPending    ChecklistItemStatus = "pending"
)

// ChecklistItem is a read-time projection; it has no persisted lifecycle.
type ChecklistItem struct {
	ID       string
	Status   ChecklistItemStatus
	Required bool
}

// ChecklistItems projects the full intake checklist: satisfied conditions
// are complete, the first unmet one is incomplete, and everything after it
// is pending until its predecessors are dealt with.
func ChecklistItems(snapshot BookingSnapshot) []ChecklistItem {
	items := make([]ChecklistItem, 0, len(readinessOrder))
	blocked := false
	for _, cond := range readinessOrder {
		item := ChecklistItem{ID: cond.id, Required: true}
		switch {
		case cond.met(snapshot):
			item.Status = ChecklistComplete
		case !blocked:
			item.Status = ChecklistIncomplete
			blocked = true
		default:
			item.Status = ChecklistPending
		}
		items = append(items, item)
	}
	return items
}
