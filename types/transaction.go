package types

import "time"

// PurchaseStatus tracks the procurement lifecycle of a purchase request.
// Status is fixed at creation; transitions are applied by later approval
// tooling, not by this API.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusApproved  PurchaseStatus = "approved"
	PurchaseStatusDelivered PurchaseStatus = "delivered"
)

// TransferStatus tracks a transfer between two bases.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusInTransit TransferStatus = "in_transit"
	TransferStatusCompleted TransferStatus = "completed"
)

// AssignmentStatus tracks whether assigned assets are still out.
type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "active"
	AssignmentStatusReturned AssignmentStatus = "returned"
)

// Purchase is a procurement request for new assets at a base.
type Purchase struct {
	// ID is the human-readable identifier, formatted as PUR-NNN.
	ID string `json:"id" db:"id"`

	// AssetType is the kind of asset being purchased.
	AssetType string `json:"asset_type" db:"asset_type"`

	// Quantity is the number of units requested.
	Quantity int `json:"quantity" db:"quantity"`

	// PurchaseDate is the requested procurement date (YYYY-MM-DD).
	PurchaseDate string `json:"purchase_date" db:"purchase_date"`

	// Supplier is the vendor fulfilling the purchase.
	Supplier string `json:"supplier" db:"supplier"`

	// Base is the base of record that will receive the assets.
	Base string `json:"base" db:"base"`

	// UnitCost is the cost per unit in dollars.
	UnitCost float64 `json:"unit_cost" db:"unit_cost"`

	// TotalCost is Quantity * UnitCost, computed at creation.
	TotalCost float64 `json:"total_cost" db:"total_cost"`

	// Status is the procurement status. New purchases start pending.
	Status PurchaseStatus `json:"status" db:"status"`

	// RequestedBy is the display name of the requesting user.
	RequestedBy string `json:"requested_by" db:"requested_by"`

	// CreatedAt is the timestamp when the record was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Transfer moves assets between two bases. It is visible to both the
// source and the destination base.
type Transfer struct {
	// ID is the human-readable identifier, formatted as TXF-NNN.
	ID string `json:"id" db:"id"`

	// AssetType is the kind of asset being moved.
	AssetType string `json:"asset_type" db:"asset_type"`

	// Quantity is the number of units moved.
	Quantity int `json:"quantity" db:"quantity"`

	// FromBase is the sending base.
	FromBase string `json:"from_base" db:"from_base"`

	// ToBase is the receiving base.
	ToBase string `json:"to_base" db:"to_base"`

	// TransferDate is the scheduled movement date (YYYY-MM-DD).
	TransferDate string `json:"transfer_date" db:"transfer_date"`

	// Status is the movement status. New transfers start pending.
	Status TransferStatus `json:"status" db:"status"`

	// RequestedBy is the display name of the requesting user.
	RequestedBy string `json:"requested_by" db:"requested_by"`

	// ApprovedBy is the display name of the approving commander, if any.
	ApprovedBy string `json:"approved_by,omitempty" db:"approved_by"`

	// Notes is free-text context for the transfer.
	Notes string `json:"notes,omitempty" db:"notes"`

	// CreatedAt is the timestamp when the record was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Assignment hands assets to personnel or a unit at a base.
type Assignment struct {
	// ID is the human-readable identifier, formatted as ASG-NNN.
	ID string `json:"id" db:"id"`

	// AssetType is the kind of asset assigned.
	AssetType string `json:"asset_type" db:"asset_type"`

	// Quantity is the number of units assigned.
	Quantity int `json:"quantity" db:"quantity"`

	// AssignedTo is the receiving person or unit.
	AssignedTo string `json:"assigned_to" db:"assigned_to"`

	// AssignedBy is the display name of the issuing user.
	AssignedBy string `json:"assigned_by" db:"assigned_by"`

	// AssignmentDate is the hand-over date (YYYY-MM-DD).
	AssignmentDate string `json:"assignment_date" db:"assignment_date"`

	// Base is the base of record for the assignment.
	Base string `json:"base" db:"base"`

	// Purpose is the stated reason for the assignment.
	Purpose string `json:"purpose" db:"purpose"`

	// Status is active until the assets are returned.
	Status AssignmentStatus `json:"status" db:"status"`

	// CreatedAt is the timestamp when the record was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expenditure records assets consumed and removed from inventory.
type Expenditure struct {
	// ID is the human-readable identifier, formatted as EXP-NNN.
	ID string `json:"id" db:"id"`

	// AssetType is the kind of asset expended.
	AssetType string `json:"asset_type" db:"asset_type"`

	// Quantity is the number of units consumed.
	Quantity int `json:"quantity" db:"quantity"`

	// ExpendedBy is the unit or command that consumed the assets.
	ExpendedBy string `json:"expended_by" db:"expended_by"`

	// ExpenditureDate is the consumption date (YYYY-MM-DD).
	ExpenditureDate string `json:"expenditure_date" db:"expenditure_date"`

	// Base is the base of record for the expenditure.
	Base string `json:"base" db:"base"`

	// Purpose is the stated reason for the expenditure.
	Purpose string `json:"purpose" db:"purpose"`

	// Justification is the free-text justification supplied on entry.
	Justification string `json:"justification" db:"justification"`

	// CreatedAt is the timestamp when the record was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
