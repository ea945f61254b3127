package services

import (
	"context"
	"testing"

	"github.com/mams-ops/apiserver/internal/scope"
	"github.com/mams-ops/apiserver/internal/store"
	"github.com/mams-ops/apiserver/types"
)

var (
	testAdmin     = types.User{ID: 1, Username: "admin", Role: types.RoleAdmin, FirstName: "System", LastName: "Administrator"}
	testCommander = types.User{ID: 2, Username: "commander1", Role: types.RoleBaseCommander, BaseName: "Fort Liberty", FirstName: "John", LastName: "Mitchell"}
	testLogistics = types.User{ID: 3, Username: "logistics1", Role: types.RoleLogisticsOfficer, BaseName: "Fort Liberty", FirstName: "Sarah", LastName: "Chen"}
)

func newPurchaseService() *PurchaseService {
	return NewPurchaseService(store.NewMemoryPurchaseRepository(), NewEventPublisher(nil, nil))
}

func TestPurchaseCreateForcesBaseForScopedRoles(t *testing.T) {
	svc := newPurchaseService()
	ctx := context.Background()

	purchase, err := svc.Create(ctx, testLogistics, CreatePurchaseInput{
		AssetType:    "Field Radio",
		Quantity:     10,
		PurchaseDate: "2025-07-01",
		Supplier:     "CommTech",
		Base:         "Camp Pendleton",
		UnitCost:     150,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if purchase.Base != "Fort Liberty" {
		t.Fatalf("base = %s, want caller's own base", purchase.Base)
	}
	if purchase.Status != types.PurchaseStatusPending {
		t.Fatalf("status = %s, want pending", purchase.Status)
	}
	if purchase.RequestedBy != "Sarah Chen" {
		t.Fatalf("requested by = %s", purchase.RequestedBy)
	}
	if purchase.TotalCost != 1500 {
		t.Fatalf("total cost = %v, want 1500", purchase.TotalCost)
	}
}

func TestPurchaseCreateAdminMayChooseBase(t *testing.T) {
	svc := newPurchaseService()
	ctx := context.Background()

	purchase, err := svc.Create(ctx, testAdmin, CreatePurchaseInput{
		AssetType:    "Generator",
		Quantity:     2,
		PurchaseDate: "2025-07-01",
		Supplier:     "PowerCo",
		Base:         "Camp Pendleton",
		UnitCost:     5000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if purchase.Base != "Camp Pendleton" {
		t.Fatalf("admin base = %s, want Camp Pendleton", purchase.Base)
	}

	// An admin without an explicit base falls back to its own, which is
	// empty for the global admin.
	fallback, err := svc.Create(ctx, testAdmin, CreatePurchaseInput{
		AssetType:    "Generator",
		Quantity:     1,
		PurchaseDate: "2025-07-01",
		Supplier:     "PowerCo",
		UnitCost:     5000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if fallback.Base != "" {
		t.Fatalf("fallback base = %q", fallback.Base)
	}
}

func TestPurchaseListIsScoped(t *testing.T) {
	svc := newPurchaseService()
	ctx := context.Background()

	all, err := svc.List(ctx, testAdmin, scope.Query{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("admin list = %d records, want 3", len(all))
	}

	scoped, err := svc.List(ctx, testCommander, scope.Query{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, p := range scoped {
		if p.Base != "Fort Liberty" {
			t.Fatalf("commander saw %s at %s", p.ID, p.Base)
		}
	}
	if len(scoped) != 2 {
		t.Fatalf("commander list = %d records, want 2", len(scoped))
	}
}

func TestTransferCreateFixesStatusAndRequester(t *testing.T) {
	svc := NewTransferService(store.NewMemoryTransferRepository(), NewEventPublisher(nil, nil))
	ctx := context.Background()

	transfer, err := svc.Create(ctx, testCommander, CreateTransferInput{
		AssetType:    "Humvee",
		Quantity:     2,
		FromBase:     "Fort Liberty",
		ToBase:       "Camp Pendleton",
		TransferDate: "2025-07-02",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if transfer.Status != types.TransferStatusPending {
		t.Fatalf("status = %s, want pending", transfer.Status)
	}
	if transfer.RequestedBy != "John Mitchell" {
		t.Fatalf("requested by = %s", transfer.RequestedBy)
	}
	if transfer.ID != "TXF-003" {
		t.Fatalf("ID = %s, want TXF-003", transfer.ID)
	}
}

func TestAssignmentCreateRecordsAssigner(t *testing.T) {
	svc := NewAssignmentService(store.NewMemoryAssignmentRepository(), NewEventPublisher(nil, nil))
	ctx := context.Background()

	assignment, err := svc.Create(ctx, testCommander, CreateAssignmentInput{
		AssetType:      "M4A1 Rifle",
		Quantity:       5,
		AssignedTo:     "Bravo Company",
		AssignmentDate: "2025-07-03",
		Base:           "Camp Pendleton",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if assignment.Status != types.AssignmentStatusActive {
		t.Fatalf("status = %s, want active", assignment.Status)
	}
	if assignment.AssignedBy != "John Mitchell" {
		t.Fatalf("assigned by = %s", assignment.AssignedBy)
	}
	if assignment.Base != "Fort Liberty" {
		t.Fatalf("base = %s, want caller's own base", assignment.Base)
	}
}

func TestExpenditureCreateForcesBase(t *testing.T) {
	svc := NewExpenditureService(store.NewMemoryExpenditureRepository(), NewEventPublisher(nil, nil))
	ctx := context.Background()

	expenditure, err := svc.Create(ctx, testLogistics, CreateExpenditureInput{
		AssetType:       "5.56mm Rounds",
		Quantity:        500,
		ExpendedBy:      "Alpha Company",
		ExpenditureDate: "2025-07-04",
		Base:            "Joint Base Lewis",
		Purpose:         "Range Day",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if expenditure.Base != "Fort Liberty" {
		t.Fatalf("base = %s, want caller's own base", expenditure.Base)
	}
	if expenditure.ID != "EXP-002" {
		t.Fatalf("ID = %s, want EXP-002", expenditure.ID)
	}
}
