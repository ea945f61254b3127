package store

import "github.com/mams-ops/apiserver/types"

// DemoAccount pairs a seed user with its demo password. The password is
// hashed before it ever reaches a repository.
type DemoAccount struct {
	Password string
	User     types.User
}

// DemoAccounts returns the accounts seeded into a fresh deployment.
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{
			Password: "admin123",
			User: types.User{
				Username:  "admin",
				Role:      types.RoleAdmin,
				FirstName: "System",
				LastName:  "Administrator",
			},
		},
		{
			Password: "cmd123",
			User: types.User{
				Username:  "commander1",
				Role:      types.RoleBaseCommander,
				BaseID:    "1",
				BaseName:  "Fort Liberty",
				FirstName: "John",
				LastName:  "Mitchell",
			},
		},
		{
			Password: "log123",
			User: types.User{
				Username:  "logistics1",
				Role:      types.RoleLogisticsOfficer,
				BaseID:    "1",
				BaseName:  "Fort Liberty",
				FirstName: "Sarah",
				LastName:  "Chen",
			},
		},
	}
}

// DemoPurchases returns the purchase records seeded into the memory backend.
func DemoPurchases() []types.Purchase {
	return []types.Purchase{
		{
			ID:           "PUR-001",
			AssetType:    "M4A1 Rifle",
			Quantity:     50,
			PurchaseDate: "2025-06-10",
			Supplier:     "Defense Systems Corp",
			Base:         "Fort Liberty",
			UnitCost:     850,
			TotalCost:    42500,
			Status:       types.PurchaseStatusDelivered,
			RequestedBy:  "John Mitchell",
		},
		{
			ID:           "PUR-002",
			AssetType:    "Body Armor Vest",
			Quantity:     100,
			PurchaseDate: "2025-06-08",
			Supplier:     "Tactical Solutions Inc",
			Base:         "Fort Liberty",
			UnitCost:     320,
			TotalCost:    32000,
			Status:       types.PurchaseStatusApproved,
			RequestedBy:  "Sarah Chen",
		},
		{
			ID:           "PUR-003",
			AssetType:    "Night Vision Goggles",
			Quantity:     25,
			PurchaseDate: "2025-06-05",
			Supplier:     "OpTech Industries",
			Base:         "Camp Pendleton",
			UnitCost:     2800,
			TotalCost:    70000,
			Status:       types.PurchaseStatusPending,
			RequestedBy:  "Mike Rodriguez",
		},
	}
}

// DemoTransfers returns the transfer records seeded into the memory backend.
func DemoTransfers() []types.Transfer {
	return []types.Transfer{
		{
			ID:           "TXF-001",
			AssetType:    "Humvee Vehicle",
			Quantity:     3,
			FromBase:     "Camp Pendleton",
			ToBase:       "Fort Liberty",
			TransferDate: "2025-06-09",
			Status:       types.TransferStatusInTransit,
			RequestedBy:  "Mike Rodriguez",
			ApprovedBy:   "John Mitchell",
		},
		{
			ID:           "TXF-002",
			AssetType:    "Communication Radio",
			Quantity:     15,
			FromBase:     "Fort Liberty",
			ToBase:       "Joint Base Lewis",
			TransferDate: "2025-06-07",
			Status:       types.TransferStatusCompleted,
			RequestedBy:  "Sarah Chen",
			ApprovedBy:   "John Mitchell",
		},
	}
}

// DemoAssignments returns the assignment records seeded into the memory backend.
func DemoAssignments() []types.Assignment {
	return []types.Assignment{
		{
			ID:             "ASG-001",
			AssetType:      "M4A1 Rifle",
			Quantity:       1,
			AssignedTo:     "Sgt. James Wilson",
			AssignedBy:     "John Mitchell",
			AssignmentDate: "2025-06-08",
			Base:           "Fort Liberty",
			Purpose:        "Training Exercise",
			Status:         types.AssignmentStatusActive,
		},
		{
			ID:             "ASG-002",
			AssetType:      "Body Armor Vest",
			Quantity:       25,
			AssignedTo:     "Alpha Company",
			AssignedBy:     "Sarah Chen",
			AssignmentDate: "2025-06-07",
			Base:           "Fort Liberty",
			Purpose:        "Deployment Preparation",
			Status:         types.AssignmentStatusActive,
		},
	}
}

// DemoExpenditures returns the expenditure records seeded into the memory backend.
func DemoExpenditures() []types.Expenditure {
	return []types.Expenditure{
		{
			ID:              "EXP-001",
			AssetType:       "Ammunition 5.56",
			Quantity:        1000,
			ExpendedBy:      "Training Command",
			ExpenditureDate: "2025-06-06",
			Base:            "Fort Liberty",
			Purpose:         "Live Fire Exercise",
			Justification:   "Mandatory quarterly training requirements",
		},
	}
}
