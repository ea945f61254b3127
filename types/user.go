package types

import "time"

// Role is the authorization level of an account.
type Role string

const (
	// RoleAdmin has global visibility across every base.
	RoleAdmin Role = "admin"

	// RoleBaseCommander manages a single base, including assignments
	// and expenditures recorded there.
	RoleBaseCommander Role = "base_commander"

	// RoleLogisticsOfficer records purchases and transfers for its base.
	// This is the default role for self-registered accounts.
	RoleLogisticsOfficer Role = "logistics_officer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBaseCommander, RoleLogisticsOfficer:
		return true
	}
	return false
}

// User represents an account in the system.
// It contains identity, role, and base assignment.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Role indicates the user's authorization level within the system.
	Role Role `json:"role" db:"role"`

	// BaseID is the identifier of the base the user is assigned to.
	// Admins have no base; their scope is global.
	BaseID string `json:"base_id,omitempty" db:"base_id"`

	// BaseName is the display name of the assigned base. Record
	// visibility for non-admin roles is decided against this field.
	BaseName string `json:"base_name,omitempty" db:"base_name"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent account update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the user's display name.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
