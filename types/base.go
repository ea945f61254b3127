package types

// Base is a named physical installation. Non-global roles see only the
// records owned by their base.
type Base struct {
	// ID is the unique identifier of the base.
	ID string `json:"id" db:"id"`

	// Name is the display name of the base (e.g., "Fort Liberty").
	Name string `json:"name" db:"name"`
}

// DefaultBases are the installations seeded into a fresh deployment.
var DefaultBases = []Base{
	{ID: "1", Name: "Fort Liberty"},
	{ID: "2", Name: "Camp Pendleton"},
	{ID: "3", Name: "Joint Base Lewis"},
}
