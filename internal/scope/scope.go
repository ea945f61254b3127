// Package scope narrows record collections to what a profile may see.
//
// One uniform rule: admins see everything, everyone else sees only records
// whose base of record matches their assigned base. Transfers touch two
// bases and are visible from either end. Scoping composes conjunctively
// with the free-text search and status filters, so a record must pass
// every active filter to appear.
package scope

import (
	"strings"

	"github.com/mams-ops/apiserver/types"
)

// Query carries the optional list filters supplied by the caller.
type Query struct {
	// Search is matched case-insensitively as a substring against the
	// record identifier, asset type, and the type-specific counterparty
	// fields. Empty means no search filter.
	Search string

	// Status restricts to a single status value. Empty means all.
	Status string

	// Base is an explicit base filter, honored for admins only; scoped
	// roles are already pinned to their own base.
	Base string
}

// VisibleBase reports whether a record owned by base is visible to u.
func VisibleBase(u types.User, base string) bool {
	return u.Role == types.RoleAdmin || base == u.BaseName
}

// VisibleTransfer reports whether a transfer between fromBase and toBase
// is visible to u.
func VisibleTransfer(u types.User, fromBase, toBase string) bool {
	return u.Role == types.RoleAdmin || fromBase == u.BaseName || toBase == u.BaseName
}

// MatchSearch reports whether any of the fields contains term,
// case-insensitively. An empty term matches everything.
func MatchSearch(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// MatchStatus reports whether status passes the query's status filter.
func MatchStatus(want, status string) bool {
	return want == "" || want == "all" || want == status
}

// MatchBase reports whether base passes the query's explicit base filter.
// Only admins may widen or narrow by base; for everyone else the filter
// is ignored and scoping alone decides.
func MatchBase(u types.User, want, base string) bool {
	if u.Role != types.RoleAdmin {
		return true
	}
	return want == "" || want == "all" || want == base
}

// MatchBaseTransfer is MatchBase for transfers: the filter passes when
// either endpoint is the wanted base, mirroring the visibility rule.
func MatchBaseTransfer(u types.User, want, fromBase, toBase string) bool {
	if u.Role != types.RoleAdmin {
		return true
	}
	return want == "" || want == "all" || want == fromBase || want == toBase
}

// Purchases returns the subset of records visible to u that pass q.
func Purchases(u types.User, records []types.Purchase, q Query) []types.Purchase {
	out := make([]types.Purchase, 0, len(records))
	for _, p := range records {
		if !VisibleBase(u, p.Base) {
			continue
		}
		if !MatchSearch(q.Search, p.ID, p.AssetType, p.Supplier) {
			continue
		}
		if !MatchStatus(q.Status, string(p.Status)) {
			continue
		}
		if !MatchBase(u, q.Base, p.Base) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Transfers returns the subset of records visible to u that pass q.
func Transfers(u types.User, records []types.Transfer, q Query) []types.Transfer {
	out := make([]types.Transfer, 0, len(records))
	for _, t := range records {
		if !VisibleTransfer(u, t.FromBase, t.ToBase) {
			continue
		}
		if !MatchSearch(q.Search, t.ID, t.AssetType, t.FromBase, t.ToBase) {
			continue
		}
		if !MatchStatus(q.Status, string(t.Status)) {
			continue
		}
		if !MatchBaseTransfer(u, q.Base, t.FromBase, t.ToBase) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Assignments returns the subset of records visible to u that pass q.
func Assignments(u types.User, records []types.Assignment, q Query) []types.Assignment {
	out := make([]types.Assignment, 0, len(records))
	for _, a := range records {
		if !VisibleBase(u, a.Base) {
			continue
		}
		if !MatchSearch(q.Search, a.ID, a.AssetType, a.AssignedTo) {
			continue
		}
		if !MatchStatus(q.Status, string(a.Status)) {
			continue
		}
		if !MatchBase(u, q.Base, a.Base) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Expenditures returns the subset of records visible to u that pass q.
// Expenditures carry no status, so only scoping and search apply.
func Expenditures(u types.User, records []types.Expenditure, q Query) []types.Expenditure {
	out := make([]types.Expenditure, 0, len(records))
	for _, e := range records {
		if !VisibleBase(u, e.Base) {
			continue
		}
		if !MatchSearch(q.Search, e.ID, e.AssetType, e.ExpendedBy) {
			continue
		}
		if !MatchBase(u, q.Base, e.Base) {
			continue
		}
		out = append(out, e)
	}
	return out
}
