// Package authz decides whether a profile may access a protected view.
//
// The decision is pure and stateless: it is re-evaluated on every request
// because the session or the role behind it can change between requests.
package authz

import "github.com/mams-ops/apiserver/types"

// Decision is the outcome of an access check.
type Decision int

const (
	// Allow grants access to the requested view.
	Allow Decision = iota

	// RedirectLogin means no authenticated profile was presented for a
	// protected view. The caller should be sent to the login view,
	// carrying the originally requested location.
	RedirectLogin

	// RedirectUnauthorized means the profile is authenticated but its
	// role is not in the view's capability set.
	RedirectUnauthorized
)

// String implements fmt.Stringer for log output.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Decide evaluates access for the given profile against a capability set.
// A nil profile means no session. An empty required set protects the view
// against anonymous access only; any authenticated role is allowed.
func Decide(profile *types.User, required []types.Role) Decision {
	if profile == nil {
		return RedirectLogin
	}
	if len(required) == 0 {
		return Allow
	}
	for _, role := range required {
		if profile.Role == role {
			return Allow
		}
	}
	return RedirectUnauthorized
}
