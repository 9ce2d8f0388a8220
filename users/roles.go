package users

import "strings"

// Role represents the type of account a user holds in the claims platform.
type Role string

const (
	RolePatient           Role = "patient"
	RoleDoctor            Role = "doctor"
	RoleAdmin             Role = "admin"
	RoleInsuranceProvider Role = "insurance_provider"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a recognized value.
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin, RoleInsuranceProvider:
		return true
	default:
		return false
	}
}

// ParseRole folds a raw role string into a Role. Matching is
// case-insensitive. The boolean reports whether the input was recognized.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if role.IsValid() {
		return role, true
	}
	return RolePatient, false
}

// ResolveRole picks the effective role from the shapes the backend is known
// to send: a roles list (first entry wins), a singular role field, or nothing
// at all. Unrecognized and absent values both resolve to RolePatient so that
// a malformed user record can never lock someone out of a dashboard.
func ResolveRole(roles []string, role string) Role {
	if len(roles) > 0 {
		r, _ := ParseRole(roles[0])
		return r
	}
	r, _ := ParseRole(role)
	return r
}
