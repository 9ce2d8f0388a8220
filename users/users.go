// Package users holds the wire model for user profiles as the claims
// backend returns them, with the role shape normalized at the decode
// boundary.
package users

import (
	"encoding/json"
	"time"
)

// Department is the optional department block attached to staff profiles.
type Department struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
	Type string `json:"departmentType,omitempty"`
}

// Profile is a user record as returned by the backend. It is immutable from
// the client's perspective: the only mutation is wholesale replacement on
// login, signup, refresh, or a profile update round-trip.
type Profile struct {
	ID        int64  `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	Phone     string `json:"phoneNumber,omitempty"`
	Status    string `json:"status,omitempty"`

	// Role is the canonical role, resolved once during decoding from the
	// roles list or the singular role field. Roles keeps the server's raw
	// list for display purposes.
	Role  Role     `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`

	// Role-specific optionals.
	MedicalLicenseNumber  string `json:"medicalLicenseNumber,omitempty"`
	Specialty             string `json:"specialty,omitempty"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber,omitempty"`

	Department  *Department `json:"department,omitempty"`
	Permissions []string    `json:"permissions,omitempty"`
	LastLoginAt *time.Time  `json:"lastLoginAt,omitempty"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
}

// profileAlias avoids UnmarshalJSON recursion.
type profileAlias Profile

// UnmarshalJSON decodes a profile and resolves the role exactly once.
// The backend sends either a roles list, a singular role string, or neither;
// downstream code only ever sees the canonical Role value.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var alias profileAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*p = Profile(alias)
	p.Role = ResolveRole(p.Roles, string(alias.Role))
	return nil
}

// DisplayName returns the best available human-readable name.
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.Username != "":
		return p.Username
	}
	return p.Email
}

// HasRole reports whether the server's raw roles list contains the given
// role, falling back to the canonical role when the list is empty.
func (p *Profile) HasRole(role Role) bool {
	if len(p.Roles) == 0 {
		return p.Role == role
	}
	for _, raw := range p.Roles {
		if r, ok := ParseRole(raw); ok && r == role {
			return true
		}
	}
	return false
}
