// Package dashboard selects and fetches the role-specific dashboard views.
package dashboard

import "github.com/medsure/claims-client/users"

// ID identifies a dashboard view.
type ID string

const (
	PatientDashboard           ID = "patient_dashboard"
	DoctorDashboard            ID = "doctor_dashboard"
	AdminDashboard             ID = "admin_dashboard"
	InsuranceProviderDashboard ID = "insurance_provider_dashboard"
)

// ForRole maps a role to its dashboard. Anything unrecognized lands on the
// patient dashboard; routing never fails.
func ForRole(role users.Role) ID {
	switch role {
	case users.RoleDoctor:
		return DoctorDashboard
	case users.RoleAdmin:
		return AdminDashboard
	case users.RoleInsuranceProvider:
		return InsuranceProviderDashboard
	default:
		return PatientDashboard
	}
}

// ForUser picks the dashboard for a user. A nil user routes to the patient
// dashboard, the same default an unrecognized role gets. The role shape
// (roles list vs singular field, mixed case) was already normalized when the
// profile was decoded, so there is exactly one switch here.
func ForUser(user *users.Profile) ID {
	if user == nil {
		return PatientDashboard
	}
	return ForRole(user.Role)
}
