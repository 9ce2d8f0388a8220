package dashboard

// Static fallback aggregates, shown when the dashboard endpoint is
// unreachable. Mirrors the sample data the mobile screens were built
// against.

func samplePatientData() *PatientData {
	return &PatientData{
		ActiveClaims:   3,
		PendingClaims:  2,
		ApprovedClaims: 8,
		TotalClaims:    13,
		RecentClaims: []ClaimSummary{
			{ID: 1, ClaimNumber: "CLM-001", Status: "Under Review", Amount: "$1,250", Date: "2025-10-15"},
			{ID: 2, ClaimNumber: "CLM-002", Status: "Approved", Amount: "$850", Date: "2025-10-14"},
			{ID: 3, ClaimNumber: "CLM-003", Status: "Pending", Amount: "$2,100", Date: "2025-10-13"},
		},
		Notifications: []Notification{
			{ID: 1, Message: "Claim CLM-001 is under review", Type: "info", Date: "2025-10-15"},
			{ID: 2, Message: "Claim CLM-002 has been approved", Type: "success", Date: "2025-10-14"},
		},
	}
}

func sampleDoctorData() *DoctorData {
	return &DoctorData{
		PatientsToday:     8,
		TotalAppointments: 12,
		PendingClaims:     5,
		TotalPatients:     156,
		TodayAppointments: []Appointment{
			{ID: 1, PatientName: "John Doe", Time: "09:00 AM", Type: "Consultation"},
			{ID: 2, PatientName: "Jane Smith", Time: "10:30 AM", Type: "Follow-up"},
			{ID: 3, PatientName: "Mike Johnson", Time: "02:00 PM", Type: "Check-up"},
		},
		PendingVerifications: []ClaimSummary{
			{ID: 1, ClaimNumber: "CLM-001", PatientName: "John Doe", Amount: "$1,250"},
			{ID: 2, ClaimNumber: "CLM-002", PatientName: "Jane Smith", Amount: "$850"},
		},
	}
}

func sampleAdminData() *AdminData {
	return &AdminData{
		TotalUsers:       1247,
		ActiveClaims:     89,
		TotalDepartments: 12,
		SystemHealth:     "Good",
		RecentActivities: []Activity{
			{ID: 1, Action: "New user registered", User: "John Doe", Time: "2 minutes ago"},
			{ID: 2, Action: "Claim approved", User: "Jane Smith", Time: "5 minutes ago"},
			{ID: 3, Action: "Department updated", User: "Admin", Time: "10 minutes ago"},
		},
		SystemStats: SystemStats{
			Uptime:       "99.9%",
			ResponseTime: "120ms",
			ErrorRate:    "0.1%",
		},
	}
}

func sampleInsuranceData() *InsuranceData {
	return &InsuranceData{
		PendingReview: 23,
		ApprovedToday: 8,
		TotalClaims:   1247,
		RejectionRate: 12.5,
		PendingClaims: []ClaimSummary{
			{ID: 1, ClaimNumber: "CLM-001", PatientName: "John Doe", Amount: "$1,250", Priority: "High"},
			{ID: 2, ClaimNumber: "CLM-002", PatientName: "Jane Smith", Amount: "$850", Priority: "Medium"},
			{ID: 3, ClaimNumber: "CLM-003", PatientName: "Mike Johnson", Amount: "$2,100", Priority: "Low"},
		},
		RecentApprovals: []ClaimSummary{
			{ID: 1, ClaimNumber: "CLM-004", PatientName: "Sarah Wilson", Amount: "$1,500", Date: "2025-10-15"},
			{ID: 2, ClaimNumber: "CLM-005", PatientName: "David Brown", Amount: "$750", Date: "2025-10-14"},
		},
	}
}
