package dashboard

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/medsure/claims-client/api"
	"github.com/medsure/claims-client/users"
)

const (
	dashboardPath = "/users/dashboard"
	profilePath   = "/users/profile"
)

// Service fetches the role-specific dashboard aggregates. The backend
// exposes one endpoint whose payload shape depends on the caller's role;
// while it is being built out, a fetch failure falls back to static sample
// data instead of an empty screen.
type Service struct {
	client *api.Client
	logger zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service's logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a dashboard Service.
func NewService(client *api.Client, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[dashboard.NewService] api client is required")
	}
	s := &Service{client: client, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// ClaimSummary is one claim row in a dashboard list.
type ClaimSummary struct {
	ID          int64  `json:"id"`
	ClaimNumber string `json:"claimNumber"`
	PatientName string `json:"patientName,omitempty"`
	Status      string `json:"status,omitempty"`
	Amount      string `json:"amount"`
	Priority    string `json:"priority,omitempty"`
	Date        string `json:"date,omitempty"`
}

// Notification is one dashboard notification row.
type Notification struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Date    string `json:"date"`
}

// Appointment is one appointment row on the doctor dashboard.
type Appointment struct {
	ID          int64  `json:"id"`
	PatientName string `json:"patientName"`
	Time        string `json:"time"`
	Type        string `json:"type"`
}

// Activity is one audit row on the admin dashboard.
type Activity struct {
	ID     int64  `json:"id"`
	Action string `json:"action"`
	User   string `json:"user"`
	Time   string `json:"time"`
}

// SystemStats are the admin dashboard's platform health numbers.
type SystemStats struct {
	Uptime       string `json:"uptime"`
	ResponseTime string `json:"responseTime"`
	ErrorRate    string `json:"errorRate"`
}

// PatientData is the patient dashboard aggregate.
type PatientData struct {
	ActiveClaims   int            `json:"activeClaims"`
	PendingClaims  int            `json:"pendingClaims"`
	ApprovedClaims int            `json:"approvedClaims"`
	TotalClaims    int            `json:"totalClaims"`
	RecentClaims   []ClaimSummary `json:"recentClaims"`
	Notifications  []Notification `json:"notifications"`
}

// DoctorData is the doctor dashboard aggregate.
type DoctorData struct {
	PatientsToday        int            `json:"patientsToday"`
	TotalAppointments    int            `json:"totalAppointments"`
	PendingClaims        int            `json:"pendingClaims"`
	TotalPatients        int            `json:"totalPatients"`
	TodayAppointments    []Appointment  `json:"todayAppointments"`
	PendingVerifications []ClaimSummary `json:"pendingVerifications"`
}

// AdminData is the admin dashboard aggregate.
type AdminData struct {
	TotalUsers       int         `json:"totalUsers"`
	ActiveClaims     int         `json:"activeClaims"`
	TotalDepartments int         `json:"totalDepartments"`
	SystemHealth     string      `json:"systemHealth"`
	RecentActivities []Activity  `json:"recentActivities"`
	SystemStats      SystemStats `json:"systemStats"`
}

// InsuranceData is the insurance-provider dashboard aggregate.
type InsuranceData struct {
	PendingReview   int            `json:"pendingReview"`
	ApprovedToday   int            `json:"approvedToday"`
	TotalClaims     int            `json:"totalClaims"`
	RejectionRate   float64        `json:"rejectionRate"`
	PendingClaims   []ClaimSummary `json:"pendingClaims"`
	RecentApprovals []ClaimSummary `json:"recentApprovals"`
}

// Patient fetches the patient dashboard, falling back to sample data when
// the request fails.
func (s *Service) Patient(ctx context.Context) (*PatientData, error) {
	var data PatientData
	if err := s.client.Get(ctx, dashboardPath, &data); err != nil {
		s.logger.Warn().Err(err).Msg("patient dashboard fetch failed, serving sample data")
		return samplePatientData(), nil
	}
	return &data, nil
}

// Doctor fetches the doctor dashboard with the same fallback behavior.
func (s *Service) Doctor(ctx context.Context) (*DoctorData, error) {
	var data DoctorData
	if err := s.client.Get(ctx, dashboardPath, &data); err != nil {
		s.logger.Warn().Err(err).Msg("doctor dashboard fetch failed, serving sample data")
		return sampleDoctorData(), nil
	}
	return &data, nil
}

// Admin fetches the admin dashboard with the same fallback behavior.
func (s *Service) Admin(ctx context.Context) (*AdminData, error) {
	var data AdminData
	if err := s.client.Get(ctx, dashboardPath, &data); err != nil {
		s.logger.Warn().Err(err).Msg("admin dashboard fetch failed, serving sample data")
		return sampleAdminData(), nil
	}
	return &data, nil
}

// Insurance fetches the insurance-provider dashboard with the same fallback
// behavior.
func (s *Service) Insurance(ctx context.Context) (*InsuranceData, error) {
	var data InsuranceData
	if err := s.client.Get(ctx, dashboardPath, &data); err != nil {
		s.logger.Warn().Err(err).Msg("insurance dashboard fetch failed, serving sample data")
		return sampleInsuranceData(), nil
	}
	return &data, nil
}

// Profile fetches the caller's profile. No fallback: profile data must be
// real, so errors propagate.
func (s *Service) Profile(ctx context.Context) (*users.Profile, error) {
	var profile users.Profile
	if err := s.client.Get(ctx, profilePath, &profile); err != nil {
		return nil, errors.Wrap(err, "[Service.Profile] fetch")
	}
	return &profile, nil
}

// UpdateProfile sends profile changes and returns the server's updated
// record.
func (s *Service) UpdateProfile(ctx context.Context, fields map[string]any) (*users.Profile, error) {
	var profile users.Profile
	if err := s.client.Put(ctx, profilePath, fields, &profile); err != nil {
		return nil, errors.Wrap(err, "[Service.UpdateProfile] update")
	}
	return &profile, nil
}
