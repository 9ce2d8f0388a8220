package dashboard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medsure/claims-client/api"
	"github.com/medsure/claims-client/dashboard"
	"github.com/medsure/claims-client/session"
	"github.com/medsure/claims-client/session/storefake"
)

func setupService(t *testing.T, handler http.HandlerFunc) *dashboard.Service {
	t.Helper()

	mux := http.NewServeMux()
	if handler != nil {
		mux.HandleFunc("GET /users/dashboard", handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mgr, err := session.NewManager(storefake.New())
	require.NoError(t, err)
	client, err := api.New(server.URL, mgr, api.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	service, err := dashboard.NewService(client)
	require.NoError(t, err)
	return service
}

func writeSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func TestPatientDashboardDecodesAggregate(t *testing.T) {
	service := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, map[string]any{
			"activeClaims": 1,
			"totalClaims":  4,
			"recentClaims": []map[string]any{
				{"id": 1, "claimNumber": "CLM-900", "status": "Pending", "amount": "$10"},
			},
		})
	})

	data, err := service.Patient(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, data.ActiveClaims)
	require.Equal(t, 4, data.TotalClaims)
	require.Len(t, data.RecentClaims, 1)
	require.Equal(t, "CLM-900", data.RecentClaims[0].ClaimNumber)
}

func TestPatientDashboardFallsBackOnError(t *testing.T) {
	service := setupService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	data, err := service.Patient(context.Background())
	require.NoError(t, err)
	require.Equal(t, 13, data.TotalClaims)
	require.NotEmpty(t, data.RecentClaims)
}

func TestDoctorDashboardFallsBackOnError(t *testing.T) {
	service := setupService(t, nil)

	data, err := service.Doctor(context.Background())
	require.NoError(t, err)
	require.Equal(t, 156, data.TotalPatients)
	require.NotEmpty(t, data.TodayAppointments)
}

func TestAdminDashboardFallsBackOnError(t *testing.T) {
	service := setupService(t, nil)

	data, err := service.Admin(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Good", data.SystemHealth)
	require.Equal(t, "99.9%", data.SystemStats.Uptime)
}

func TestInsuranceDashboardFallsBackOnError(t *testing.T) {
	service := setupService(t, nil)

	data, err := service.Insurance(context.Background())
	require.NoError(t, err)
	require.Equal(t, 23, data.PendingReview)
	require.InDelta(t, 12.5, data.RejectionRate, 0.001)
}

func TestProfileErrorsPropagate(t *testing.T) {
	service := setupService(t, nil)

	_, err := service.Profile(context.Background())
	require.Error(t, err)
}

func TestUpdateProfileSendsFieldsAndDecodesEcho(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /users/profile", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Jane", body["firstName"])
		writeSuccess(w, map[string]any{"id": 1, "firstName": "Jane", "roles": []string{"patient"}})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mgr, err := session.NewManager(storefake.New())
	require.NoError(t, err)
	client, err := api.New(server.URL, mgr, api.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	service, err := dashboard.NewService(client)
	require.NoError(t, err)

	profile, err := service.UpdateProfile(context.Background(), map[string]any{"firstName": "Jane"})
	require.NoError(t, err)
	require.Equal(t, "Jane", profile.FirstName)
}
