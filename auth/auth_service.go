// Package auth implements the client side of the session lifecycle: login,
// signup, logout, manual token refresh, and the persisted-session bootstrap,
// plus the observable session state the rest of the app subscribes to.
package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/medsure/claims-client/api"
	"github.com/medsure/claims-client/session"
	"github.com/medsure/claims-client/users"
)

const (
	loginPath   = "/auth/login"
	signupPath  = "/auth/signup"
	logoutPath  = "/auth/logout"
	refreshPath = "/auth/refresh"
)

// Service owns every write to the persisted session. It goes through the
// session manager for all of them, so the all-or-nothing session invariant
// and the logout-beats-refresh ordering hold for explicit operations just as
// they do for the transport's silent refresh.
type Service struct {
	client   *api.Client
	sessions *session.Manager
	logger   zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service's logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an auth Service.
func NewService(client *api.Client, sessions *session.Manager, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[NewService] api client is required")
	}
	if sessions == nil {
		return nil, errors.New("[NewService] session manager is required")
	}
	s := &Service{
		client:   client,
		sessions: sessions,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Result is a successful authentication: the new access token and the
// server's authoritative view of the user.
type Result struct {
	Token string
	User  *users.Profile
}

// authPayload is the data field shared by login, signup, and refresh
// responses.
type authPayload struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         *users.Profile `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupParams are the client-side signup fields. Phone is the client field
// name; the wire schema calls it phoneNumber and signupRequest does that
// mapping in one direction only — the profile returned by the server is
// stored as-is.
type SignupParams struct {
	FirstName             string
	LastName              string
	Email                 string
	Phone                 string
	Password              string
	Role                  users.Role
	MedicalLicenseNumber  string
	Specialty             string
	InsurancePolicyNumber string
}

type signupRequest struct {
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	Email                 string `json:"email"`
	PhoneNumber           string `json:"phoneNumber"`
	Password              string `json:"password"`
	Role                  string `json:"role"`
	MedicalLicenseNumber  string `json:"medicalLicenseNumber,omitempty"`
	Specialty             string `json:"specialty,omitempty"`
	InsurancePolicyNumber string `json:"insurancePolicyNumber,omitempty"`
}

// Login posts credentials and, on success, persists the full session triple.
// A failure leaves the persisted session untouched and carries the server's
// message when one was sent.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	var payload authPayload
	if err := s.client.Post(ctx, loginPath, loginRequest{Email: email, Password: password}, &payload); err != nil {
		s.logger.Debug().Err(err).Msg("login request failed")
		return nil, newAuthError(err, loginFailedMsg)
	}
	return s.establishSession(ctx, payload, loginFailedMsg)
}

// Signup registers a new account and, like Login, persists the session the
// server hands back.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*Result, error) {
	req := signupRequest{
		FirstName:             params.FirstName,
		LastName:              params.LastName,
		Email:                 params.Email,
		PhoneNumber:           params.Phone,
		Password:              params.Password,
		Role:                  params.Role.String(),
		MedicalLicenseNumber:  params.MedicalLicenseNumber,
		Specialty:             params.Specialty,
		InsurancePolicyNumber: params.InsurancePolicyNumber,
	}
	var payload authPayload
	if err := s.client.Post(ctx, signupPath, req, &payload); err != nil {
		s.logger.Debug().Err(err).Msg("signup request failed")
		return nil, newAuthError(err, signupFailedMsg)
	}
	return s.establishSession(ctx, payload, signupFailedMsg)
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout notifies the server on a best-effort basis and unconditionally
// clears the local session. Server unreachability never blocks the local
// cleanup, and calling Logout twice is a no-op the second time.
func (s *Service) Logout(ctx context.Context) error {
	refreshToken, err := s.sessions.RefreshToken(ctx)
	switch {
	case err == nil && refreshToken != "":
		if err := s.client.Post(ctx, logoutPath, logoutRequest{RefreshToken: refreshToken}, nil); err != nil {
			s.logger.Warn().Err(err).Msg("server logout notification failed")
		}
	case err != nil && !session.IsNotFound(err):
		s.logger.Warn().Err(err).Msg("could not read refresh token during logout")
	}
	return s.sessions.Clear(ctx)
}

// Refresh is the explicit variant of the silent refresh: exchange the stored
// refresh token for a new pair. Any failure here clears the session before
// the error propagates — an explicit refresh failure always means forced
// logout.
func (s *Service) Refresh(ctx context.Context) (*Result, error) {
	epoch := s.sessions.Epoch()

	refreshToken, err := s.sessions.RefreshToken(ctx)
	if session.IsNotFound(err) || (err == nil && refreshToken == "") {
		err = ErrNoRefreshToken
	}
	if err != nil {
		return nil, s.failRefresh(ctx, err)
	}

	var payload authPayload
	if err := s.client.Post(ctx, refreshPath, logoutRequest{RefreshToken: refreshToken}, &payload); err != nil {
		return nil, s.failRefresh(ctx, err)
	}
	if payload.AccessToken == "" || payload.RefreshToken == "" {
		return nil, s.failRefresh(ctx, errors.New("refresh response missing tokens"))
	}

	// The server may omit the user echo; the cached profile stays current
	// in that case.
	if payload.User != nil {
		err = s.sessions.SaveIfEpoch(ctx, session.Session{
			AccessToken:  payload.AccessToken,
			RefreshToken: payload.RefreshToken,
			User:         payload.User,
		}, epoch)
	} else {
		err = s.sessions.SaveTokensIfEpoch(ctx, payload.AccessToken, payload.RefreshToken, epoch)
	}
	if errors.Is(err, session.ErrStaleEpoch) {
		// A concurrent logout cleared the session; honor it.
		return nil, &AuthError{Message: refreshFailedMsg, Err: err}
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Refresh] persist session")
	}

	user := payload.User
	if user == nil {
		if user, err = s.sessions.User(ctx); err != nil && !session.IsNotFound(err) {
			return nil, errors.Wrap(err, "[Service.Refresh] read cached user")
		}
	}
	return &Result{Token: payload.AccessToken, User: user}, nil
}

func (s *Service) failRefresh(ctx context.Context, cause error) error {
	s.logger.Debug().Err(cause).Msg("token refresh failed, clearing session")
	if clearErr := s.sessions.Clear(ctx); clearErr != nil {
		s.logger.Err(clearErr).Msg("failed to clear session after refresh failure")
	}
	return newAuthError(cause, refreshFailedMsg)
}

// Token returns the persisted access token. A cleanly absent token reads as
// empty; a storage failure is a real error, distinguishable from "logged
// out".
func (s *Service) Token(ctx context.Context) (string, error) {
	token, err := s.sessions.Token(ctx)
	if session.IsNotFound(err) {
		return "", nil
	}
	return token, err
}

// UserData returns the cached profile, or nil when no session is persisted.
func (s *Service) UserData(ctx context.Context) (*users.Profile, error) {
	user, err := s.sessions.User(ctx)
	if session.IsNotFound(err) {
		return nil, nil
	}
	return user, err
}

// IsAuthenticated reports whether a non-empty access token is persisted. It
// says nothing about token freshness and never contacts the server.
func (s *Service) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// Bootstrap reads the persisted session at process start. Only a session
// with both a token and a valid user counts; anything else, including a
// corrupted user entry, is "not logged in".
func (s *Service) Bootstrap(ctx context.Context) (*session.Session, error) {
	return s.sessions.Snapshot(ctx)
}

// establishSession validates and persists a login/signup payload.
func (s *Service) establishSession(ctx context.Context, payload authPayload, fallbackMsg string) (*Result, error) {
	if payload.AccessToken == "" || payload.RefreshToken == "" || payload.User == nil {
		return nil, &AuthError{Message: fallbackMsg, Err: errors.New("incomplete auth response")}
	}
	err := s.sessions.Save(ctx, session.Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		User:         payload.User,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Service.establishSession] persist session")
	}
	return &Result{Token: payload.AccessToken, User: payload.User}, nil
}
