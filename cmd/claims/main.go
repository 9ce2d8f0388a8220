package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/medsure/claims-client/api"
	"github.com/medsure/claims-client/auth"
	"github.com/medsure/claims-client/dashboard"
	"github.com/medsure/claims-client/internal/config"
	"github.com/medsure/claims-client/session"
	"github.com/medsure/claims-client/token"
)

const usageText = `usage: claims [flags] <command>

commands:
  login      -email and -password, authenticate and persist the session
  logout     end the session locally and notify the server
  whoami     show the persisted session and token claims
  dashboard  fetch the dashboard for the logged-in user's role
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "claims: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	configPath := flag.String("config", "config.yaml", "path to the config file")
	email := flag.String("email", "", "email for login")
	password := flag.String("password", "", "password for login")
	flag.Parse()

	if flag.NArg() < 1 {
		displayAppname("claims")
		fmt.Print(usageText)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	switch flag.Arg(0) {
	case "login":
		return app.login(ctx, *email, *password)
	case "logout":
		return app.logout(ctx)
	case "whoami":
		return app.whoami(ctx)
	case "dashboard":
		return app.dashboard(ctx)
	default:
		return errors.Errorf("unknown command %q", flag.Arg(0))
	}
}

// app wires the SDK the way a client process would at boot.
type app struct {
	authCtx    *auth.Context
	svc        *auth.Service
	dashboards *dashboard.Service
	logger     zerolog.Logger
}

func buildApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	var storeOpts []session.FileStoreOption
	if cfg.Store.Passphrase != "" {
		storeOpts = append(storeOpts, session.WithPassphrase(cfg.Store.Passphrase))
	}
	store, err := session.NewFileStore(cfg.Store.Path, storeOpts...)
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(store, session.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	client, err := api.New(cfg.APIBaseURL(), sessions,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	svc, err := auth.NewService(client, sessions, auth.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	authCtx, err := auth.NewContext(svc, auth.WithContextLogger(logger))
	if err != nil {
		return nil, err
	}
	dashboards, err := dashboard.NewService(client, dashboard.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &app{authCtx: authCtx, svc: svc, dashboards: dashboards, logger: logger}, nil
}

func (a *app) login(ctx context.Context, email, password string) error {
	if err := auth.NewValidator().ValidateLogin(email, password); err != nil {
		return err
	}
	result, err := a.authCtx.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", result.User.DisplayName(), result.User.Role)
	fmt.Printf("Dashboard: %s\n", dashboard.ForUser(result.User))
	return nil
}

func (a *app) logout(ctx context.Context) error {
	a.authCtx.Logout(ctx)
	fmt.Println("Logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	a.authCtx.Bootstrap(ctx)
	state := a.authCtx.State()
	if !state.Authenticated {
		fmt.Println("Not logged in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", state.User.DisplayName(), state.User.Email, state.User.Role)

	raw, err := a.svc.Token(ctx)
	if err != nil || raw == "" {
		return err
	}
	claims, err := token.Inspect(raw)
	if err != nil {
		a.logger.Debug().Err(err).Msg("access token is not inspectable")
		return nil
	}
	if !claims.ExpiresAt.IsZero() {
		fmt.Printf("token expires %s", claims.ExpiresAt.Format(time.RFC3339))
		if claims.Expired(time.Now()) {
			fmt.Print(" (expired, will refresh on next request)")
		}
		fmt.Println()
	}
	return nil
}

func (a *app) dashboard(ctx context.Context) error {
	a.authCtx.Bootstrap(ctx)
	state := a.authCtx.State()
	if !state.Authenticated {
		return auth.ErrNotAuthenticated
	}

	switch dashboard.ForUser(state.User) {
	case dashboard.DoctorDashboard:
		data, err := a.dashboards.Doctor(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Patients today: %d, appointments: %d, pending claims: %d\n",
			data.PatientsToday, data.TotalAppointments, data.PendingClaims)
	case dashboard.AdminDashboard:
		data, err := a.dashboards.Admin(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Users: %d, active claims: %d, system health: %s\n",
			data.TotalUsers, data.ActiveClaims, data.SystemHealth)
	case dashboard.InsuranceProviderDashboard:
		data, err := a.dashboards.Insurance(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Pending review: %d, approved today: %d, rejection rate: %.1f%%\n",
			data.PendingReview, data.ApprovedToday, data.RejectionRate)
	default:
		data, err := a.dashboards.Patient(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Active: %d, pending: %d, approved: %d, total: %d\n",
			data.ActiveClaims, data.PendingClaims, data.ApprovedClaims, data.TotalClaims)
		for _, claim := range data.RecentClaims {
			fmt.Printf("  %s  %-12s  %s\n", claim.ClaimNumber, claim.Status, claim.Amount)
		}
	}
	return nil
}

func newLogger(cfg *config.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Env.Log.Level)
	if err != nil {
		return zerolog.Logger{}, errors.Wrap(err, "parse log level")
	}
	var logger zerolog.Logger
	if cfg.Env.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger(), nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
